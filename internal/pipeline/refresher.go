package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rajasatyajit/DisasterFeed/internal/broadcast"
	"github.com/rajasatyajit/DisasterFeed/internal/cache"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// Run periodically recomputes the default official updates envelope, stores
// it under the key an unfiltered request uses, and broadcasts it as
// official_updates. It returns when ctx is cancelled. A non-positive
// refresh interval disables it.
func (p *Pipeline) Run(ctx context.Context) error {
	interval := p.settings.RefreshInterval
	if interval <= 0 {
		logger.Info("Background refresh disabled")
		return nil
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("refresher already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	logger.Info("Starting background refresh", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial immediate run
	p.RefreshOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Background refresh stopping")
			return ctx.Err()
		case <-ticker.C:
			p.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce performs a single refresh cycle
func (p *Pipeline) RefreshOnce(ctx context.Context) {
	start := time.Now()
	q := models.UpdatesQuery{Limit: p.settings.DefaultUpdatesLimit}

	env := p.BuildUpdates(ctx, q)
	body, err := json.Marshal(env)
	if err != nil {
		logger.Error("Encode refreshed envelope failed", "error", err)
		return
	}

	key := cache.Key(p.settings.CachePrefix, KindOfficialUpdates, q.Params())
	if err := p.cache.Set(ctx, key, body, p.settings.UpdatesTTL); err != nil {
		logger.Warn("Cache write failed", "kind", KindOfficialUpdates, "key", key, "error", err)
	}

	p.emit(ctx, broadcast.EventOfficialUpdates, env)

	duration := time.Since(start)
	metrics.RecordRefresh(duration)
	logger.Debug("Background refresh completed",
		"updates", env.TotalCount,
		"duration_ms", duration.Milliseconds(),
	)
}

// IsRunning returns whether the refresher is currently running
func (p *Pipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}
