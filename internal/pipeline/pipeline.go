// Package pipeline assembles response envelopes: it resolves sources, reads
// and writes the response cache, runs fetch/filter/rank, and broadcasts
// fresh social result sets.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/broadcast"
	"github.com/rajasatyajit/DisasterFeed/internal/cache"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/internal/registry"
	"github.com/rajasatyajit/DisasterFeed/internal/social"
	"github.com/rajasatyajit/DisasterFeed/internal/updates"
)

// Cache kinds, used in cache keys and metrics
const (
	KindOfficialUpdates = "official_updates"
	KindSearch          = "official_updates_search"
	KindSocialMedia     = "social_media"
)

// UpdateFetcher gathers official updates for a list of source ids
type UpdateFetcher interface {
	Fetch(ctx context.Context, sources []string) []models.UpdateRecord
}

// SocialFetcher walks the social provider chain
type SocialFetcher interface {
	Fetch(ctx context.Context, keywords, disasterType string, limit int) social.Result
}

// Settings are the pipeline's tunables
type Settings struct {
	CachePrefix         string
	UpdatesTTL          time.Duration
	SocialTTL           time.Duration
	RefreshInterval     time.Duration
	DefaultUpdatesLimit int
}

// SettingsFrom extracts pipeline settings from the application config
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		CachePrefix:         cfg.Cache.Prefix,
		UpdatesTTL:          cfg.Cache.UpdatesTTL,
		SocialTTL:           cfg.Cache.SocialTTL,
		RefreshInterval:     cfg.Updates.RefreshInterval,
		DefaultUpdatesLimit: cfg.Updates.DefaultLimit,
	}
}

// Result is a serialized envelope and whether it came from the cache
type Result struct {
	Body   json.RawMessage
	Cached bool
}

// Pipeline is safe for concurrent use. Concurrent misses for the same key
// each recompute and write through; the last write wins.
type Pipeline struct {
	registry    registry.Registry
	updates     UpdateFetcher
	social      SocialFetcher
	cache       cache.Cache
	broadcaster broadcast.Broadcaster
	settings    Settings
	now         func() time.Time

	mu      sync.RWMutex
	running bool
}

// New creates a new pipeline instance
func New(reg registry.Registry, upd UpdateFetcher, soc SocialFetcher, c cache.Cache, b broadcast.Broadcaster, settings Settings) *Pipeline {
	if settings.DefaultUpdatesLimit < 1 {
		settings.DefaultUpdatesLimit = 20
	}
	return &Pipeline{
		registry:    reg,
		updates:     upd,
		social:      soc,
		cache:       c,
		broadcaster: b,
		settings:    settings,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// OfficialUpdates returns the filtered, ranked and limited updates envelope
func (p *Pipeline) OfficialUpdates(ctx context.Context, q models.UpdatesQuery) (Result, error) {
	return p.cached(ctx, KindOfficialUpdates, q.Params(), p.settings.UpdatesTTL, func(ctx context.Context) (any, error) {
		return p.BuildUpdates(ctx, q), nil
	}, nil)
}

// BuildUpdates computes an updates envelope without touching the cache
func (p *Pipeline) BuildUpdates(ctx context.Context, q models.UpdatesQuery) models.UpdatesEnvelope {
	sources := p.resolveSources(ctx, q.Sources)

	records := p.updates.Fetch(ctx, sources)
	records = updates.FilterByCategoryAndSeverity(records, q.Category, q.Severity)
	records = updates.SearchByKeywords(records, q.Keywords)
	records = updates.Limit(updates.Rank(records), q.Limit)
	if records == nil {
		records = []models.UpdateRecord{}
	}

	return models.UpdatesEnvelope{
		Sources:        q.SourcesParam(),
		Category:       q.Category,
		Severity:       string(q.Severity),
		Keywords:       q.Keywords,
		TotalCount:     len(records),
		SourcesChecked: sources,
		FiltersApplied: q.Filters(),
		LastUpdated:    p.now(),
		Updates:        records,
	}
}

// SearchUpdates returns the keyword search envelope. The query must be non-empty.
func (p *Pipeline) SearchUpdates(ctx context.Context, q models.SearchQuery) (Result, error) {
	return p.cached(ctx, KindSearch, q.Params(), p.settings.UpdatesTTL, func(ctx context.Context) (any, error) {
		return p.BuildSearch(ctx, q), nil
	}, nil)
}

// BuildSearch computes a search envelope without touching the cache
func (p *Pipeline) BuildSearch(ctx context.Context, q models.SearchQuery) models.SearchEnvelope {
	sources := p.resolveSources(ctx, q.Sources)

	records := p.updates.Fetch(ctx, sources)
	records = updates.SearchByKeywords(records, q.Query)
	records = updates.Limit(updates.Rank(records), q.Limit)
	if records == nil {
		records = []models.UpdateRecord{}
	}

	return models.SearchEnvelope{
		Query:          q.Query,
		Sources:        q.SourcesParam(),
		TotalCount:     len(records),
		SourcesChecked: sources,
		FiltersApplied: q.Filters(),
		LastUpdated:    p.now(),
		Results:        records,
	}
}

// SocialMedia returns the processed social envelope. A freshly computed
// envelope is broadcast as social_media_update; cache hits are not.
func (p *Pipeline) SocialMedia(ctx context.Context, q models.SocialQuery) (Result, error) {
	var env models.SocialEnvelope
	return p.cached(ctx, KindSocialMedia, q.Params(), p.settings.SocialTTL, func(ctx context.Context) (any, error) {
		env = p.BuildSocial(ctx, q)
		return env, nil
	}, func(ctx context.Context) {
		p.emit(ctx, broadcast.EventSocialMediaUpdate, env)
	})
}

// BuildSocial computes a social envelope without touching the cache
func (p *Pipeline) BuildSocial(ctx context.Context, q models.SocialQuery) models.SocialEnvelope {
	now := p.now()
	res := p.social.Fetch(ctx, q.Keywords, q.DisasterType, q.Limit)
	posts := updates.Limit(social.Process(res.Posts, q.Keywords, now), q.Limit)

	attempted := res.Attempted
	if attempted == nil {
		attempted = []string{}
	}

	return models.SocialEnvelope{
		Keywords:       q.Keywords,
		DisasterType:   q.DisasterType,
		Provider:       res.Provider,
		TotalCount:     len(posts),
		SourcesChecked: attempted,
		FiltersApplied: q.Filters(),
		LastUpdated:    now,
		Posts:          posts,
	}
}

// Sources lists the source registry
func (p *Pipeline) Sources(ctx context.Context) (models.SourcesEnvelope, error) {
	sources, err := p.registry.List(ctx)
	if err != nil {
		return models.SourcesEnvelope{}, fmt.Errorf("list sources: %w", err)
	}
	if sources == nil {
		sources = []models.SourceDescriptor{}
	}
	return models.SourcesEnvelope{TotalCount: len(sources), Sources: sources}, nil
}

// Health reports the cache and registry state
func (p *Pipeline) Health(ctx context.Context) map[string]error {
	return map[string]error{
		"cache":    p.cache.Health(ctx),
		"registry": p.registry.Health(ctx),
	}
}

// resolveSources expands an empty selection to every active registry source
func (p *Pipeline) resolveSources(ctx context.Context, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}

	list, err := p.registry.List(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn("Source registry unavailable, using built-in catalog", "error", err)
		list = registry.Catalog()
	}
	return registry.ActiveIDs(list)
}

// cached serves kind/params from the cache, or builds, stores and returns a
// fresh envelope. Cache failures degrade to a miss or a skipped write.
func (p *Pipeline) cached(
	ctx context.Context,
	kind string,
	params map[string]string,
	ttl time.Duration,
	build func(ctx context.Context) (any, error),
	onMiss func(ctx context.Context),
) (Result, error) {
	log := logger.WithContext(ctx)
	key := cache.Key(p.settings.CachePrefix, kind, params)

	body, ok, err := p.cache.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn("Cache read failed", "kind", kind, "key", key, "error", err)
		metrics.RecordCacheLookup(kind, "error")
	case ok:
		metrics.RecordCacheLookup(kind, "hit")
		return Result{Body: body, Cached: true}, nil
	default:
		metrics.RecordCacheLookup(kind, "miss")
	}

	env, err := build(ctx)
	if err != nil {
		return Result{}, err
	}
	body, err = json.Marshal(env)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s envelope: %w", kind, err)
	}

	if err := p.cache.Set(ctx, key, body, ttl); err != nil {
		log.Warn("Cache write failed", "kind", kind, "key", key, "error", err)
	}

	if onMiss != nil {
		onMiss(ctx)
	}
	return Result{Body: body, Cached: false}, nil
}

func (p *Pipeline) emit(ctx context.Context, event string, payload any) {
	if p.broadcaster == nil {
		return
	}
	if err := p.broadcaster.Emit(ctx, event, payload); err != nil {
		logger.WithContext(ctx).Warn("Broadcast failed", "event", event, "error", err)
	}
}
