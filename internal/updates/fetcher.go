// Package updates retrieves, filters and ranks official update bulletins.
package updates

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// Provider returns the current updates published by one source
type Provider interface {
	FetchUpdates(ctx context.Context, source string) ([]models.UpdateRecord, error)
}

// Fallback is a provider that can also supply the complete default set
type Fallback interface {
	Provider
	AllUpdates(ctx context.Context) ([]models.UpdateRecord, error)
}

// Fetcher gathers updates for a list of sources. Each source is isolated:
// a live provider that fails or returns nothing is replaced by the fallback
// for that source only.
type Fetcher struct {
	live     Provider
	fallback Fallback
	workers  int
}

// NewFetcher creates a fetcher. live may be nil, in which case every
// source is served by the fallback.
func NewFetcher(live Provider, fallback Fallback, workers int) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		live:     live,
		fallback: fallback,
		workers:  workers,
	}
}

// Fetch never fails. Records are returned grouped by source in the order of
// sources; when nothing at all is found the complete fallback set is returned.
func (f *Fetcher) Fetch(ctx context.Context, sources []string) []models.UpdateRecord {
	results := make([][]models.UpdateRecord, len(sources))

	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = f.fetchSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var out []models.UpdateRecord
	for _, recs := range results {
		out = append(out, recs...)
	}

	if len(out) == 0 {
		all, err := f.fallback.AllUpdates(ctx)
		if err != nil {
			logger.WithContext(ctx).Error("Fallback updates unavailable", "error", err)
			return nil
		}
		logger.WithContext(ctx).Debug("No updates for requested sources, serving full fallback set", "sources", sources)
		return all
	}
	return out
}

func (f *Fetcher) fetchSource(ctx context.Context, source string) []models.UpdateRecord {
	if f.live != nil {
		records, err := f.live.FetchUpdates(ctx, source)
		switch {
		case err == nil && len(records) > 0:
			metrics.RecordSourceFetch(source, "success")
			return records
		case err == nil:
			logger.WithContext(ctx).Warn("Live source returned no updates, using fixtures", "source", source)
			metrics.RecordSourceFetch(source, "empty")
		case errors.Is(err, apperrors.ErrNotConfigured):
			logger.WithContext(ctx).Debug("No live feed for source", "source", source)
		default:
			logger.WithContext(ctx).Warn("Live source fetch failed, using fixtures",
				"source", source,
				"error", apperrors.SourceError{Source: source, Err: err},
			)
			metrics.RecordSourceFetch(source, "error")
		}
	}

	records, err := f.fallback.FetchUpdates(ctx, source)
	if err != nil {
		logger.WithContext(ctx).Error("Fallback fetch failed", "source", source, "error", err)
		return nil
	}
	metrics.RecordSourceFetch(source, "fallback")
	return records
}
