package main

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/broadcast"
	"github.com/rajasatyajit/DisasterFeed/internal/cache"
	"github.com/rajasatyajit/DisasterFeed/internal/classifier"
	"github.com/rajasatyajit/DisasterFeed/internal/database"
	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/fixtures"
	"github.com/rajasatyajit/DisasterFeed/internal/geocoder"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
	"github.com/rajasatyajit/DisasterFeed/internal/pipeline"
	"github.com/rajasatyajit/DisasterFeed/internal/registry"
	"github.com/rajasatyajit/DisasterFeed/internal/social"
	"github.com/rajasatyajit/DisasterFeed/internal/updates"
)

// app holds the wired components shared by every subcommand
type app struct {
	cfg         *config.Config
	db          *database.DB
	registry    registry.Registry
	cache       cache.Cache
	broadcaster broadcast.Broadcaster
	pipeline    *pipeline.Pipeline
}

// loadConfig loads configuration and initializes logging and metrics
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.Metrics.Enabled {
		metrics.Init()
	}
	return cfg, nil
}

// newApp wires storage, providers, cache, broadcast and the pipeline
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	reg := registry.New(ctx, db, cfg.Database.SeedSources)
	fixtureProvider := fixtures.NewProvider()

	// Live RSS retrieval is opt-in; fixtures serve every source otherwise
	var live updates.Provider
	if cfg.Updates.LiveFetch {
		sources, err := reg.List(ctx)
		if err != nil {
			logger.Warn("Source registry unavailable, using built-in feeds", "error", err)
			sources = registry.Catalog()
		}
		live = updates.NewRSSProvider(registry.FeedURLs(sources), classifier.New(), cfg.Updates)
		logger.Info("Live feed retrieval enabled", "feeds", len(registry.FeedURLs(sources)))
	}
	updateFetcher := updates.NewFetcher(live, fixtureProvider, cfg.Updates.WorkerCount)

	socialLimiter := rate.NewLimiter(rate.Limit(cfg.Updates.RateLimit), 1)
	socialFetcher := social.NewFetcher(
		geocoder.New(),
		social.NewTwitterProvider(cfg.Social, socialLimiter),
		social.NewRedditProvider(cfg.Social, socialLimiter),
		fixtureProvider,
	)

	c := cache.New(cfg.Redis, cfg.Cache)
	b := broadcast.New(cfg.Broadcast)

	return &app{
		cfg:         cfg,
		db:          db,
		registry:    reg,
		cache:       c,
		broadcaster: b,
		pipeline:    pipeline.New(reg, updateFetcher, socialFetcher, c, b, pipeline.SettingsFrom(cfg)),
	}, nil
}

// Close releases connections in reverse order of creation. Every component
// is closed even when an earlier one fails.
func (a *app) Close(ctx context.Context) error {
	var errs apperrors.MultiError
	if err := a.broadcaster.Close(); err != nil {
		errs.Add(fmt.Errorf("close broadcaster: %w", err))
	}
	if err := a.cache.Close(); err != nil {
		errs.Add(fmt.Errorf("close cache: %w", err))
	}
	a.db.Close(ctx)
	return errs.ErrorOrNil()
}

// closeApp closes a and logs anything that failed to shut down
func closeApp(a *app) {
	if err := a.Close(context.Background()); err != nil {
		logger.Warn("Shutdown incomplete", "error", err)
	}
}
