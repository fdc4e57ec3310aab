// Package registry describes the official update sources the service knows about.
package registry

import (
	"context"
	"fmt"
	"strings"

	pgx "github.com/jackc/pgx/v5"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// Registry lists and resolves source descriptors
type Registry interface {
	List(ctx context.Context) ([]models.SourceDescriptor, error)
	Get(ctx context.Context, id string) (models.SourceDescriptor, error)
	Health(ctx context.Context) error
}

// Database is the subset of the database layer the registry needs
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Health(ctx context.Context) error
	IsConfigured() bool
}

var catalog = []models.SourceDescriptor{
	{
		ID:          "fema",
		Name:        "Federal Emergency Management Agency",
		Description: "Federal disaster declarations, assistance programs and shelter information",
		URL:         "https://www.fema.gov",
		FeedURL:     "https://www.fema.gov/about/news-multimedia/press-releases/rss.xml",
		Categories:  []string{"shelter", "assistance", "evacuation"},
		Active:      true,
	},
	{
		ID:          "redcross",
		Name:        "American Red Cross",
		Description: "Relief operations, volunteer calls and blood drives",
		URL:         "https://www.redcross.org",
		FeedURL:     "https://www.redcross.org/content/redcross/en/about-us/news-and-events/press-release.rss.xml",
		Categories:  []string{"volunteer", "shelter", "medical"},
		Active:      true,
	},
	{
		ID:          "nyc_emergency",
		Name:        "NYC Emergency Management",
		Description: "Municipal emergency notifications and resource distribution",
		URL:         "https://www.nyc.gov/site/em/index.page",
		FeedURL:     "https://www.nyc.gov/site/em/about/press-releases.rss",
		Categories:  []string{"supplies", "evacuation", "weather"},
		Active:      true,
	},
	{
		ID:          "weather_service",
		Name:        "National Weather Service",
		Description: "Watches, warnings and advisories",
		URL:         "https://www.weather.gov",
		FeedURL:     "https://alerts.weather.gov/cap/us.php?x=0",
		Categories:  []string{"weather"},
		Active:      true,
	},
}

// Catalog returns a copy of the built-in source catalog
func Catalog() []models.SourceDescriptor {
	out := make([]models.SourceDescriptor, len(catalog))
	for i, s := range catalog {
		s.Categories = append([]string(nil), s.Categories...)
		out[i] = s
	}
	return out
}

// StaticRegistry serves the built-in catalog
type StaticRegistry struct {
	sources []models.SourceDescriptor
}

// NewStatic creates a registry over sources, or over the built-in catalog when sources is nil
func NewStatic(sources []models.SourceDescriptor) *StaticRegistry {
	if sources == nil {
		sources = Catalog()
	}
	return &StaticRegistry{sources: sources}
}

func (r *StaticRegistry) List(ctx context.Context) ([]models.SourceDescriptor, error) {
	out := make([]models.SourceDescriptor, len(r.sources))
	copy(out, r.sources)
	return out, nil
}

func (r *StaticRegistry) Get(ctx context.Context, id string) (models.SourceDescriptor, error) {
	for _, s := range r.sources {
		if strings.EqualFold(s.ID, id) {
			return s, nil
		}
	}
	return models.SourceDescriptor{}, fmt.Errorf("source %q: %w", id, apperrors.ErrNotFound)
}

func (r *StaticRegistry) Health(ctx context.Context) error { return nil }

// New returns a Postgres-backed registry when db is configured, seeding it
// from the catalog when seed is set. Otherwise the static catalog is used.
func New(ctx context.Context, db Database, seed bool) Registry {
	if db == nil || !db.IsConfigured() {
		return NewStatic(nil)
	}

	r := NewPostgresRegistry(db)
	if err := r.EnsureSchema(ctx); err != nil {
		logger.Error("Source registry schema setup failed, using static catalog", "error", err)
		return NewStatic(nil)
	}
	if seed {
		if err := r.Seed(ctx, Catalog()); err != nil {
			logger.Warn("Seeding source registry failed", "error", err)
		}
	}
	return r
}

// ActiveIDs returns the ids of active sources in registry order
func ActiveIDs(sources []models.SourceDescriptor) []string {
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.Active {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// FeedURLs maps active source ids to their feed URLs
func FeedURLs(sources []models.SourceDescriptor) map[string]string {
	feeds := make(map[string]string, len(sources))
	for _, s := range sources {
		if s.Active && s.FeedURL != "" {
			feeds[s.ID] = s.FeedURL
		}
	}
	return feeds
}
