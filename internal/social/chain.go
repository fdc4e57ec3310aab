// Package social retrieves crisis reports from an ordered chain of providers
// and ranks them by urgency and relevance.
package social

import (
	"context"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/metrics"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// Provider is one source of social posts
type Provider interface {
	Name() string
	// Available reports whether the provider is configured to be tried
	Available() bool
	FetchPosts(ctx context.Context, keywords, disasterType string, limit int) ([]models.SocialPost, error)
}

// Geocoder fills in a post location from its text
type Geocoder interface {
	Geocode(post *models.SocialPost) error
}

// Result is the outcome of walking the provider chain
type Result struct {
	Posts     []models.SocialPost
	Provider  string
	Attempted []string
}

// Fetcher walks providers in order and returns the first non-empty result
type Fetcher struct {
	providers []Provider
	geocoder  Geocoder
}

// NewFetcher creates a fetcher over providers in priority order.
// geocoder may be nil.
func NewFetcher(geocoder Geocoder, providers ...Provider) *Fetcher {
	return &Fetcher{
		providers: providers,
		geocoder:  geocoder,
	}
}

// Fetch never fails. Provider errors are logged and counted, then the next
// provider is tried. When every provider comes back empty the last one tried
// is reported with an empty post list.
func (f *Fetcher) Fetch(ctx context.Context, keywords, disasterType string, limit int) Result {
	res := Result{Posts: []models.SocialPost{}}
	log := logger.WithContext(ctx)

	for _, p := range f.providers {
		if !p.Available() {
			continue
		}
		name := p.Name()
		res.Attempted = append(res.Attempted, name)
		res.Provider = name

		posts, err := p.FetchPosts(ctx, keywords, disasterType, limit)
		if err != nil {
			log.Warn("Social provider failed",
				"provider", name,
				"error", apperrors.ProviderError{Provider: name, Attempt: len(res.Attempted), Err: err},
			)
			metrics.RecordProviderAttempt(name, "error")
			continue
		}
		if len(posts) == 0 {
			log.Debug("Social provider returned no posts", "provider", name)
			metrics.RecordProviderAttempt(name, "empty")
			continue
		}

		metrics.RecordProviderAttempt(name, "success")
		if f.geocoder != nil {
			for i := range posts {
				if err := f.geocoder.Geocode(&posts[i]); err != nil {
					log.Debug("Geocoding failed", "post_id", posts[i].ID, "error", err)
				}
			}
		}
		res.Posts = posts
		return res
	}

	if len(res.Attempted) == 0 {
		log.Error("No social providers available")
	}
	return res
}
