package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rajasatyajit/DisasterFeed/internal/broadcast"
	"github.com/rajasatyajit/DisasterFeed/internal/broadcast/broadcasttest"
	"github.com/rajasatyajit/DisasterFeed/internal/cache"
	"github.com/rajasatyajit/DisasterFeed/internal/fixtures"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/internal/registry"
	"github.com/rajasatyajit/DisasterFeed/internal/social"
	"github.com/rajasatyajit/DisasterFeed/internal/updates"
)

// failingCache errors on every operation
type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}
func (failingCache) Delete(ctx context.Context, key string) error { return nil }
func (failingCache) Health(ctx context.Context) error             { return errors.New("connection refused") }
func (failingCache) Close() error                                 { return nil }

var testNow = time.Date(2024, 9, 28, 18, 0, 0, 0, time.UTC)

func newTestPipeline(t *testing.T, c cache.Cache, b broadcast.Broadcaster) *Pipeline {
	t.Helper()
	logger.Init("error", "text")

	p := New(
		registry.NewStatic(nil),
		updates.NewFetcher(nil, fixtures.NewProvider(), 4),
		social.NewFetcher(nil, fixtures.NewProvider()),
		c,
		b,
		Settings{
			CachePrefix:         "disasterfeed:v1",
			UpdatesTTL:          time.Minute,
			SocialTTL:           time.Minute,
			DefaultUpdatesLimit: 20,
		},
	)
	p.now = func() time.Time { return testNow }
	return p
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, body)
	}
	return v
}

func updateIDs(records []models.UpdateRecord) string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return strings.Join(ids, ",")
}

func TestOfficialUpdates_Filters(t *testing.T) {
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), broadcasttest.NewRecorder())
	ctx := context.Background()

	tests := []struct {
		name        string
		query       models.UpdatesQuery
		wantIDs     string
		wantFilters map[string]string
	}{
		{
			name:        "Category",
			query:       models.UpdatesQuery{Category: "shelter", Limit: 20},
			wantIDs:     "fema-001",
			wantFilters: map[string]string{"category": "shelter"},
		},
		{
			name:        "Keywords ranked",
			query:       models.UpdatesQuery{Keywords: "water,volunteer", Limit: 20},
			wantIDs:     "nyc-001,redcross-001",
			wantFilters: map[string]string{"keywords": "water,volunteer"},
		},
		{
			name:        "Severity and limit",
			query:       models.UpdatesQuery{Severity: models.SeverityHigh, Limit: 2},
			wantIDs:     "nws-001,fema-001",
			wantFilters: map[string]string{"severity": "high"},
		},
		{
			name:    "Source selection",
			query:   models.UpdatesQuery{Sources: []string{"redcross", "fema"}, Limit: 20},
			wantIDs: "fema-001,redcross-001,fema-002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.OfficialUpdates(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			env := decode[models.UpdatesEnvelope](t, res.Body)

			if got := updateIDs(env.Updates); got != tt.wantIDs {
				t.Errorf("updates = %s, want %s", got, tt.wantIDs)
			}
			if env.TotalCount != len(env.Updates) {
				t.Errorf("total_count %d != len(updates) %d", env.TotalCount, len(env.Updates))
			}
			if len(env.FiltersApplied) != len(tt.wantFilters) {
				t.Errorf("filters_applied = %v, want %v", env.FiltersApplied, tt.wantFilters)
			}
			for k, v := range tt.wantFilters {
				if env.FiltersApplied[k] != v {
					t.Errorf("filters_applied[%s] = %s, want %s", k, env.FiltersApplied[k], v)
				}
			}
			if !env.LastUpdated.Equal(testNow) {
				t.Errorf("last_updated = %v", env.LastUpdated)
			}
		})
	}
}

func TestOfficialUpdates_SourcesChecked(t *testing.T) {
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), nil)

	res, _ := p.OfficialUpdates(context.Background(), models.UpdatesQuery{Limit: 20})
	env := decode[models.UpdatesEnvelope](t, res.Body)
	if env.Sources != models.AllSources {
		t.Errorf("sources = %s, want all", env.Sources)
	}
	if got := strings.Join(env.SourcesChecked, ","); got != "fema,redcross,nyc_emergency,weather_service" {
		t.Errorf("sources_checked = %s", got)
	}

	res, _ = p.OfficialUpdates(context.Background(), models.UpdatesQuery{Sources: []string{"atlantis"}, Limit: 20})
	env = decode[models.UpdatesEnvelope](t, res.Body)
	if got := strings.Join(env.SourcesChecked, ","); got != "atlantis" {
		t.Errorf("sources_checked = %s", got)
	}
	if env.TotalCount != len(fixtures.OfficialUpdates()) {
		t.Errorf("expected full fixture fallback, got %d", env.TotalCount)
	}
}

func TestOfficialUpdates_CacheRoundTrip(t *testing.T) {
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), nil)
	ctx := context.Background()

	first, err := p.OfficialUpdates(ctx, models.UpdatesQuery{Keywords: "water,volunteer", Limit: 20})
	if err != nil || first.Cached {
		t.Fatalf("first call: cached=%v err=%v", first.Cached, err)
	}

	p.now = func() time.Time { return testNow.Add(time.Hour) }
	second, err := p.OfficialUpdates(ctx, models.UpdatesQuery{Keywords: "Volunteer, water", Limit: 20})
	if err != nil || !second.Cached {
		t.Fatalf("second call: cached=%v err=%v", second.Cached, err)
	}
	if !bytes.Equal(first.Body, second.Body) {
		t.Errorf("cached body differs:\n%s\n%s", first.Body, second.Body)
	}
}

func TestSearchUpdates(t *testing.T) {
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), nil)

	res, err := p.SearchUpdates(context.Background(), models.SearchQuery{Query: "flood", Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	env := decode[models.SearchEnvelope](t, res.Body)
	if env.Query != "flood" || updateIDs(env.Results) != "nws-001" || env.TotalCount != 1 {
		t.Errorf("unexpected search envelope %+v", env)
	}
	if env.FiltersApplied["q"] != "flood" {
		t.Errorf("filters_applied = %v", env.FiltersApplied)
	}

	res, _ = p.SearchUpdates(context.Background(), models.SearchQuery{Query: "tsunami", Limit: 20})
	env = decode[models.SearchEnvelope](t, res.Body)
	if env.Results == nil || len(env.Results) != 0 {
		t.Errorf("expected empty results list, got %v", env.Results)
	}
	if !strings.Contains(string(res.Body), `"results":[]`) {
		t.Errorf("expected empty JSON array, got %s", res.Body)
	}
}

func TestSocialMedia_BroadcastsOnMissOnly(t *testing.T) {
	rec := broadcasttest.NewRecorder()
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), rec)
	ctx := context.Background()

	res, err := p.SocialMedia(ctx, models.SocialQuery{Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	env := decode[models.SocialEnvelope](t, res.Body)

	var ids []string
	for _, post := range env.Posts {
		ids = append(ids, post.ID)
	}
	if got := strings.Join(ids, ","); got != "social-001,social-003,social-005,social-002,social-004,social-006" {
		t.Errorf("posts = %s", got)
	}
	if env.Provider != fixtures.ProviderName || strings.Join(env.SourcesChecked, ",") != fixtures.ProviderName {
		t.Errorf("provider = %s, sources_checked = %v", env.Provider, env.SourcesChecked)
	}

	msgs := rec.Messages()
	if len(msgs) != 1 || msgs[0].Event != broadcast.EventSocialMediaUpdate {
		t.Fatalf("expected one social_media_update, got %+v", msgs)
	}
	if !bytes.Equal(msgs[0].Payload, res.Body) {
		t.Errorf("broadcast payload should equal the response envelope")
	}

	again, _ := p.SocialMedia(ctx, models.SocialQuery{Limit: 50})
	if !again.Cached {
		t.Error("expected cache hit")
	}
	if len(rec.Messages()) != 1 {
		t.Error("cache hits must not broadcast")
	}
}

func TestSocialMedia_FiltersAndLimit(t *testing.T) {
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), nil)

	res, _ := p.SocialMedia(context.Background(), models.SocialQuery{Keywords: "flood", Limit: 1})
	env := decode[models.SocialEnvelope](t, res.Body)
	if env.TotalCount != 1 || env.Posts[0].ID != "social-002" || env.Posts[0].RelevanceScore != 5 {
		t.Errorf("unexpected envelope %+v", env)
	}
	if env.FiltersApplied["keywords"] != "flood" {
		t.Errorf("filters_applied = %v", env.FiltersApplied)
	}
}

func TestDegradedDependencies(t *testing.T) {
	rec := broadcasttest.NewRecorder()
	rec.Err = errors.New("broker down")
	p := newTestPipeline(t, failingCache{}, rec)

	res, err := p.SocialMedia(context.Background(), models.SocialQuery{Limit: 50})
	if err != nil {
		t.Fatalf("cache and broadcast failures must not fail the request: %v", err)
	}
	if res.Cached || len(res.Body) == 0 {
		t.Errorf("unexpected result cached=%v len=%d", res.Cached, len(res.Body))
	}

	health := p.Health(context.Background())
	if health["cache"] == nil || health["registry"] != nil {
		t.Errorf("unexpected health %v", health)
	}
}

func TestSources(t *testing.T) {
	p := newTestPipeline(t, cache.NewMemoryCache(time.Minute, time.Minute), nil)

	env, err := p.Sources(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if env.TotalCount != 4 || env.Sources[0].ID != "fema" {
		t.Errorf("unexpected sources envelope %+v", env)
	}
}
