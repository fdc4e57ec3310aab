// Package fixtures holds the built-in official updates and social posts served
// whenever live retrieval is disabled, fails, or returns nothing.
package fixtures

import (
	"context"
	"strings"
	"time"

	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

// ProviderName identifies fixture data in envelopes and metrics
const ProviderName = "fixtures"

// Reference is the instant fixture timestamps are anchored to
var Reference = time.Date(2024, 9, 28, 18, 0, 0, 0, time.UTC)

var officialUpdates = []models.UpdateRecord{
	{
		ID:          "fema-001",
		Source:      "fema",
		Title:       "Emergency Shelter Locations Updated",
		Content:     "FEMA has updated the list of open emergency shelters across the affected counties. Residents displaced by the storm can find locations and capacity in the FEMA app.",
		URL:         "https://www.fema.gov/disaster/shelters",
		PublishedAt: Reference.Add(-2 * time.Hour),
		Severity:    models.SeverityHigh,
		Category:    "shelter",
		Contact:     "1-800-621-3362",
	},
	{
		ID:          "fema-002",
		Source:      "fema",
		Title:       "Disaster Assistance Applications Open",
		Content:     "Individuals and households in declared counties can now apply for federal disaster assistance online or by phone.",
		URL:         "https://www.disasterassistance.gov",
		PublishedAt: Reference.Add(-26 * time.Hour),
		Severity:    models.SeverityMedium,
		Category:    "assistance",
		Contact:     "1-800-621-3362",
	},
	{
		ID:          "redcross-001",
		Source:      "redcross",
		Title:       "Volunteers Needed for Relief Operations",
		Content:     "The American Red Cross is seeking volunteers to staff relief centers and blood drives across the region.",
		URL:         "https://www.redcross.org/volunteer",
		PublishedAt: Reference.Add(-5 * time.Hour),
		Severity:    models.SeverityMedium,
		Category:    "volunteer",
		Contact:     "1-800-733-2767",
	},
	{
		ID:          "nyc-001",
		Source:      "nyc_emergency",
		Title:       "Bottled Water Distribution Points Open",
		Content:     "NYC Emergency Management has opened bottled water distribution points in Queens and Brooklyn for residents without service.",
		URL:         "https://www.nyc.gov/site/em/index.page",
		PublishedAt: Reference.Add(-3 * time.Hour),
		Severity:    models.SeverityHigh,
		Category:    "supplies",
		Contact:     "311",
	},
	{
		ID:          "nws-001",
		Source:      "weather_service",
		Title:       "Flash Flood Warning Issued",
		Content:     "The National Weather Service has issued a flash flood warning for low-lying coastal areas through Tuesday evening.",
		URL:         "https://www.weather.gov/alerts",
		PublishedAt: Reference.Add(-1 * time.Hour),
		Severity:    models.SeverityHigh,
		Category:    "weather",
	},
}

var socialPosts = []models.SocialPost{
	{
		ID:        "social-001",
		Post:      "Earthquake felt across downtown. Office buildings are being evacuated, stay clear of glass facades.",
		User:      "@citywatch",
		Timestamp: Reference.Add(-15 * time.Minute),
		Verified:  false,
		Location:  "San Francisco, CA",
		Hashtags:  []string{"earthquake", "sf"},
	},
	{
		ID:        "social-002",
		Post:      "Need help! Family stranded on a rooftop near 5th Street after the flood.",
		User:      "@houston_resident",
		Timestamp: Reference.Add(-30 * time.Minute),
		Verified:  false,
		Location:  "Houston, TX",
		Hashtags:  []string{"flood", "rescue"},
	},
	{
		ID:        "social-003",
		Post:      "Fire spreading fast toward the canyon homes, evacuate now if you are on Ridge Road!",
		User:      "@ridgeroad_alerts",
		Timestamp: Reference.Add(-45 * time.Minute),
		Verified:  true,
		Location:  "Malibu, CA",
		Hashtags:  []string{"wildfire", "evacuation"},
	},
	{
		ID:        "social-004",
		Post:      "Offering free shelter and hot meals at Lincoln Community Center tonight.",
		User:      "@lincoln_cc",
		Timestamp: Reference.Add(-1 * time.Hour),
		Verified:  true,
		Location:  "Houston, TX",
		Hashtags:  []string{"shelter", "flood"},
	},
	{
		ID:        "social-005",
		Post:      "URGENT: Medical supplies needed at the Eastside field hospital, insulin and bandages.",
		User:      "@eastside_medic",
		Timestamp: Reference.Add(-90 * time.Minute),
		Verified:  true,
		Location:  "Los Angeles, CA",
		Hashtags:  []string{"medical", "urgent"},
	},
	{
		ID:        "social-006",
		Post:      "Power has been restored in most of the north side neighborhoods.",
		User:      "@northside_news",
		Timestamp: Reference.Add(-2 * time.Hour),
		Verified:  false,
		Location:  "Houston, TX",
		Hashtags:  []string{"update", "power"},
	},
}

// OfficialUpdates returns a copy of every fixture update
func OfficialUpdates() []models.UpdateRecord {
	out := make([]models.UpdateRecord, len(officialUpdates))
	copy(out, officialUpdates)
	return out
}

// OfficialUpdatesFor returns a copy of the fixture updates attributed to source
func OfficialUpdatesFor(source string) []models.UpdateRecord {
	var out []models.UpdateRecord
	for _, u := range officialUpdates {
		if strings.EqualFold(u.Source, source) {
			out = append(out, u)
		}
	}
	return out
}

// SocialPosts returns a deep copy of every fixture post
func SocialPosts() []models.SocialPost {
	out := make([]models.SocialPost, len(socialPosts))
	for i, p := range socialPosts {
		p.Hashtags = append([]string(nil), p.Hashtags...)
		out[i] = p
	}
	return out
}

// Provider serves fixtures through the same interfaces as live sources
type Provider struct{}

// NewProvider creates a fixture provider
func NewProvider() *Provider {
	return &Provider{}
}

// Name identifies the provider
func (p *Provider) Name() string { return ProviderName }

// Available is always true
func (p *Provider) Available() bool { return true }

// FetchUpdates returns the fixture updates of one source
func (p *Provider) FetchUpdates(ctx context.Context, source string) ([]models.UpdateRecord, error) {
	return OfficialUpdatesFor(source), nil
}

// AllUpdates returns every fixture update regardless of source
func (p *Provider) AllUpdates(ctx context.Context) ([]models.UpdateRecord, error) {
	return OfficialUpdates(), nil
}

// FetchPosts returns fixture posts matching keywords and disasterType.
// With keywords, a post is kept when any term is a substring of its text or a hashtag.
// With a disaster type, the post must also match that term.
func (p *Provider) FetchPosts(ctx context.Context, keywords, disasterType string, limit int) ([]models.SocialPost, error) {
	terms := utils.SplitTerms(keywords)
	kind := strings.ToLower(strings.TrimSpace(disasterType))

	var out []models.SocialPost
	for _, post := range SocialPosts() {
		if len(terms) > 0 && !matchesAny(post, terms) {
			continue
		}
		if kind != "" && !matchesAny(post, []string{kind}) {
			continue
		}
		out = append(out, post)
	}
	return out, nil
}

func matchesAny(post models.SocialPost, terms []string) bool {
	text := strings.ToLower(post.Post)
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
		for _, tag := range post.Hashtags {
			if strings.Contains(strings.ToLower(tag), term) {
				return true
			}
		}
	}
	return false
}
