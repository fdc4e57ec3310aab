package social

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// SecondaryProviderName identifies the forum search provider
const SecondaryProviderName = "reddit"

const maxPostLength = 280

// RedditProvider searches recent link posts across all subreddits
type RedditProvider struct {
	api apiClient
}

// NewRedditProvider creates the secondary provider. It is unavailable
// without an OAuth token.
func NewRedditProvider(cfg config.SocialConfig, limiter *rate.Limiter) *RedditProvider {
	return &RedditProvider{
		api: newAPIClient(cfg.SecondaryBaseURL, cfg.SecondaryToken, cfg.UserAgent, cfg.Timeout, limiter),
	}
}

func (p *RedditProvider) Name() string { return SecondaryProviderName }

func (p *RedditProvider) Available() bool { return p.api.token != "" }

func (p *RedditProvider) FetchPosts(ctx context.Context, keywords, disasterType string, limit int) ([]models.SocialPost, error) {
	q := url.Values{}
	q.Set("q", searchQuery(keywords, disasterType, "disaster OR emergency"))
	q.Set("sort", "new")
	q.Set("type", "link")
	q.Set("limit", strconv.Itoa(clampLimit(limit, 1, 100)))
	q.Set("raw_json", "1")

	body, err := p.api.get(ctx, "/search.json?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return parseListing(body, time.Now().UTC())
}

func parseListing(body []byte, fetched time.Time) ([]models.SocialPost, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}

	children := gjson.GetBytes(body, "data.children").Array()
	posts := make([]models.SocialPost, 0, len(children))
	for _, child := range children {
		d := child.Get("data")

		text := strings.TrimSpace(d.Get("title").String())
		if self := strings.TrimSpace(d.Get("selftext").String()); self != "" {
			text += " " + self
		}
		text = shorten(text, maxPostLength)

		ts := fetched
		if created := d.Get("created_utc").Float(); created > 0 {
			sec, frac := math.Modf(created)
			ts = time.Unix(int64(sec), int64(frac*1e9)).UTC()
		}

		posts = append(posts, models.SocialPost{
			ID:        "rd-" + d.Get("id").String(),
			Post:      text,
			User:      "u/" + d.Get("author").String(),
			Timestamp: ts,
			Verified:  false,
			Hashtags:  extractHashtags(text),
		})
	}
	return posts, nil
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
