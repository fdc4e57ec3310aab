package social

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// PrimaryProviderName identifies the recent-search provider
const PrimaryProviderName = "twitter"

// TwitterProvider searches recent posts through the v2 recent search endpoint
type TwitterProvider struct {
	api apiClient
}

// NewTwitterProvider creates the primary provider. It is unavailable
// without a bearer token.
func NewTwitterProvider(cfg config.SocialConfig, limiter *rate.Limiter) *TwitterProvider {
	return &TwitterProvider{
		api: newAPIClient(cfg.PrimaryBaseURL, cfg.PrimaryToken, cfg.UserAgent, cfg.Timeout, limiter),
	}
}

func (p *TwitterProvider) Name() string { return PrimaryProviderName }

func (p *TwitterProvider) Available() bool { return p.api.token != "" }

// FetchPosts runs one recent search. The API accepts 10 to 100 results per page.
func (p *TwitterProvider) FetchPosts(ctx context.Context, keywords, disasterType string, limit int) ([]models.SocialPost, error) {
	q := url.Values{}
	q.Set("query", searchQuery(keywords, disasterType, "(disaster OR emergency)")+" -is:retweet lang:en")
	q.Set("max_results", strconv.Itoa(clampLimit(limit, 10, 100)))
	q.Set("tweet.fields", "created_at,author_id,entities")
	q.Set("expansions", "author_id,geo.place_id")
	q.Set("user.fields", "username,verified")
	q.Set("place.fields", "full_name")

	body, err := p.api.get(ctx, "/2/tweets/search/recent?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("recent search: %w", err)
	}
	return parseTweets(body, time.Now().UTC())
}

// parseTweets maps a recent search response to posts. Tweets without a
// parseable created_at are stamped with fetched.
func parseTweets(body []byte, fetched time.Time) ([]models.SocialPost, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}
	doc := gjson.ParseBytes(body)

	type author struct {
		username string
		verified bool
	}
	users := make(map[string]author)
	doc.Get("includes.users").ForEach(func(_, u gjson.Result) bool {
		users[u.Get("id").String()] = author{
			username: u.Get("username").String(),
			verified: u.Get("verified").Bool(),
		}
		return true
	})
	places := make(map[string]string)
	doc.Get("includes.places").ForEach(func(_, pl gjson.Result) bool {
		places[pl.Get("id").String()] = pl.Get("full_name").String()
		return true
	})

	data := doc.Get("data").Array()
	posts := make([]models.SocialPost, 0, len(data))
	for _, tw := range data {
		a := users[tw.Get("author_id").String()]
		user := tw.Get("author_id").String()
		if a.username != "" {
			user = "@" + a.username
		}

		var tags []string
		tw.Get("entities.hashtags.#.tag").ForEach(func(_, tag gjson.Result) bool {
			tags = append(tags, strings.ToLower(tag.String()))
			return true
		})
		if tags == nil {
			tags = []string{}
		}

		ts, err := time.Parse(time.RFC3339, tw.Get("created_at").String())
		if err != nil {
			ts = fetched
		}

		posts = append(posts, models.SocialPost{
			ID:        "tw-" + tw.Get("id").String(),
			Post:      tw.Get("text").String(),
			User:      user,
			Timestamp: ts.UTC(),
			Verified:  a.verified,
			Location:  places[tw.Get("geo.place_id").String()],
			Hashtags:  tags,
		})
	}
	return posts, nil
}
