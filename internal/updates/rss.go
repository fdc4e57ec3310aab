package updates

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/rajasatyajit/DisasterFeed/config"
	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

const maxContentLength = 500

// Classifier fills severity and category for records that lack them
type Classifier interface {
	Classify(record *models.UpdateRecord)
}

// RSSProvider reads official updates from each source's RSS or Atom feed
type RSSProvider struct {
	parser     *gofeed.Parser
	feeds      map[string]string
	limiter    *rate.Limiter
	timeout    time.Duration
	classifier Classifier
}

// NewRSSProvider creates a provider for the given source id to feed URL map.
// Outbound requests share one limiter across all feeds.
func NewRSSProvider(feeds map[string]string, classifier Classifier, cfg config.UpdatesConfig) *RSSProvider {
	parser := gofeed.NewParser()
	parser.UserAgent = "DisasterFeed/1.0"
	parser.Client = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	normalized := make(map[string]string, len(feeds))
	for id, url := range feeds {
		if url != "" {
			normalized[strings.ToLower(id)] = url
		}
	}

	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &RSSProvider{
		parser:     parser,
		feeds:      normalized,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		timeout:    cfg.FetchTimeout,
		classifier: classifier,
	}
}

// FetchUpdates downloads and converts the feed of source
func (p *RSSProvider) FetchUpdates(ctx context.Context, source string) ([]models.UpdateRecord, error) {
	url, ok := p.feeds[strings.ToLower(source)]
	if !ok {
		return nil, fmt.Errorf("feed for %s: %w", source, apperrors.ErrNotConfigured)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	feed, err := p.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	return p.convertItems(source, feed.Items, time.Now().UTC()), nil
}

func (p *RSSProvider) convertItems(source string, items []*gofeed.Item, now time.Time) []models.UpdateRecord {
	records := make([]models.UpdateRecord, 0, len(items))
	for _, item := range items {
		published := now
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UTC()
		}

		body := item.Description
		if body == "" {
			body = item.Content
		}

		key := item.GUID
		if key == "" {
			key = item.Link
		}
		if key == "" {
			key = item.Title
		}

		record := models.UpdateRecord{
			ID:          source + "-" + utils.ShortHash(key, 12),
			Source:      source,
			Title:       strings.TrimSpace(item.Title),
			Content:     truncate(stripHTML(body), maxContentLength),
			URL:         item.Link,
			PublishedAt: published,
		}
		if p.classifier != nil {
			p.classifier.Classify(&record)
		}
		records = append(records, record)
	}
	return records
}

// stripHTML returns the visible text of an HTML fragment with whitespace collapsed
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
