package social

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

const maxResponseBytes = 4 << 20

var hashtagRegex = regexp.MustCompile(`#(\w+)`)

// apiClient is the HTTP plumbing shared by the network-backed providers
type apiClient struct {
	baseURL   string
	token     string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

func newAPIClient(baseURL, token, userAgent string, timeout time.Duration, limiter *rate.Limiter) apiClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return apiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
	}
}

// get performs an authenticated GET and returns the body of a 200 response
func (c apiClient) get(ctx context.Context, path string) ([]byte, error) {
	if c.token == "" {
		return nil, apperrors.ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("HTTP %d: %w", resp.StatusCode, apperrors.ErrRateLimit)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// searchQuery builds "(a OR b) c" from keyword and disaster type terms
func searchQuery(keywords, disasterType, fallback string) string {
	terms := utils.SplitTerms(keywords)
	kind := strings.ToLower(strings.TrimSpace(disasterType))

	var parts []string
	switch len(terms) {
	case 0:
	case 1:
		parts = append(parts, terms[0])
	default:
		parts = append(parts, "("+strings.Join(terms, " OR ")+")")
	}
	if kind != "" {
		parts = append(parts, kind)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " ")
}

func extractHashtags(text string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return utils.Dedupe(tags)
}

func clampLimit(limit, lo, hi int) int {
	if limit < lo {
		return lo
	}
	if limit > hi {
		return hi
	}
	return limit
}
