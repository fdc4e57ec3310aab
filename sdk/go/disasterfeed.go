// Package sdk is a Go client for the DisasterFeed HTTP API.
package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// UpdatesParams are the optional filters of OfficialUpdates
type UpdatesParams struct {
	Sources  []string
	Category string
	Severity string
	Keywords string
	Limit    int
}

// SocialParams are the optional filters of SocialMedia
type SocialParams struct {
	Keywords     string
	DisasterType string
	Limit        int
}

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Body       models.ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("disasterfeed: %d %s: %s", e.StatusCode, e.Body.Error, e.Body.Message)
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: http.DefaultClient}
}

func (c *Client) OfficialUpdates(ctx context.Context, p UpdatesParams) (*models.UpdatesEnvelope, error) {
	q := url.Values{}
	setList(q, "sources", p.Sources)
	set(q, "category", p.Category)
	set(q, "severity", p.Severity)
	set(q, "keywords", p.Keywords)
	setLimit(q, p.Limit)

	var out models.UpdatesEnvelope
	if err := c.get(ctx, "/v1/official-updates", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, query string, sources []string, limit int) (*models.SearchEnvelope, error) {
	q := url.Values{}
	set(q, "q", query)
	setList(q, "sources", sources)
	setLimit(q, limit)

	var out models.SearchEnvelope
	if err := c.get(ctx, "/v1/official-updates/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Sources(ctx context.Context) (*models.SourcesEnvelope, error) {
	var out models.SourcesEnvelope
	if err := c.get(ctx, "/v1/official-updates/sources", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SocialMedia(ctx context.Context, p SocialParams) (*models.SocialEnvelope, error) {
	q := url.Values{}
	set(q, "keywords", p.Keywords)
	set(q, "disaster_type", p.DisasterType)
	setLimit(q, p.Limit)

	var out models.SocialEnvelope
	if err := c.get(ctx, "/v1/social-media", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func set(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setList(q url.Values, key string, values []string) {
	if len(values) > 0 {
		q.Set(key, strings.Join(values, ","))
	}
}

func setLimit(q url.Values, limit int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}
