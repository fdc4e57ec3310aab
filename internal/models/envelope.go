package models

import "time"

// UpdatesEnvelope is the response body of the official updates listing
type UpdatesEnvelope struct {
	Sources        string            `json:"sources"`
	Category       string            `json:"category,omitempty"`
	Severity       string            `json:"severity,omitempty"`
	Keywords       string            `json:"keywords,omitempty"`
	TotalCount     int               `json:"total_count"`
	SourcesChecked []string          `json:"sources_checked"`
	FiltersApplied map[string]string `json:"filters_applied"`
	LastUpdated    time.Time         `json:"last_updated"`
	Updates        []UpdateRecord    `json:"updates"`
}

// SearchEnvelope is the response body of the official updates search
type SearchEnvelope struct {
	Query          string            `json:"query"`
	Sources        string            `json:"sources"`
	TotalCount     int               `json:"total_count"`
	SourcesChecked []string          `json:"sources_checked"`
	FiltersApplied map[string]string `json:"filters_applied"`
	LastUpdated    time.Time         `json:"last_updated"`
	Results        []UpdateRecord    `json:"results"`
}

// SocialEnvelope is the response body of the social media feed
type SocialEnvelope struct {
	Keywords       string            `json:"keywords,omitempty"`
	DisasterType   string            `json:"disaster_type,omitempty"`
	Provider       string            `json:"provider"`
	TotalCount     int               `json:"total_count"`
	SourcesChecked []string          `json:"sources_checked"`
	FiltersApplied map[string]string `json:"filters_applied"`
	LastUpdated    time.Time         `json:"last_updated"`
	Posts          []SocialPost      `json:"posts"`
}

// SourcesEnvelope lists the source registry
type SourcesEnvelope struct {
	TotalCount int                `json:"total_count"`
	Sources    []SourceDescriptor `json:"sources"`
}

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
