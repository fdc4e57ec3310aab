package models

// SourceDescriptor describes a known official update source
type SourceDescriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	FeedURL     string   `json:"feed_url,omitempty"`
	Categories  []string `json:"categories"`
	Active      bool     `json:"active"`
}
