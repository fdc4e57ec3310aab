package models

import (
	"fmt"
	"strings"
	"time"
)

// Severity is the urgency tier of an official update
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ParseSeverity normalizes s into a Severity. The empty string is rejected.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityLow:
		return SeverityLow, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// Rank orders severities high > medium > low; unknown values rank 0
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// UpdateRecord is a bulletin attributed to a relief or government organization
type UpdateRecord struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Severity    Severity  `json:"severity"`
	Category    string    `json:"category"`
	Contact     string    `json:"contact,omitempty"`
}
