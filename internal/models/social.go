package models

import "time"

// Priority is the urgency tier assigned to a social post by keyword heuristic
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities urgent > high > medium > low
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// SocialPost is a short user-authored crisis report.
// Priority, RelevanceScore and ProcessedAt are computed during processing.
type SocialPost struct {
	ID             string    `json:"id"`
	Post           string    `json:"post"`
	User           string    `json:"user"`
	Timestamp      time.Time `json:"timestamp"`
	Priority       Priority  `json:"priority"`
	Verified       bool      `json:"verified"`
	Location       string    `json:"location,omitempty"`
	Hashtags       []string  `json:"hashtags"`
	RelevanceScore int       `json:"relevance_score"`
	ProcessedAt    time.Time `json:"processed_at"`
}
