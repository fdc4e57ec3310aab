package classifier

import (
	"strings"

	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

// DefaultCategory is assigned when no category keyword matches
const DefaultCategory = "general"

// categoryRule maps a category to the keywords that select it.
// Rules are evaluated in order; the first match wins.
type categoryRule struct {
	category string
	keywords []string
}

// Classifier infers severity and category for live official updates
type Classifier struct {
	high       []string
	medium     []string
	categories []categoryRule
}

// New creates a new classifier instance
func New() *Classifier {
	return &Classifier{
		high: []string{
			"evacuat", "warning", "emergency", "immediate", "life-threatening",
			"tornado", "hurricane", "earthquake", "tsunami", "wildfire",
			"flash flood", "critical", "severe", "catastrophic",
		},
		medium: []string{
			"watch", "advisory", "assistance", "open", "available",
			"volunteer", "closure", "delay", "outage", "update",
		},
		categories: []categoryRule{
			{category: "evacuation", keywords: []string{"evacuat"}},
			{category: "shelter", keywords: []string{"shelter", "housing", "cooling center", "warming center"}},
			{category: "weather", keywords: []string{"flood", "storm", "hurricane", "tornado", "heat", "winter", "forecast", "weather"}},
			{category: "supplies", keywords: []string{"water", "food", "supplies", "distribution", "generator"}},
			{category: "medical", keywords: []string{"medical", "hospital", "blood", "health"}},
			{category: "volunteer", keywords: []string{"volunteer"}},
			{category: "assistance", keywords: []string{"assistance", "aid", "grant", "loan", "apply"}},
		},
	}
}

// Classify fills in severity and category when the record does not carry them
func (c *Classifier) Classify(record *models.UpdateRecord) {
	text := strings.ToLower(record.Title + " " + record.Content)

	if record.Severity.Rank() == 0 {
		record.Severity = c.classifySeverity(text)
	}
	if record.Category == "" {
		record.Category = c.classifyCategory(text)
	}
}

// classifySeverity determines the severity level of an update
func (c *Classifier) classifySeverity(text string) models.Severity {
	text = strings.ToLower(text)

	if utils.ContainsAny(text, c.high) {
		return models.SeverityHigh
	} else if utils.ContainsAny(text, c.medium) {
		return models.SeverityMedium
	}

	return models.SeverityLow
}

func (c *Classifier) classifyCategory(text string) string {
	text = strings.ToLower(text)

	for _, rule := range c.categories {
		if utils.ContainsAny(text, rule.keywords) {
			return rule.category
		}
	}
	return DefaultCategory
}
