package social

import (
	"sort"
	"strings"
	"time"

	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

// Priority keywords, checked in order; the first tier with a match wins.
var priorityTiers = []struct {
	priority models.Priority
	keywords []string
}{
	{priority: models.PriorityUrgent, keywords: []string{"urgent", "sos", "emergency", "evacuate"}},
	{priority: models.PriorityHigh, keywords: []string{"need", "help", "stranded", "trapped"}},
	{priority: models.PriorityMedium, keywords: []string{"offering", "volunteer", "shelter", "donate"}},
}

// ClassifyPriority assigns an urgency tier from the post text
func ClassifyPriority(text string) models.Priority {
	text = strings.ToLower(text)
	for _, tier := range priorityTiers {
		if utils.ContainsAny(text, tier.keywords) {
			return tier.priority
		}
	}
	return models.PriorityLow
}

// RelevanceScore scores a post against lower-cased search terms:
// 3 per term found in the text, 2 if found in any hashtag, 1 if found in the location.
// With no terms every post scores 1.
func RelevanceScore(post models.SocialPost, terms []string) int {
	if len(terms) == 0 {
		return 1
	}

	text := strings.ToLower(post.Post)
	location := strings.ToLower(post.Location)
	score := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			score += 3
		}
		for _, tag := range post.Hashtags {
			if strings.Contains(strings.ToLower(tag), term) {
				score += 2
				break
			}
		}
		if location != "" && strings.Contains(location, term) {
			score++
		}
	}
	return score
}

// Process returns a copy of posts with priority, relevance and processing
// time set, ordered by priority then relevance, both descending.
func Process(posts []models.SocialPost, keywords string, now time.Time) []models.SocialPost {
	terms := utils.SplitTerms(keywords)
	processedAt := now.UTC()

	out := make([]models.SocialPost, len(posts))
	for i, p := range posts {
		p.Priority = ClassifyPriority(p.Post)
		p.RelevanceScore = RelevanceScore(p, terms)
		p.ProcessedAt = processedAt
		if p.Hashtags == nil {
			p.Hashtags = []string{}
		}
		out[i] = p
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}
