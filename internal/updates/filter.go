package updates

import (
	"sort"
	"strings"

	"github.com/rajasatyajit/DisasterFeed/internal/models"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

// FilterByCategoryAndSeverity keeps records whose category and severity equal
// the given values, ignoring case. Empty values do not filter.
func FilterByCategoryAndSeverity(records []models.UpdateRecord, category string, severity models.Severity) []models.UpdateRecord {
	category = strings.TrimSpace(category)
	if category == "" && severity == "" {
		return records
	}

	out := make([]models.UpdateRecord, 0, len(records))
	for _, r := range records {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		if severity != "" && !strings.EqualFold(string(r.Severity), string(severity)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SearchByKeywords keeps records where any comma-separated term appears in
// the title or content. An empty term list returns records unchanged.
func SearchByKeywords(records []models.UpdateRecord, keywords string) []models.UpdateRecord {
	terms := utils.SplitTerms(keywords)
	if len(terms) == 0 {
		return records
	}

	out := make([]models.UpdateRecord, 0, len(records))
	for _, r := range records {
		if utils.ContainsAny(strings.ToLower(r.Title+" "+r.Content), terms) {
			out = append(out, r)
		}
	}
	return out
}

// Rank returns a copy of records ordered by severity, then most recent first.
// Records that tie on both keep their input order.
func Rank(records []models.UpdateRecord) []models.UpdateRecord {
	out := make([]models.UpdateRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Severity.Rank(), out[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// Limit returns at most n records from the front of records
func Limit[T any](records []T, n int) []T {
	if n >= 0 && len(records) > n {
		return records[:n]
	}
	return records
}
