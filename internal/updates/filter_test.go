package updates

import (
	"testing"
	"time"

	"github.com/rajasatyajit/DisasterFeed/internal/fixtures"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

func TestFilterByCategoryAndSeverity(t *testing.T) {
	all := fixtures.OfficialUpdates()

	tests := []struct {
		name     string
		category string
		severity models.Severity
		want     []string
	}{
		{name: "Category only", category: "shelter", want: []string{"fema-001"}},
		{name: "Category case insensitive", category: "SHELTER", want: []string{"fema-001"}},
		{name: "Severity only", severity: models.SeverityHigh, want: []string{"fema-001", "nyc-001", "nws-001"}},
		{name: "Both", category: "supplies", severity: models.SeverityHigh, want: []string{"nyc-001"}},
		{name: "Both disjoint", category: "volunteer", severity: models.SeverityHigh, want: []string{}},
		{name: "Neither", want: []string{"fema-001", "fema-002", "redcross-001", "nyc-001", "nws-001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertIDs(t, FilterByCategoryAndSeverity(all, tt.category, tt.severity), tt.want...)
		})
	}
}

func TestSearchByKeywords(t *testing.T) {
	all := fixtures.OfficialUpdates()

	tests := []struct {
		name     string
		keywords string
		want     []string
	}{
		{name: "Union of terms", keywords: "water,volunteer", want: []string{"redcross-001", "nyc-001"}},
		{name: "Whitespace and case", keywords: "  FLOOD , ", want: []string{"nws-001"}},
		{name: "Empty terms ignored", keywords: " , ,", want: []string{"fema-001", "fema-002", "redcross-001", "nyc-001", "nws-001"}},
		{name: "No match", keywords: "tsunami", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertIDs(t, SearchByKeywords(all, tt.keywords), tt.want...)
		})
	}
}

func TestRank(t *testing.T) {
	all := fixtures.OfficialUpdates()

	ranked := Rank(all)
	assertIDs(t, ranked, "nws-001", "fema-001", "nyc-001", "redcross-001", "fema-002")

	// input untouched
	assertIDs(t, all, "fema-001", "fema-002", "redcross-001", "nyc-001", "nws-001")

	assertIDs(t, Rank(SearchByKeywords(all, "water,volunteer")), "nyc-001", "redcross-001")
}

func TestRank_StableOnTies(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []models.UpdateRecord{
		{ID: "x", Severity: models.SeverityLow, PublishedAt: ts},
		{ID: "y", Severity: models.SeverityLow, PublishedAt: ts},
		{ID: "z", Severity: models.SeverityMedium, PublishedAt: ts.Add(-time.Hour)},
	}
	assertIDs(t, Rank(records), "z", "x", "y")
}

func TestLimit(t *testing.T) {
	all := fixtures.OfficialUpdates()
	if got := Limit(all, 2); len(got) != 2 || got[0].ID != "fema-001" {
		t.Errorf("Limit(2) returned %v", ids(got))
	}
	if got := Limit(all, 100); len(got) != len(all) {
		t.Errorf("Limit(100) returned %d records", len(got))
	}
}
