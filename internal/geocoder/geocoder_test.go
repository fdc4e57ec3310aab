package geocoder

import (
	"errors"
	"testing"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

func TestGeocoder_Locate(t *testing.T) {
	geocoder := New()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "City and state", text: "Roads flooded in Houston, TX this morning", expected: "Houston, TX"},
		{name: "Multi word city", text: "Smoke visible from Santa Rosa, CA", expected: "Santa Rosa, CA"},
		{name: "County", text: "Shelter open near Harris County tonight", expected: "Harris County"},
		{name: "First match wins", text: "Moving from Tampa, FL to Orlando, FL", expected: "Tampa, FL"},
		{name: "No location", text: "power is out on our street", expected: ""},
		{name: "Lower case words ignored", text: "stay safe, ok everyone", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geocoder.Locate(tt.text); got != tt.expected {
				t.Errorf("Expected location %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestGeocoder_Geocode(t *testing.T) {
	geocoder := New()

	post := models.SocialPost{Post: "Water rising fast in Lake Charles, LA"}
	if err := geocoder.Geocode(&post); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if post.Location != "Lake Charles, LA" {
		t.Errorf("Expected location Lake Charles, LA, got %q", post.Location)
	}

	post = models.SocialPost{Post: "Flooding in Miami, FL", Location: "Downtown"}
	if err := geocoder.Geocode(&post); err != nil {
		t.Fatalf("Expected no error for provider location, got %v", err)
	}
	if post.Location != "Downtown" {
		t.Errorf("Expected provider location to be kept, got %q", post.Location)
	}

	post = models.SocialPost{ID: "tw-1", Post: "power is out on our street"}
	err := geocoder.Geocode(&post)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if post.Location != "" {
		t.Errorf("Expected empty location, got %q", post.Location)
	}
}

func TestNew(t *testing.T) {
	geocoder := New()

	if geocoder == nil {
		t.Fatal("Expected geocoder instance, got nil")
	}
	if geocoder.cityRegex == nil || geocoder.nearRegex == nil {
		t.Error("Expected regexes to be initialized")
	}
}
