package geocoder

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

// Geocoder extracts a place name from free text
type Geocoder struct {
	cityRegex *regexp.Regexp
	nearRegex *regexp.Regexp
}

// New creates a new geocoder instance
func New() *Geocoder {
	return &Geocoder{
		cityRegex: regexp.MustCompile(`\b([A-Z][a-z]+(?: [A-Z][a-z]+)*, [A-Z]{2})\b`),
		nearRegex: regexp.MustCompile(`\b(?:in|near|at) ((?:[A-Z][a-z]+ )*(?:County|Parish|Borough|City))\b`),
	}
}

// Locate returns the first "City, ST" or "<Name> County" style location in text
func (g *Geocoder) Locate(text string) string {
	if loc := g.cityRegex.FindString(text); loc != "" {
		return loc
	}
	if m := g.nearRegex.FindStringSubmatch(text); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// Geocode fills the post's location when the provider did not supply one.
// It returns ErrNotFound when the text names no recognizable place.
func (g *Geocoder) Geocode(post *models.SocialPost) error {
	if post.Location != "" {
		return nil
	}
	loc := g.Locate(post.Post)
	if loc == "" {
		return fmt.Errorf("locate post %s: %w", post.ID, apperrors.ErrNotFound)
	}
	post.Location = loc
	return nil
}
