// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Rating bounds. Ratings are drawn once at creation and never change.
const (
	MinRating = 0
	MaxRating = 100
)

// Idea is a submitted startup idea. JSON field names match the persisted
// layout of the "ideas" record.
type Idea struct {
	ID          string `json:"id"`          // time-based, never reused
	StartupName string `json:"startupName"` // trimmed, non-empty
	Tagline     string `json:"tagline"`     // trimmed, non-empty
	Description string `json:"description"` // trimmed, non-empty
	Rating      int    `json:"rating"`      // [MinRating, MaxRating]
	Votes       int    `json:"votes"`       // never decreases
}

// ShareText renders the idea in the message format used for sharing and
// copying to the clipboard.
func (i Idea) ShareText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Startup Idea: %s\n", i.StartupName)
	fmt.Fprintf(&b, "Tagline: %s\n", i.Tagline)
	fmt.Fprintf(&b, "Description: %s\n", i.Description)
	fmt.Fprintf(&b, "Rating: %d\n", i.Rating)
	fmt.Fprintf(&b, "Votes: %d", i.Votes)
	return b.String()
}

// Find returns the index of the idea with id, or -1.
func Find(ideas []Idea, id string) int {
	for i := range ideas {
		if ideas[i].ID == id {
			return i
		}
	}
	return -1
}
