// Package ranking orders ideas for listing and derives the leaderboard.
// All functions are pure: they copy their input and never touch storage.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/ideaboard/internal/domain/model"
)

// ErrInvalidSortKey is returned for a sort key other than rating or votes.
var ErrInvalidSortKey = errors.New("invalid sort key")

// SortKey names the numeric field ideas are ordered by.
type SortKey string

// Supported sort keys.
const (
	ByRating SortKey = "rating"
	ByVotes  SortKey = "votes"
)

// DefaultLeaderboardSize is the number of ideas shown on the leaderboard.
const DefaultLeaderboardSize = 5

var badges = []string{"🥇", "🥈", "🥉"}

// Entry is one leaderboard row.
type Entry struct {
	Rank  int        `json:"rank"`
	Badge string     `json:"badge,omitempty"`
	Idea  model.Idea `json:"idea"`
}

// ParseSortKey accepts "rating" or "votes" (case-insensitive).
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case ByRating:
		return ByRating, nil
	case ByVotes:
		return ByVotes, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidSortKey, s, ByRating, ByVotes)
	}
}

func (k SortKey) field(i model.Idea) int {
	if k == ByVotes {
		return i.Votes
	}
	return i.Rating
}

// SortIdeas returns a copy of ideas sorted descending by key. The sort is
// stable: ideas with equal keys keep their relative order. An unknown key
// sorts by rating.
func SortIdeas(ideas []model.Idea, key SortKey) []model.Idea {
	out := slices.Clone(ideas)
	slices.SortStableFunc(out, func(a, b model.Idea) int {
		return cmp.Compare(key.field(b), key.field(a))
	})
	if out == nil {
		out = []model.Idea{}
	}
	return out
}

// TopN returns the first n ideas by descending votes. Fewer are returned when
// the collection is smaller; n <= 0 yields an empty slice.
func TopN(ideas []model.Idea, n int) []model.Idea {
	if n <= 0 {
		return []model.Idea{}
	}
	sorted := SortIdeas(ideas, ByVotes)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Leaderboard ranks the top n ideas by votes. The first three places carry a
// medal badge.
func Leaderboard(ideas []model.Idea, n int) []Entry {
	top := TopN(ideas, n)
	entries := make([]Entry, len(top))
	for i, idea := range top {
		entries[i] = Entry{Rank: i + 1, Idea: idea}
		if i < len(badges) {
			entries[i].Badge = badges[i]
		}
	}
	return entries
}
