// Package seed fills a board with generated ideas and votes and checks that
// the resulting leaderboard is consistent.
package seed

import (
	"context"
	"time"

	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/internal/domain/model"
	"github.com/okian/ideaboard/internal/domain/ranking"
)

// Defaults used when Config fields are left zero.
const (
	DefaultIdeas = 12
	DefaultVotes = 8
)

// Config holds configuration for a seeding run.
type Config struct {
	Ideas int    // Number of ideas to submit
	Votes int    // Upper bound on votes to cast, one per distinct idea
	Seed  uint64 // Non-zero makes generated text and vote targets deterministic
}

// Report holds run statistics.
type Report struct {
	IdeasSubmitted     int
	VotesCast          int
	VotesDuplicate     int
	LeaderboardEntries int
	TopVotes           int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// Board is the part of the service a seeding run drives.
type Board interface {
	Submit(ctx context.Context, sub service.Submission) (model.Idea, error)
	CastVote(ctx context.Context, id string) (model.Idea, error)
	ListIdeas(ctx context.Context, key ranking.SortKey) ([]model.Idea, error)
	Leaderboard(ctx context.Context) ([]ranking.Entry, error)
}

func (c Config) withDefaults() Config {
	if c.Ideas <= 0 {
		c.Ideas = DefaultIdeas
	}
	if c.Votes < 0 {
		c.Votes = 0
	}
	return c
}
