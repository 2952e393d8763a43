package service

import (
	"strings"

	"github.com/okian/ideaboard/internal/domain/ident"
	"github.com/okian/ideaboard/internal/domain/rating"
	"github.com/okian/ideaboard/pkg/logger"
)

// Vote write modes.
const (
	VoteWriteSequential = "sequential"
	VoteWriteAtomic     = "atomic"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRater replaces the random rater.
func WithRater(r rating.Rater) Option {
	return func(s *Service) {
		if r != nil {
			s.rater = r
		}
	}
}

// WithIDGenerator replaces the clock id generator.
func WithIDGenerator(g ident.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLeaderboardSize sets how many ideas the leaderboard shows.
func WithLeaderboardSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardSize = n
		}
	}
}

// WithVoteWriteMode selects "sequential" or "atomic" vote persistence.
// Unknown values keep the default.
func WithVoteWriteMode(mode string) Option {
	return func(s *Service) {
		switch m := strings.ToLower(strings.TrimSpace(mode)); m {
		case VoteWriteSequential, VoteWriteAtomic:
			s.voteWriteMode = m
		}
	}
}
