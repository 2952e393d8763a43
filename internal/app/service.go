// Package service provides the core business service behind the ideaboard
// front-end: submitting ideas, voting and ranking.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/ideaboard/internal/adapters/repository"
	"github.com/okian/ideaboard/internal/domain/ident"
	"github.com/okian/ideaboard/internal/domain/model"
	"github.com/okian/ideaboard/internal/domain/ranking"
	"github.com/okian/ideaboard/internal/domain/rating"
	"github.com/okian/ideaboard/internal/domain/voteset"
	"github.com/okian/ideaboard/pkg/logger"
	"github.com/okian/ideaboard/pkg/metrics"
)

// maxIDAttempts bounds retries when a generated id collides with a stored one.
const maxIDAttempts = 3

// Submission holds the raw form fields of a new idea.
type Submission struct {
	StartupName string
	Tagline     string
	Description string
}

// Stats summarizes the board.
type Stats struct {
	Ideas      int `json:"ideas"`
	TotalVotes int `json:"totalVotes"`
	VotesCast  int `json:"votesCast"`
	TopRating  int `json:"topRating"`
}

// Service implements the ideaboard flows over a repository.Store.
type Service struct {
	// serializes read-modify-write cycles within the process
	mu sync.Mutex

	store  repository.Store
	rater  rating.Rater
	ids    ident.Generator
	logger logger.Logger

	leaderboardSize int
	voteWriteMode   string
}

// New constructs a new Service with default configuration.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		leaderboardSize: ranking.DefaultLeaderboardSize,
		voteWriteMode:   VoteWriteSequential,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.rater == nil {
		s.rater = rating.NewRandomRater()
	}
	if s.ids == nil {
		s.ids = ident.NewClockGenerator()
	}

	if s.voteWriteMode == VoteWriteAtomic && !store.SupportsAtomicVotes() {
		s.logger.Warn(context.Background(), "storage backend cannot batch writes, falling back to sequential votes")
		s.voteWriteMode = VoteWriteSequential
	}

	return s
}

// VoteWriteMode returns the effective vote persistence mode.
func (s *Service) VoteWriteMode() string { return s.voteWriteMode }

// Submit validates sub, rates it and stores it at the head of the collection.
func (s *Service) Submit(ctx context.Context, sub Submission) (model.Idea, error) {
	sub = Submission{
		StartupName: strings.TrimSpace(sub.StartupName),
		Tagline:     strings.TrimSpace(sub.Tagline),
		Description: strings.TrimSpace(sub.Description),
	}
	if err := validate(sub); err != nil {
		return model.Idea{}, err
	}

	r, err := s.rater.Rate(ctx, rating.Input{
		StartupName: sub.StartupName,
		Tagline:     sub.Tagline,
		Description: sub.Description,
	})
	if err != nil {
		return model.Idea{}, fmt.Errorf("rate idea: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idea := model.Idea{
		StartupName: sub.StartupName,
		Tagline:     sub.Tagline,
		Description: sub.Description,
		Rating:      r,
	}
	for attempt := 1; ; attempt++ {
		idea.ID = s.ids.Next()
		err = s.store.SaveIdea(ctx, idea)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateID) || attempt >= maxIDAttempts {
			s.logger.Error(ctx, "failed to save idea", logger.String("id", idea.ID), logger.Error(err))
			return model.Idea{}, err
		}
		s.logger.Debug(ctx, "id collision, retrying", logger.String("id", idea.ID))
	}

	metrics.RecordIdeaSubmitted()
	s.logger.Info(ctx, "idea submitted",
		logger.String("id", idea.ID),
		logger.Int("rating", idea.Rating),
	)
	return idea, nil
}

func validate(sub Submission) error {
	var missing []string
	if sub.StartupName == "" {
		missing = append(missing, "startupName")
	}
	if sub.Tagline == "" {
		missing = append(missing, "tagline")
	}
	if sub.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) == 0 {
		return nil
	}
	for _, f := range missing {
		metrics.RecordValidationFailure(f)
	}
	return &ValidationError{Fields: missing}
}

// ListIdeas returns every idea ordered by key, descending, ties in stored order.
func (s *Service) ListIdeas(ctx context.Context, key ranking.SortKey) ([]model.Idea, error) {
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.SortIdeas(ideas, key), nil
}

// Idea returns the stored idea with id.
func (s *Service) Idea(ctx context.Context, id string) (model.Idea, error) {
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		return model.Idea{}, err
	}
	i := model.Find(ideas, id)
	if i < 0 {
		return model.Idea{}, fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
	}
	return ideas[i], nil
}

// UserVotes returns the ids this device already voted for.
func (s *Service) UserVotes(ctx context.Context) (*voteset.Set, error) {
	return s.store.UserVotes(ctx)
}

// HasVoted reports whether this device already voted for id.
func (s *Service) HasVoted(ctx context.Context, id string) (bool, error) {
	votes, err := s.store.UserVotes(ctx)
	if err != nil {
		return false, err
	}
	return votes.Has(id), nil
}

// CastVote adds this device's vote to idea id. Both records are reloaded from
// the store on every call. If the device already voted, the current idea is
// returned with ErrAlreadyVoted and nothing is written.
func (s *Service) CastVote(ctx context.Context, id string) (model.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votes, err := s.store.UserVotes(ctx)
	if err != nil {
		return model.Idea{}, err
	}
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		return model.Idea{}, err
	}

	i := model.Find(ideas, id)
	if votes.Has(id) {
		metrics.RecordVoteRejected()
		s.logger.Debug(ctx, "duplicate vote ignored", logger.String("id", id))
		if i < 0 {
			return model.Idea{}, ErrAlreadyVoted
		}
		return ideas[i], ErrAlreadyVoted
	}
	if i < 0 {
		return model.Idea{}, fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
	}

	ideas[i].Votes++
	votes.Add(id)

	if err := s.persistVote(ctx, ideas, votes); err != nil {
		return model.Idea{}, err
	}

	metrics.RecordVoteRecorded()
	s.logger.Info(ctx, "vote recorded",
		logger.String("id", id),
		logger.Int("votes", ideas[i].Votes),
	)
	return ideas[i], nil
}

func (s *Service) persistVote(ctx context.Context, ideas []model.Idea, votes *voteset.Set) error {
	if s.voteWriteMode == VoteWriteAtomic {
		if err := s.store.SaveVote(ctx, ideas, votes); err != nil {
			s.logger.Error(ctx, "failed to save vote", logger.Error(err))
			return err
		}
		return nil
	}

	if err := s.store.SaveIdeas(ctx, ideas); err != nil {
		s.logger.Error(ctx, "failed to save ideas", logger.Error(err))
		return err
	}
	if err := s.store.SaveUserVotes(ctx, votes); err != nil {
		// the idea count is already stored; the device may vote again
		metrics.RecordVotePartialWrite()
		s.logger.Error(ctx, "vote count saved but vote record was not", logger.Error(err))
		return err
	}
	return nil
}

// Leaderboard returns the top ideas by votes, recomputed on every call.
func (s *Service) Leaderboard(ctx context.Context) ([]ranking.Entry, error) {
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordLeaderboardComputed()
	return ranking.Leaderboard(ideas, s.leaderboardSize), nil
}

// Stats returns counts over the current board.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	ideas, err := s.store.ListIdeas(ctx)
	if err != nil {
		return Stats{}, err
	}
	votes, err := s.store.UserVotes(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Ideas: len(ideas), VotesCast: votes.Len()}
	for _, idea := range ideas {
		st.TotalVotes += idea.Votes
		st.TopRating = max(st.TopRating, idea.Rating)
	}
	return st, nil
}
