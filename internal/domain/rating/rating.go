// Package rating defines the contract for rating a newly submitted idea.
package rating

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/okian/ideaboard/internal/domain/model"
)

// Input abstracts the submission fields a rater may look at.
type Input struct {
	StartupName string
	Tagline     string
	Description string
}

// Rater computes the immutable rating of a new idea.
type Rater interface {
	// Rate returns a value in [model.MinRating, model.MaxRating], honoring
	// ctx for cancellation.
	Rate(ctx context.Context, in Input) (int, error)
}

// Option applies a configuration option to the RandomRater.
type Option func(*RandomRater)

// WithSeed makes the draws deterministic.
func WithSeed(seed uint64) Option {
	return func(r *RandomRater) {
		r.rng = rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // ratings are not security sensitive
	}
}

// RandomRater draws a uniform integer rating and ignores the input.
type RandomRater struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRater creates a rater seeded from the runtime source unless
// WithSeed is given.
func NewRandomRater(opts ...Option) *RandomRater {
	r := &RandomRater{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // ratings are not security sensitive
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rate returns a uniform draw in [0,100].
func (r *RandomRater) Rate(ctx context.Context, _ Input) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.MinRating + r.rng.IntN(model.MaxRating-model.MinRating+1), nil
}

// Fixed always returns the same rating. Useful for tests and fixtures.
type Fixed int

// Rate returns the fixed value clamped to the rating range.
func (f Fixed) Rate(ctx context.Context, _ Input) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	return max(model.MinRating, min(model.MaxRating, int(f))), nil
}
