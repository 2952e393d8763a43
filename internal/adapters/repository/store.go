// Package repository persists ideas and the device's votes in a key-value store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/ideaboard/internal/adapters/kv"
	"github.com/okian/ideaboard/internal/domain/model"
	"github.com/okian/ideaboard/internal/domain/voteset"
	"github.com/okian/ideaboard/pkg/logger"
	"github.com/okian/ideaboard/pkg/metrics"
)

// Store provides read/write access to the board state.
type Store interface {
	// ListIdeas returns the whole collection, most recent first.
	ListIdeas(ctx context.Context) ([]model.Idea, error)
	// SaveIdea prepends idea to the collection.
	// Returns ErrDuplicateID if the id is already stored.
	SaveIdea(ctx context.Context, idea model.Idea) error
	// SaveIdeas replaces the whole collection.
	SaveIdeas(ctx context.Context, ideas []model.Idea) error

	UserVotes(ctx context.Context) (*voteset.Set, error)
	SaveUserVotes(ctx context.Context, votes *voteset.Set) error

	// SaveVote writes both records all-or-nothing.
	// Returns ErrBatchUnsupported (from kv) if the backend cannot batch.
	SaveVote(ctx context.Context, ideas []model.Idea, votes *voteset.Set) error
	SupportsAtomicVotes() bool
}

// Repository implements Store on top of a kv.Store.
type Repository struct {
	store  kv.Store
	keys   *kv.KeyBuilder
	log    logger.Logger
	strict bool
}

var _ Store = (*Repository)(nil)

// New constructs a repository over store.
func New(store kv.Store, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		keys:  kv.NewKeyBuilder(""),
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) ListIdeas(ctx context.Context) ([]model.Idea, error) {
	ideas := []model.Idea{}
	if err := r.load(ctx, r.keys.Ideas(), &ideas); err != nil {
		return nil, err
	}
	if ideas == nil {
		// stored literal null
		ideas = []model.Idea{}
	}
	metrics.UpdateIdeasTotal(len(ideas))
	return ideas, nil
}

func (r *Repository) SaveIdea(ctx context.Context, idea model.Idea) error {
	ideas, err := r.ListIdeas(ctx)
	if err != nil {
		return err
	}
	if model.Find(ideas, idea.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, idea.ID)
	}

	next := make([]model.Idea, 0, len(ideas)+1)
	next = append(next, idea)
	next = append(next, ideas...)
	return r.SaveIdeas(ctx, next)
}

func (r *Repository) SaveIdeas(ctx context.Context, ideas []model.Idea) error {
	return r.save(ctx, r.keys.Ideas(), nonNil(ideas))
}

func (r *Repository) UserVotes(ctx context.Context) (*voteset.Set, error) {
	votes := voteset.New()
	if err := r.load(ctx, r.keys.UserVotes(), votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *Repository) SaveUserVotes(ctx context.Context, votes *voteset.Set) error {
	return r.save(ctx, r.keys.UserVotes(), votesOrEmpty(votes))
}

func (r *Repository) SaveVote(ctx context.Context, ideas []model.Idea, votes *voteset.Set) error {
	b, ok := r.store.(kv.Batcher)
	if !ok {
		return kv.ErrBatchUnsupported
	}

	ideasJSON, err := json.Marshal(nonNil(ideas))
	if err != nil {
		return fmt.Errorf("%w: encode ideas: %w", ErrStorage, err)
	}
	votesJSON, err := json.Marshal(votesOrEmpty(votes))
	if err != nil {
		return fmt.Errorf("%w: encode votes: %w", ErrStorage, err)
	}

	if err := b.SetMany(ctx, map[string]string{
		r.keys.Ideas():     string(ideasJSON),
		r.keys.UserVotes(): string(votesJSON),
	}); err != nil {
		return fmt.Errorf("%w: write vote: %w", ErrStorage, err)
	}
	return nil
}

func (r *Repository) SupportsAtomicVotes() bool {
	return kv.SupportsBatch(r.store)
}

// load decodes key into dst. A missing key leaves dst untouched. A malformed
// record leaves dst untouched too unless strict decoding is on.
func (r *Repository) load(ctx context.Context, key string, dst any) error {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: read %q: %w", ErrStorage, key, err)
	}
	if !found || raw == "" {
		return nil
	}

	switch d := dst.(type) {
	case *[]model.Idea:
		// a failed decode must not leave dst half filled
		var tmp []model.Idea
		if err := json.Unmarshal([]byte(raw), &tmp); err != nil {
			return r.corrupt(ctx, key, err)
		}
		*d = tmp
	case *voteset.Set:
		if err := json.Unmarshal([]byte(raw), d); err != nil {
			return r.corrupt(ctx, key, err)
		}
	default:
		return fmt.Errorf("%w: unsupported destination %T", ErrStorage, dst)
	}
	return nil
}

func (r *Repository) corrupt(ctx context.Context, key string, err error) error {
	metrics.RecordCorruptRecord(key)
	if r.strict {
		return fmt.Errorf("%w: %w: %q: %w", ErrStorage, ErrCorrupt, key, err)
	}
	r.log.Warn(ctx, "malformed record read as empty",
		logger.String("key", key),
		logger.Error(err))
	return nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrStorage, key, err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrStorage, key, err)
	}
	return nil
}

func nonNil(ideas []model.Idea) []model.Idea {
	if ideas == nil {
		return []model.Idea{}
	}
	return ideas
}

func votesOrEmpty(votes *voteset.Set) *voteset.Set {
	if votes == nil {
		return voteset.New()
	}
	return votes
}
