package repository

import (
	"github.com/okian/ideaboard/internal/adapters/kv"
	"github.com/okian/ideaboard/pkg/logger"
)

// Option applies a configuration option to the Repository.
type Option func(*Repository)

// WithLogger sets the logger used for decode warnings.
func WithLogger(l logger.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// WithStrictDecode surfaces malformed records as ErrCorrupt instead of
// reading them as empty.
func WithStrictDecode(strict bool) Option {
	return func(r *Repository) {
		r.strict = strict
	}
}

// WithKeyPrefix namespaces the record keys.
func WithKeyPrefix(prefix string) Option {
	return func(r *Repository) {
		r.keys = kv.NewKeyBuilder(prefix)
	}
}
