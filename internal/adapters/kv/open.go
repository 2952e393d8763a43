package kv

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/ideaboard/pkg/logger"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// Config selects and configures a backend.
type Config struct {
	Backend   string
	Path      string // file backend directory
	RedisURL  string
	SQLDriver string
	SQLDSN    string
}

// Open builds the configured backend wrapped with instrumentation.
func Open(ctx context.Context, cfg Config, log logger.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))

	var (
		s   Store
		err error
	)
	switch backend {
	case BackendMemory:
		s = NewMemory()
	case BackendFile:
		s, err = NewFile(cfg.Path)
	case BackendRedis:
		s, err = NewRedis(ctx, cfg.RedisURL)
	case BackendSQL:
		s, err = NewSQL(ctx, cfg.SQLDriver, cfg.SQLDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Nop()
	}
	name := backend
	if backend == BackendSQL {
		name = backend + "/" + strings.ToLower(strings.TrimSpace(cfg.SQLDriver))
	}
	return Instrument(s, name, log), nil
}

// SupportsBatch reports whether s can write several keys all-or-nothing.
func SupportsBatch(s Store) bool {
	_, ok := s.(Batcher)
	return ok
}
