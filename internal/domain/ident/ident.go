// Package ident generates idea identifiers.
package ident

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scheme names accepted by NewGenerator.
const (
	SchemeClock = "clock"
	SchemeUUID7 = "uuid7"
)

// ErrUnknownScheme is returned for an unsupported id scheme.
var ErrUnknownScheme = errors.New("unknown id scheme")

// Generator hands out unique idea ids.
type Generator interface {
	Next() string
}

// Option applies a configuration option to the ClockGenerator.
type Option func(*ClockGenerator)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(g *ClockGenerator) {
		if now != nil {
			g.now = now
		}
	}
}

// ClockGenerator issues decimal Unix-millisecond ids. When the clock has not
// advanced since the previous id, the previous value plus one is used so ids
// stay strictly increasing within the process.
type ClockGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockGenerator creates a generator backed by time.Now.
func NewClockGenerator(opts ...Option) *ClockGenerator {
	g := &ClockGenerator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns the next id.
func (g *ClockGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// UUIDGenerator issues time-ordered UUIDv7 strings.
type UUIDGenerator struct{}

// Next returns a new UUIDv7, falling back to a random UUID if the v7 source
// fails.
func (UUIDGenerator) Next() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewGenerator returns the generator for scheme.
func NewGenerator(scheme string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeClock:
		return NewClockGenerator(), nil
	case SchemeUUID7:
		return UUIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}
