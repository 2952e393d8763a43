// Package kv provides the opaque key-value stores the ideaboard persists to.
package kv

import (
	"context"
	"fmt"
)

// Fixed record keys.
const (
	KeyIdeas     = "ideas"
	KeyUserVotes = "user votes"
)

// Store is a durable string key-value store. A missing key is reported with
// found == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Batcher is implemented by stores that can write several keys
// all-or-nothing.
type Batcher interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// KeyBuilder namespaces record keys so several boards can share a backend.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder. The empty prefix yields bare keys.
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a key with the prefix.
func (kb *KeyBuilder) BuildKey(key string) string {
	if kb == nil || kb.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// Prefix returns the current prefix.
func (kb *KeyBuilder) Prefix() string {
	if kb == nil {
		return ""
	}
	return kb.prefix
}

func (kb *KeyBuilder) Ideas() string {
	return kb.BuildKey(KeyIdeas)
}

func (kb *KeyBuilder) UserVotes() string {
	return kb.BuildKey(KeyUserVotes)
}
