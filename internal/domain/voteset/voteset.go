// Package voteset tracks which ideas this device has already voted for.
package voteset

import (
	"encoding/json"
	"slices"
	"sync"
)

// Set is an append-only record of voted idea ids. It keeps insertion order so
// the stored array round-trips unchanged, and an index for O(1) lookups.
type Set struct {
	mu    sync.RWMutex
	order []string
	seen  map[string]struct{}
}

// New returns a set holding ids. Repeated ids collapse to one entry.
func New(ids ...string) *Set {
	s := &Set{seen: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

// Has reports whether id was voted for. A nil set has no votes.
func (s *Set) Has(id string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[id]
	return ok
}

// Add records id. Returns true if id was already present, false if it was
// newly recorded.
func (s *Set) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.add(id)
}

// must hold mu
func (s *Set) add(id string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// IDs returns a copy of the recorded ids in insertion order.
func (s *Set) IDs() []string {
	if s == nil {
		return []string{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.order)
	if out == nil {
		out = []string{}
	}
	return out
}

// Len returns the number of recorded ids.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	return New(s.IDs()...)
}

// MarshalJSON encodes the set as a JSON array of ids.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a JSON array of ids, replacing the current contents.
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.seen = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.add(id)
	}
	return nil
}
