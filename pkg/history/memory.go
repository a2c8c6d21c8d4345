package history

import (
	"context"
	"sync"
)

// DefaultMaxEntries bounds the in-memory log.
const DefaultMaxEntries = 1000

// MemoryStore keeps observations in a bounded in-memory ring. It is
// the default backend and is also used throughout the tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Observation
	max     int
}

// NewMemoryStore returns a store holding at most max observations;
// max <= 0 selects DefaultMaxEntries.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) Record(_ context.Context, obs Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, obs)
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]Observation, limit)
	for i := 0; i < limit; i++ {
		out[i] = s.entries[len(s.entries)-1-i]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
