// Package store holds audit.Store implementations.
package store

import (
	"context"
	"sync"

	audit "deletionguard/pkg/platform/audit"
)

const defaultMemoryCapacity = 1000

// InMemoryStore keeps the most recent audit events in a fixed-size ring.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
	next   int
	full   bool
}

// NewInMemoryStore creates a ring-buffered store. A non-positive capacity
// falls back to 1000 events.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &InMemoryStore{events: make([]audit.Event, capacity)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[s.next] = event
	s.next = (s.next + 1) % len(s.events)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// ListRecent returns up to limit events, newest first. A non-positive limit
// returns everything retained.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	result := make([]audit.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.events)) % len(s.events)
		result = append(result, s.events[idx])
	}
	return result, nil
}
