// Package cache holds the coordinate cache and the pending set, the only
// shared mutable state in the annotation pipeline. Both live behind a single
// mutex because cache membership and pending membership must be checked and
// updated together: an entity id is never in both at once.
package cache

import (
	"sync"

	"github.com/UnknownOlympus/pinmap/internal/models"
)

// Store maps entity identifiers to resolved coordinates and tracks which ids
// are currently awaiting resolution. Entries are set exactly once and never
// evicted: city/state-level geocoding does not change within a session.
type Store struct {
	mu      sync.RWMutex
	coords  map[string]models.Coordinates
	pending map[string]struct{}
}

// NewStore creates an empty coordinate store.
func NewStore() *Store {
	return &Store{
		coords:  make(map[string]models.Coordinates),
		pending: make(map[string]struct{}),
	}
}

// Get returns the cached coordinates for the given entity id, if any.
func (s *Store) Get(id string) (models.Coordinates, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coords, ok := s.coords[id]
	return coords, ok
}

// Set stores the coordinates for the given entity id and clears its pending
// mark. The first resolution wins: if an entry already exists the call is a
// no-op and Set returns false, so two racing geocode attempts cannot thrash
// the cache.
func (s *Store) Set(id string, coords models.Coordinates) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)

	if _, exists := s.coords[id]; exists {
		return false
	}
	s.coords[id] = coords

	return true
}

// MarkPending records that the given entity id is queued for resolution.
// It returns false when the id is already cached or already pending, which is
// the deduplication check the scheduler relies on. The cached and pending
// lookups happen under one lock acquisition so the two sets stay mutually
// exclusive.
func (s *Store) MarkPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, cached := s.coords[id]; cached {
		return false
	}
	if _, queued := s.pending[id]; queued {
		return false
	}
	s.pending[id] = struct{}{}

	return true
}

// ClearPending removes the pending mark for the given entity id. Called when a
// resolution fails so a later request can queue the id again.
func (s *Store) ClearPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
}

// IsPending reports whether the given entity id is awaiting resolution.
func (s *Store) IsPending(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pending[id]
	return ok
}

// Len returns the number of cached coordinates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.coords)
}

// PendingLen returns the number of ids awaiting resolution.
func (s *Store) PendingLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pending)
}
