// Package apisession keeps short-lived per-client state between connections.
// Clients identify themselves with an opaque session ID, normally a UUID
// announced by the server on first connect.
package apisession

import (
	"sync"
	"time"
)

// cleanupInterval is how many Save calls trigger a lazy eviction pass.
const cleanupInterval = 100

type entry[T any] struct {
	value     T
	updatedAt time.Time
}

// Store is a typed, thread-safe snapshot store. Entries expire ttl after
// their last Save or Load.
type Store[T any] struct {
	mu        sync.Mutex
	entries   map[string]*entry[T]
	ttl       time.Duration
	now       func() time.Time
	saveCalls int
}

// New creates a Store that forgets sessions idle longer than ttl.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save stores a snapshot for the session, replacing any previous one.
func (s *Store[T]) Save(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveCalls++
	if s.saveCalls%cleanupInterval == 0 {
		s.cleanupLocked()
	}
	s.entries[id] = &entry[T]{value: v, updatedAt: s.now()}
}

// Load returns the snapshot for the session if it has not expired.
func (s *Store[T]) Load(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expiredLocked(e) {
		delete(s.entries, id)
		var zero T
		return zero, false
	}
	e.updatedAt = s.now()
	return e.value, true
}

// Delete forgets a session.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Cleanup evicts all expired sessions.
func (s *Store[T]) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
}

func (s *Store[T]) expiredLocked(e *entry[T]) bool {
	return s.now().Sub(e.updatedAt) > s.ttl
}

func (s *Store[T]) cleanupLocked() {
	for id, e := range s.entries {
		if s.expiredLocked(e) {
			delete(s.entries, id)
		}
	}
}

// Len returns the number of stored sessions, expired ones included until cleanup.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
