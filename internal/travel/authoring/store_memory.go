package authoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tabilog/pkg/platform/sentinel"
)

// ErrSessionNotFound distinguishes a missing draft session from a missing
// itinerary entry; both match sentinel.ErrNotFound.
var ErrSessionNotFound = fmt.Errorf("draft session %w", sentinel.ErrNotFound)

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
	removed bool
}

// InMemoryStore keeps draft sessions for a single instance. The map lock only
// guards membership; each session has its own lock so slow work on one draft
// never blocks another.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *InMemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, sentinel.ErrConflict)
	}
	s.sessions[session.ID] = &sessionEntry{session: session}
	return nil
}

// With runs fn while holding the session's lock.
func (s *InMemoryStore) With(_ context.Context, id string, fn func(*Session) error) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return fn(e.session)
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before cutoff, skipping any that are
// mid-submission. It returns how many were removed.
func (s *InMemoryStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if !e.session.submitting && e.session.UpdatedAt.Before(cutoff) {
			e.removed = true
			delete(s.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}
