// Package session provides the process-wide store of per-user conversational
// state. Access is serialized per user: the engine acquires a user's scope for
// the duration of one full message transition, so two messages from the same
// user can never interleave, while different users proceed independently.
package session

import (
	"sync"
	"time"

	"expensebot/internal/model"
)

// DefaultTTL is how long an idle session survives before eviction.
const DefaultTTL = time.Hour

// entry pairs a user's session with its scope lock. lastSeen is guarded by
// the store mutex, sess by the entry mutex.
type entry struct {
	sess     *model.SessionContext
	lastSeen time.Time
	mu       sync.Mutex
}

// Store keeps one SessionContext per user identifier with idle expiry.
type Store struct {
	entries map[string]*entry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.Mutex
}

// NewStore creates a store whose idle sessions are evicted after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go s.janitor()

	return s
}

// Acquire locks the user's session scope and returns the release function.
// Hold the scope for the whole transition and release it on every exit path;
// Get, Upsert, and Clear for that user must only be called while holding it.
func (s *Store) Acquire(userID string) func() {
	for {
		e := s.entryFor(userID)
		e.mu.Lock()

		// The janitor may have evicted e between lookup and lock.
		s.mu.Lock()
		current := s.entries[userID]
		s.mu.Unlock()
		if current == e {
			return e.mu.Unlock
		}
		e.mu.Unlock()
	}
}

// Get returns the user's session, or nil when none exists.
func (s *Store) Get(userID string) *model.SessionContext {
	return s.entryFor(userID).sess
}

// Upsert stores the user's session.
func (s *Store) Upsert(userID string, sess *model.SessionContext) {
	s.entryFor(userID).sess = sess
}

// Clear drops the user's session content. The scope lock itself survives so
// that in-flight acquisitions stay valid.
func (s *Store) Clear(userID string) {
	s.entryFor(userID).sess = nil
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the eviction goroutine.
func (s *Store) Close() {
	close(s.stopCh)
}

func (s *Store) entryFor(userID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	e.lastSeen = time.Now()
	return e
}

// janitor periodically evicts sessions idle longer than the TTL.
func (s *Store) janitor() {
	ticker := time.NewTicker(s.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweepInterval() time.Duration {
	if s.ttl < 5*time.Minute {
		return s.ttl
	}
	return 5 * time.Minute
}

func (s *Store) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if now.Sub(e.lastSeen) < s.ttl {
			continue
		}
		// Never evict a session whose scope is held mid-transition.
		if !e.mu.TryLock() {
			continue
		}
		delete(s.entries, id)
		e.mu.Unlock()
	}
}
