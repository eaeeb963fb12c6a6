package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"matjip/apps/backend/internal/metrics"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	machine  *Machine
	lastSeen time.Time
}

// Store keeps session machines in memory, keyed by a random session id.
// Sessions idle for longer than the TTL are dropped on the next Create.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*entry
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create stores m under a new id and returns the id.
func (s *Store) Create(m *Machine) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	id := uuid.NewString()
	s.sessions[id] = &entry{machine: m.clone(), lastSeen: now}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return id
}

// Get returns a copy of the machine stored under id.
func (s *Store) Get(id string) (*Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e.machine.clone(), nil
}

// Update runs fn on the stored machine under the store lock. When fn returns
// an error the machine is left untouched.
func (s *Store) Update(id string, fn func(*Machine) error) (*Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	working := e.machine.clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	e.machine = working
	return working.clone(), nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) lookupLocked(id string) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
		return nil, false
	}
	e.lastSeen = now
	return e, true
}

func (s *Store) pruneLocked(now time.Time) {
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}
