package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/onboarding"
)

// DefaultSessionIdle is how long an untouched wizard session is kept.
const DefaultSessionIdle = 2 * time.Hour

type sessionEntry struct {
	controller *onboarding.Controller
	lastSeen   time.Time
}

// Sessions holds the in-memory wizard sessions keyed by opaque id. Drafts
// outlive sessions through the draft store; the session only carries the
// step position.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	idle    time.Duration
	now     func() time.Time
}

func NewSessions(idle time.Duration) *Sessions {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &Sessions{
		entries: make(map[string]*sessionEntry),
		idle:    idle,
		now:     time.Now,
	}
}

func (s *Sessions) Add(c *onboarding.Controller) string {
	id := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &sessionEntry{controller: c, lastSeen: s.now()}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return id
}

// Get returns the controller for id and marks the session as used.
func (s *Sessions) Get(id string) (*onboarding.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.controller, true
}

func (s *Sessions) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than the configured limit and
// returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idle)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.entries)))
	return removed
}
