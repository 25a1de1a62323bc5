package draftstore

import (
	"context"
	"sync"

	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

// MemoryStore keeps everything in process memory. Draft variants are plain
// values, so storing them copies them.
type MemoryStore struct {
	mu        sync.RWMutex
	opts      options
	ids       *IDGenerator
	drafts    map[onboarding.Role]onboarding.Draft
	finalized map[onboarding.Role]onboarding.FinalizedApplication
	profiles  []directory.Record
	lastID    string
	lastRole  onboarding.Role
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		opts:      o,
		ids:       NewIDGenerator(o.now),
		drafts:    make(map[onboarding.Role]onboarding.Draft),
		finalized: make(map[onboarding.Role]onboarding.FinalizedApplication),
	}
}

func (s *MemoryStore) Load(_ context.Context, role onboarding.Role) (onboarding.Draft, error) {
	empty, err := onboarding.NewDraft(role)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.drafts[role]; ok {
		return d, nil
	}
	return empty, nil
}

func (s *MemoryStore) Save(_ context.Context, d onboarding.Draft) error {
	if d == nil {
		return onboarding.ErrInvalidDraft
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.Role()] = d
	return nil
}

func (s *MemoryStore) Finalize(_ context.Context, d onboarding.Draft) (onboarding.FinalizedApplication, error) {
	if d == nil {
		return onboarding.FinalizedApplication{}, onboarding.ErrInvalidDraft
	}
	id, at := s.ids.Next(d.Role())
	app, err := onboarding.NewFinalizedApplication(id, d, at)
	if err != nil {
		return onboarding.FinalizedApplication{}, err
	}

	s.mu.Lock()
	s.finalized[d.Role()] = app
	s.mu.Unlock()
	return app, nil
}

func (s *MemoryStore) LoadFinalized(_ context.Context, role onboarding.Role) (onboarding.FinalizedApplication, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.finalized[role]
	return app, ok, nil
}

func (s *MemoryStore) Append(_ context.Context, rec directory.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, copyRecord(rec))
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]directory.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]directory.Record, len(s.profiles))
	for i, rec := range s.profiles {
		out[i] = copyRecord(rec)
	}
	return out, nil
}

func (s *MemoryStore) SetLastCreated(_ context.Context, id string, role onboarding.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID = id
	s.lastRole = role
	return nil
}

func (s *MemoryStore) LastCreated(_ context.Context) (string, onboarding.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastID == "" {
		return "", "", ErrNoLastCreated
	}
	return s.lastID, s.lastRole, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func copyRecord(rec directory.Record) directory.Record {
	if rec.Drivers != nil {
		rec.Drivers = append([]string(nil), rec.Drivers...)
	}
	return rec
}

var _ Store = (*MemoryStore)(nil)
