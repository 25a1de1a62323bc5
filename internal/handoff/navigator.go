package handoff

import (
	"context"
	"sync"
	"time"

	"murmax-onboarding/internal/onboarding"
)

// Signal tells a marketplace view which record to switch to.
type Signal struct {
	Fragment string          `json:"fragment"`
	RecordID string          `json:"recordId"`
	Role     onboarding.Role `json:"role"`
	At       time.Time       `json:"at"`
}

// LastCreatedReader exposes the persisted last-created pointers.
type LastCreatedReader interface {
	LastCreated(ctx context.Context) (string, onboarding.Role, error)
}

// Navigator is a bus consumer holding the most recent navigation signal
// for views that poll.
type Navigator struct {
	mu     sync.RWMutex
	latest Signal
	ok     bool
}

func NewNavigator() *Navigator {
	return &Navigator{}
}

func (n *Navigator) Name() string { return "navigator" }

func (n *Navigator) Consume(_ context.Context, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.latest = Signal{
		Fragment: ev.Fragment,
		RecordID: ev.Record.ID,
		Role:     ev.Record.Role,
		At:       ev.At,
	}
	n.ok = true
	return nil
}

// Latest returns the newest signal, if any handoff happened.
func (n *Navigator) Latest() (Signal, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.latest, n.ok
}

// Restore seeds the navigator from stored pointers after a restart. It is a
// no-op when a signal was already received or nothing is stored.
func (n *Navigator) Restore(ctx context.Context, src LastCreatedReader) error {
	id, role, err := src.LastCreated(ctx)
	if err != nil || id == "" {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ok {
		return nil
	}
	n.latest = Signal{Fragment: DefaultFragment, RecordID: id, Role: role}
	n.ok = true
	return nil
}
