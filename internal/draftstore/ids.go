package draftstore

import (
	"fmt"
	"sync"
	"time"

	"murmax-onboarding/internal/onboarding"
)

// IDGenerator issues application ids of the form {role}-{unixMillis}.
// Timestamps never repeat within one generator: a call landing in the same
// (or an earlier) millisecond as the previous one is moved to last+1.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a new id for role and the instant it encodes.
func (g *IDGenerator) Next(role onboarding.Role) (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("%s-%d", role, ms), time.UnixMilli(ms).UTC()
}
