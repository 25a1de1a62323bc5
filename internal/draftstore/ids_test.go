package draftstore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"murmax-onboarding/internal/onboarding"
)

func TestIDGenerator_Format(t *testing.T) {
	at := time.UnixMilli(1740830400123)
	g := NewIDGenerator(func() time.Time { return at })

	id, ts := g.Next(onboarding.RoleDriver)
	assert.Equal(t, "Driver-1740830400123", id)
	assert.Equal(t, at.UTC(), ts)
}

func TestIDGenerator_SameMillisecond(t *testing.T) {
	at := time.UnixMilli(1740830400123)
	g := NewIDGenerator(func() time.Time { return at })

	first, _ := g.Next(onboarding.RoleBroker)
	second, ts := g.Next(onboarding.RoleBroker)
	assert.Equal(t, "Broker-1740830400123", first)
	assert.Equal(t, "Broker-1740830400124", second)
	assert.Equal(t, int64(1740830400124), ts.UnixMilli())
}

func TestIDGenerator_ClockGoingBackwards(t *testing.T) {
	now := time.UnixMilli(2000)
	g := NewIDGenerator(func() time.Time { return now })
	_, _ = g.Next(onboarding.RoleShipper)

	now = time.UnixMilli(1000)
	id, _ := g.Next(onboarding.RoleShipper)
	assert.Equal(t, "Shipper-2001", id)
}

func TestIDGenerator_Concurrent(t *testing.T) {
	g := NewIDGenerator(func() time.Time { return time.UnixMilli(5000) })

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := g.Next(onboarding.RoleDriver)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}
