package handoff

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/directory"
)

type recordingConsumer struct {
	mu     sync.Mutex
	name   string
	events []Event
	failOn string
	seen   chan struct{}
}

func newRecordingConsumer(name string) *recordingConsumer {
	return &recordingConsumer{name: name, seen: make(chan struct{}, 16)}
}

func (c *recordingConsumer) Name() string { return c.name }

func (c *recordingConsumer) Consume(_ context.Context, ev Event) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	c.seen <- struct{}{}
	if ev.Record.ID == c.failOn {
		return errors.New("sink rejected event")
	}
	return nil
}

func (c *recordingConsumer) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.seen:
		case <-time.After(time.Second):
			t.Fatalf("consumer %s saw %d of %d events", c.name, i, n)
		}
	}
}

func event(id string) Event {
	return Event{ID: id, Type: EventType, Record: directory.Record{ID: id}}
}

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe("a")
	b := bus.Subscribe("b")
	defer a.Close()
	defer b.Close()

	bus.Emit(event("r-1"))
	assert.Equal(t, "r-1", (<-a.Events).ID)
	assert.Equal(t, "r-1", (<-b.Events).ID)
	assert.Equal(t, 2, bus.Subscribers())
}

func TestBus_DropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus(BusWithCapacity(1), BusWithLogger(logger.NewTestLogger(t)))
	slow := bus.Subscribe("slow-subscriber")
	defer slow.Close()

	before := testutil.ToFloat64(metrics.HandoffEventsDropped.WithLabelValues("slow-subscriber"))
	bus.Emit(event("r-1"))
	bus.Emit(event("r-2"))

	assert.Equal(t, "r-1", (<-slow.Events).ID)
	assert.Empty(t, slow.Events)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HandoffEventsDropped.WithLabelValues("slow-subscriber")))
}

func TestBus_CloseSubscription(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("gone")
	sub.Close()
	sub.Close()

	_, ok := <-sub.Events
	assert.False(t, ok)
	assert.Zero(t, bus.Subscribers())

	// emitting after close must not panic
	bus.Emit(event("r-1"))
}

func TestBus_GoKeepsRunningAfterConsumerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus(BusWithLogger(logger.NewTestLogger(t)))
	c := newRecordingConsumer("flaky")
	c.failOn = "r-1"
	done := bus.Go(ctx, c)

	bus.Emit(event("r-1"))
	bus.Emit(event("r-2"))
	c.wait(t, 2)

	c.mu.Lock()
	require.Len(t, c.events, 2)
	assert.Equal(t, "r-2", c.events[1].ID)
	c.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer loop did not stop")
	}
}

func TestBus_CloseStopsRun(t *testing.T) {
	bus := NewBus()
	c := newRecordingConsumer("runner")

	finished := make(chan struct{})
	go func() {
		bus.Run(context.Background(), c)
		close(finished)
	}()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	bus.Close()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestConsumerFunc(t *testing.T) {
	var got string
	c := ConsumerFunc{ConsumerName: "fn", Fn: func(_ context.Context, ev Event) error {
		got = ev.ID
		return nil
	}}
	require.NoError(t, c.Consume(context.Background(), event("x")))
	assert.Equal(t, "fn", c.Name())
	assert.Equal(t, "x", got)
}
