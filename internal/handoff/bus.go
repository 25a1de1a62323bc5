package handoff

import (
	"context"
	"strings"
	"sync"
	"time"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/common/observability"
)

const defaultSubscriberCapacity = 64

// BusOption customizes Bus construction.
type BusOption func(*Bus)

// Bus fans handoff events out to subscribers. Emit never blocks: when a
// subscriber's buffer is full the event is dropped for that subscriber.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	capacity    int
	logger      logger.Logger
	obs         *observability.Observability
}

// Subscription is an active registration on the bus.
type Subscription struct {
	Name   string
	Events <-chan Event
	cancel func()
}

// Close stops delivery and closes Events.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subscribers: map[*subscriber]struct{}{},
		capacity:    defaultSubscriberCapacity,
		logger:      logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.logger = logger.Component(b.logger, "handoff-bus")
	return b
}

func BusWithLogger(l logger.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// BusWithCapacity overrides the buffered channel size per subscriber.
func BusWithCapacity(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// BusWithObservability records consumer latency and outcome.
func BusWithObservability(o *observability.Observability) BusOption {
	return func(b *Bus) { b.obs = o }
}

// Subscribe registers a named subscriber.
func (b *Bus) Subscribe(name string) Subscription {
	sub := &subscriber{
		name: strings.TrimSpace(name),
		ch:   make(chan Event, b.capacity),
	}
	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	return Subscription{
		Name:   sub.name,
		Events: sub.ch,
		cancel: func() { b.remove(sub) },
	}
}

// Emit delivers ev to every current subscriber without waiting.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := make([]*subscriber, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		if !sub.deliver(ev) {
			metrics.HandoffEventsDropped.WithLabelValues(sub.name).Inc()
			b.logger.Warn("handoff event dropped", map[string]interface{}{
				"subscriber": sub.name,
				"eventId":    ev.ID,
				"recordId":   ev.Record.ID,
			})
		}
	}
}

// Run subscribes c and feeds it events until ctx is done or the bus is
// closed. Consumer errors are logged and do not stop the loop.
func (b *Bus) Run(ctx context.Context, c Consumer) {
	b.drain(ctx, b.Subscribe(c.Name()), c)
}

// Go is Run in a background goroutine. The subscription exists when Go
// returns, so no event emitted afterwards is missed. The returned channel
// closes when the consumer loop exits.
func (b *Bus) Go(ctx context.Context, c Consumer) <-chan struct{} {
	sub := b.Subscribe(c.Name())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.drain(ctx, sub, c)
	}()
	return done
}

func (b *Bus) drain(ctx context.Context, sub Subscription, c Consumer) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			start := time.Now()
			status := "ok"
			if err := c.Consume(ctx, ev); err != nil {
				status = "error"
				b.logger.Error("handoff consumer failed", map[string]interface{}{
					"consumer": c.Name(),
					"eventId":  ev.ID,
					"recordId": ev.Record.ID,
					"error":    err.Error(),
				})
			}
			b.obs.RecordDelivery(ctx, c.Name(), status, time.Since(start))
		}
	}
}

// Close ends every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = map[*subscriber]struct{}{}
	b.mu.Unlock()
	for sub := range subs {
		sub.close()
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Bus) remove(sub *subscriber) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
	sub.close()
}

type subscriber struct {
	name   string
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// deliver reports false when the event was dropped.
func (s *subscriber) deliver(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
