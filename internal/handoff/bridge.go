package handoff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/common/metrics"
	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

// Directory is the append-only marketplace list plus its last-created
// pointers.
type Directory interface {
	Append(ctx context.Context, rec directory.Record) error
	SetLastCreated(ctx context.Context, id string, role onboarding.Role) error
}

type BridgeOption func(*Bridge)

func WithFragment(fragment string) BridgeOption {
	return func(b *Bridge) {
		if fragment != "" {
			b.fragment = fragment
		}
	}
}

func WithLogger(l logger.Logger) BridgeOption {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithClock(now func() time.Time) BridgeOption {
	return func(b *Bridge) {
		if now != nil {
			b.now = now
		}
	}
}

// Bridge turns finalized applications into directory records. It
// implements onboarding.Publisher.
type Bridge struct {
	dir      Directory
	bus      *Bus
	fragment string
	now      func() time.Time
	logger   logger.Logger
}

// NewBridge wires the bridge to its directory. bus may be nil, in which
// case no event is emitted.
func NewBridge(dir Directory, bus *Bus, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		dir:      dir,
		bus:      bus,
		fragment: DefaultFragment,
		now:      time.Now,
		logger:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logger.Component(b.logger, "handoff")
	return b
}

// Publish appends the application's directory record, stores the
// last-created pointers and emits the navigation event. The record is
// visible to List as soon as Publish returns. If only the pointer update
// fails, the record id is returned together with the error.
func (b *Bridge) Publish(ctx context.Context, app onboarding.FinalizedApplication) (string, error) {
	role := string(app.Role())
	rec, err := directory.FromApplication(app)
	if err != nil {
		metrics.Handoffs.WithLabelValues(role, metrics.OutcomeRejected).Inc()
		return "", err
	}

	if err := b.dir.Append(ctx, rec); err != nil {
		metrics.Handoffs.WithLabelValues(role, metrics.OutcomeFailed).Inc()
		return "", fmt.Errorf("append directory record %s: %w", rec.ID, err)
	}

	var pointerErr error
	if err := b.dir.SetLastCreated(ctx, rec.ID, rec.Role); err != nil {
		pointerErr = fmt.Errorf("set last created %s: %w", rec.ID, err)
		b.logger.Warn("last-created pointer not updated", map[string]interface{}{
			"recordId": rec.ID,
			"error":    err.Error(),
		})
	}

	if b.bus != nil {
		b.bus.Emit(Event{
			ID:          uuid.NewString(),
			Type:        EventType,
			Fragment:    b.fragment,
			Record:      rec,
			Application: app,
			At:          b.now().UTC(),
		})
	}

	metrics.Handoffs.WithLabelValues(role, metrics.OutcomeOK).Inc()
	b.logger.Info("application handed off", map[string]interface{}{
		"recordId": rec.ID,
		"role":     role,
		"fragment": b.fragment,
	})
	return rec.ID, pointerErr
}

var _ onboarding.Publisher = (*Bridge)(nil)
