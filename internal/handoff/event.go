// Package handoff moves finalized applications into the marketplace
// directory and announces each handoff on an in-process event bus.
package handoff

import (
	"context"
	"time"

	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

const (
	EventType       = "marketplace.handoff"
	DefaultFragment = "#marketplace"
)

// Event announces that a directory record was created from an application.
type Event struct {
	ID          string                          `json:"id"`
	Type        string                          `json:"type"`
	Fragment    string                          `json:"fragment"`
	Record      directory.Record                `json:"record"`
	Application onboarding.FinalizedApplication `json:"application"`
	At          time.Time                       `json:"at"`
}

// Consumer processes handoff events delivered by the bus.
type Consumer interface {
	Name() string
	Consume(ctx context.Context, ev Event) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc struct {
	ConsumerName string
	Fn           func(ctx context.Context, ev Event) error
}

func (f ConsumerFunc) Name() string { return f.ConsumerName }

func (f ConsumerFunc) Consume(ctx context.Context, ev Event) error { return f.Fn(ctx, ev) }
