// Package draftstore persists onboarding drafts, finalized applications and
// the marketplace directory list. RedisStore is the production backend and
// MemoryStore serves local runs and tests; both satisfy onboarding.Store and
// handoff.Directory.
package draftstore

import (
	"context"
	"errors"
	"time"

	"murmax-onboarding/internal/common/logger"
	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

// Backend names accepted by storage.backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultKeyPrefix namespaces every key written by the store.
const DefaultKeyPrefix = "murmax"

var ErrNoLastCreated = errors.New("no directory record has been created")

// Store is the full persistence surface used by the service.
type Store interface {
	onboarding.Store
	LoadFinalized(ctx context.Context, role onboarding.Role) (onboarding.FinalizedApplication, bool, error)
	Append(ctx context.Context, rec directory.Record) error
	List(ctx context.Context) ([]directory.Record, error)
	SetLastCreated(ctx context.Context, id string, role onboarding.Role) error
	LastCreated(ctx context.Context) (string, onboarding.Role, error)
	Ping(ctx context.Context) error
}

// Keys derives storage keys from a prefix.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{prefix: prefix}
}

func (k Keys) Draft(role onboarding.Role) string { return k.prefix + ":onboard:" + string(role) }

func (k Keys) Final(role onboarding.Role) string {
	return k.prefix + ":onboard:final:" + string(role)
}

func (k Keys) Profiles() string      { return k.prefix + ":marketplace:profiles" }
func (k Keys) LastCreatedID() string { return k.prefix + ":marketplace:lastCreatedId" }
func (k Keys) LastRole() string      { return k.prefix + ":marketplace:lastRole" }

type options struct {
	keys     Keys
	draftTTL time.Duration
	now      func() time.Time
	logger   logger.Logger
}

type Option func(*options)

func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.keys = NewKeys(prefix) }
}

// WithDraftTTL expires saved drafts after ttl. Zero keeps them forever.
func WithDraftTTL(ttl time.Duration) Option {
	return func(o *options) { o.draftTTL = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		keys:   NewKeys(DefaultKeyPrefix),
		now:    time.Now,
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.Component(o.logger, "draftstore")
	return o
}
