package draftstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"murmax-onboarding/internal/common/config"
	"murmax-onboarding/internal/common/database"
	"murmax-onboarding/internal/common/logger"
)

// Open builds the store selected by cfg.Storage. The returned close func
// releases the backend connection and is never nil.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, func() error, error) {
	opts := []Option{
		WithKeyPrefix(cfg.Storage.KeyPrefix),
		WithDraftTTL(time.Duration(cfg.Storage.DraftTTL) * time.Second),
		WithLogger(log),
	}

	switch strings.ToLower(cfg.Storage.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(opts...), func() error { return nil }, nil
	case BackendRedis:
		client, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, opts...), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
