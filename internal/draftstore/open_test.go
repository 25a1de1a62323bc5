package draftstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"murmax-onboarding/internal/common/config"
	"murmax-onboarding/internal/common/logger"
)

func TestOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	tests := []struct {
		name    string
		storage config.StorageConfig
		want    interface{}
		wantErr bool
	}{
		{"memory", config.StorageConfig{Backend: "memory"}, &MemoryStore{}, false},
		{"default", config.StorageConfig{}, &MemoryStore{}, false},
		{"redis", config.StorageConfig{Backend: "Redis", KeyPrefix: "test"}, &RedisStore{}, false},
		{"unsupported", config.StorageConfig{Backend: "etcd"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Storage: tt.storage}
			cfg.Database.Redis.Address = mr.Addr()

			store, closeFn, err := Open(context.Background(), cfg, logger.NewTestLogger(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()
			assert.IsType(t, tt.want, store)
			assert.NoError(t, store.Ping(context.Background()))
		})
	}
}
