package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"murmax-onboarding/internal/directory"
	"murmax-onboarding/internal/onboarding"
)

// RedisStore keeps drafts and finalized applications as JSON strings and
// the directory as a Redis list. Writes are last-write-wins.
type RedisStore struct {
	client *redis.Client
	opts   options
	ids    *IDGenerator
}

func NewRedisStore(client *redis.Client, opts ...Option) *RedisStore {
	o := buildOptions(opts)
	return &RedisStore{
		client: client,
		opts:   o,
		ids:    NewIDGenerator(o.now),
	}
}

// Load returns the saved draft for role, or the empty draft when none was
// saved. On a read or decode failure the empty draft is returned together
// with the error.
func (s *RedisStore) Load(ctx context.Context, role onboarding.Role) (onboarding.Draft, error) {
	empty, err := onboarding.NewDraft(role)
	if err != nil {
		return nil, err
	}

	key := s.opts.keys.Draft(role)
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return empty, nil
	}
	if err != nil {
		return empty, fmt.Errorf("load draft %s: %w", key, err)
	}

	d, err := onboarding.DecodeDraft(data)
	if err != nil {
		s.opts.logger.Warn("discarding unreadable draft", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return empty, fmt.Errorf("decode draft %s: %w", key, err)
	}
	if d.Role() != role {
		return empty, fmt.Errorf("draft %s holds a %s draft", key, d.Role())
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, d onboarding.Draft) error {
	data, err := onboarding.EncodeDraft(d)
	if err != nil {
		return err
	}
	key := s.opts.keys.Draft(d.Role())
	if err := s.client.Set(ctx, key, data, s.opts.draftTTL).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", key, err)
	}
	return nil
}

// Finalize stamps a new id and timestamp on d and overwrites the role's
// finalized slot. Repeated calls produce distinct applications.
func (s *RedisStore) Finalize(ctx context.Context, d onboarding.Draft) (onboarding.FinalizedApplication, error) {
	if d == nil {
		return onboarding.FinalizedApplication{}, onboarding.ErrInvalidDraft
	}
	id, at := s.ids.Next(d.Role())
	app, err := onboarding.NewFinalizedApplication(id, d, at)
	if err != nil {
		return onboarding.FinalizedApplication{}, err
	}

	data, err := json.Marshal(app)
	if err != nil {
		return onboarding.FinalizedApplication{}, fmt.Errorf("encode application %s: %w", id, err)
	}
	key := s.opts.keys.Final(d.Role())
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return onboarding.FinalizedApplication{}, fmt.Errorf("finalize %s: %w", key, err)
	}

	s.opts.logger.Debug("application finalized", map[string]interface{}{"key": key, "applicationId": id})
	return app, nil
}

// LoadFinalized returns the most recent finalized application for role.
func (s *RedisStore) LoadFinalized(ctx context.Context, role onboarding.Role) (onboarding.FinalizedApplication, bool, error) {
	key := s.opts.keys.Final(role)
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return onboarding.FinalizedApplication{}, false, nil
	}
	if err != nil {
		return onboarding.FinalizedApplication{}, false, fmt.Errorf("load %s: %w", key, err)
	}

	var app onboarding.FinalizedApplication
	if err := json.Unmarshal(data, &app); err != nil {
		return onboarding.FinalizedApplication{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return app, true, nil
}

// Append adds rec to the end of the directory list.
func (s *RedisStore) Append(ctx context.Context, rec directory.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	if err := s.client.RPush(ctx, s.opts.keys.Profiles(), data).Err(); err != nil {
		return fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns the directory in insertion order. Entries that no longer
// decode are skipped and logged.
func (s *RedisStore) List(ctx context.Context) ([]directory.Record, error) {
	key := s.opts.keys.Profiles()
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}

	records := make([]directory.Record, 0, len(raw))
	for i, item := range raw {
		var rec directory.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.opts.logger.Warn("skipping unreadable directory entry", map[string]interface{}{
				"key":   key,
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// SetLastCreated records the handoff pointers in one transaction.
func (s *RedisStore) SetLastCreated(ctx context.Context, id string, role onboarding.Role) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.opts.keys.LastCreatedID(), id, 0)
		pipe.Set(ctx, s.opts.keys.LastRole(), string(role), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set last created %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) LastCreated(ctx context.Context) (string, onboarding.Role, error) {
	vals, err := s.client.MGet(ctx, s.opts.keys.LastCreatedID(), s.opts.keys.LastRole()).Result()
	if err != nil {
		return "", "", fmt.Errorf("read last created: %w", err)
	}
	id, _ := vals[0].(string)
	role, _ := vals[1].(string)
	if id == "" {
		return "", "", ErrNoLastCreated
	}
	return id, onboarding.Role(role), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ Store = (*RedisStore)(nil)
