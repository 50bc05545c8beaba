package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the configuration for the Redis store adapter.
type RedisConfig struct {
	// Client is the connected go-redis client to run against. The adapter
	// never closes it; its lifetime belongs to whoever supplied it.
	Client *redis.Client

	// KeyPrefix is prepended verbatim to every key before it reaches Redis.
	// Include your own separator if you want one; keys are never otherwise
	// transformed.
	KeyPrefix string

	// OpTimeout bounds each individual Redis operation. Zero relies on the
	// caller's context alone.
	OpTimeout time.Duration
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c RedisConfig) Validate() error {
	if c.Client == nil {
		return &ConfigError{Field: "Client", Message: "cannot be nil"}
	}
	if c.OpTimeout < 0 {
		return &ConfigError{Field: "OpTimeout", Message: "must be non-negative"}
	}
	return nil
}

// redisStore adapts a go-redis client to cache.Store.
type redisStore struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
}

// NewRedis creates a new Redis store adapter around the provided client.
func NewRedis(cfg RedisConfig) (*redisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisStore{
		client:    cfg.Client,
		prefix:    cfg.KeyPrefix,
		opTimeout: cfg.OpTimeout,
	}, nil
}

func (s *redisStore) key(key string) string {
	return s.prefix + key
}

func (s *redisStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout > 0 {
		return context.WithTimeout(ctx, s.opTimeout)
	}
	return ctx, func() {}
}

// Get implements cache.Store.Get. A redis.Nil reply maps to absence.
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// GetMulti implements cache.Store.GetMulti using a single MGET. Absent keys
// come back as nil replies and are omitted from the result.
func (s *redisStore) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.key(key)
	}

	replies, err := s.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	res := make(map[string][]byte, len(keys))
	for i, reply := range replies {
		str, ok := reply.(string)
		if !ok {
			continue
		}
		res[keys[i]] = []byte(str)
	}
	return res, nil
}

// Set implements cache.Store.Set. A zero ttl stores without expiry.
func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// SetMulti implements cache.Store.SetMulti with one pipelined round-trip.
func (s *redisStore) SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	pipe := s.client.Pipeline()
	for key, value := range entries {
		pipe.Set(ctx, s.key(key), value, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline set: %w", err)
	}
	return nil
}

// Delete implements cache.Store.Delete.
func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.key(key)
	}

	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close implements cache.Store.Close. The injected client stays open.
func (s *redisStore) Close() error {
	return nil
}
