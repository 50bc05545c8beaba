package cache

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dilun7525/xr-tools-dbm/internal/cacheinfra"
)

// MemoryConfig exposes the in-process store options for consumers of the
// cache package.
type MemoryConfig struct {
	SizeHint        int
	JanitorInterval time.Duration
}

// RedisConfig exposes the Redis store options for consumers of the cache
// package. The client is injected, never created here; connection bootstrap
// belongs to the application.
type RedisConfig struct {
	Client    *redis.Client
	KeyPrefix string
	OpTimeout time.Duration
}

// DefaultMemoryConfig returns a MemoryConfig populated with sensible defaults.
func DefaultMemoryConfig() MemoryConfig {
	return fromInternalMemory(cacheinfra.DefaultMemoryConfig())
}

// Validate checks whether the configuration values are valid.
func (c MemoryConfig) Validate() error {
	return c.toInternal().Validate()
}

// Validate checks whether the configuration values are valid.
func (c RedisConfig) Validate() error {
	return c.toInternal().Validate()
}

// NewMemoryStore constructs the in-process store implementation using the
// provided configuration.
func NewMemoryStore(cfg MemoryConfig) (Store, error) {
	return cacheinfra.NewMemory(cfg.toInternal())
}

// NewRedisStore constructs the Redis store implementation using the provided
// configuration.
func NewRedisStore(cfg RedisConfig) (Store, error) {
	return cacheinfra.NewRedis(cfg.toInternal())
}

func (c MemoryConfig) toInternal() cacheinfra.MemoryConfig {
	return cacheinfra.MemoryConfig{
		SizeHint:        c.SizeHint,
		JanitorInterval: c.JanitorInterval,
	}
}

func (c RedisConfig) toInternal() cacheinfra.RedisConfig {
	return cacheinfra.RedisConfig{
		Client:    c.Client,
		KeyPrefix: c.KeyPrefix,
		OpTimeout: c.OpTimeout,
	}
}

func fromInternalMemory(cfg cacheinfra.MemoryConfig) MemoryConfig {
	return MemoryConfig{
		SizeHint:        cfg.SizeHint,
		JanitorInterval: cfg.JanitorInterval,
	}
}
