package di

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/Dilun7525/xr-tools-dbm/cache"
	"github.com/Dilun7525/xr-tools-dbm/dbm"
)

// Cache backends the container knows how to build.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config describes everything the container needs to assemble a manager.
type Config struct {
	// DB is the bun handle queries run against. Required unless Executor
	// is set.
	DB bun.IDB

	// Executor, when set, replaces the bun-backed executor built from DB.
	// Mainly useful in tests.
	Executor dbm.Executor

	// Backend selects the cache store: "none" (the default, uncached),
	// "memory" or "redis".
	Backend string

	// Memory configures the memory backend. The zero value selects
	// cache.DefaultMemoryConfig.
	Memory cache.MemoryConfig

	// Redis configures the redis backend.
	Redis cache.RedisConfig

	// Codec selects the cache payload codec: "json" (default) or
	// "msgpack".
	Codec string

	// Logger, when set, is attached to the manager. Nil keeps the manager
	// silent.
	Logger *zerolog.Logger
}

// Container provides dependency injection for the caching query layer.
// It manages singleton instances of the manager, the store behind it and
// the query executor, wired together from one Config.
type Container struct {
	manager *dbm.Manager
	store   cache.Store
	exec    dbm.Executor
	config  Config
}

// NewContainer creates a new DI container from the provided configuration.
// It builds the selected cache backend, picks the payload codec and wires
// both into a manager around the query executor.
func NewContainer(config Config) (*Container, error) {
	exec := config.Executor
	if exec == nil {
		if config.DB == nil {
			return nil, fmt.Errorf("di: a database handle or an executor is required")
		}
		exec = dbm.NewBunExecutor(config.DB)
	}

	store, err := buildStore(config)
	if err != nil {
		return nil, err
	}

	codec, err := pickCodec(config.Codec)
	if err != nil {
		return nil, err
	}

	opts := []dbm.Option{dbm.WithCodec(codec)}
	if store != nil {
		opts = append(opts, dbm.WithStore(store))
	}
	if config.Logger != nil {
		opts = append(opts, dbm.WithLogger(*config.Logger))
	}

	manager, err := dbm.New(exec, opts...)
	if err != nil {
		return nil, err
	}

	return &Container{
		manager: manager,
		store:   store,
		exec:    exec,
		config:  config,
	}, nil
}

func buildStore(config Config) (cache.Store, error) {
	switch config.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		cfg := config.Memory
		if cfg == (cache.MemoryConfig{}) {
			cfg = cache.DefaultMemoryConfig()
		}
		return cache.NewMemoryStore(cfg)
	case BackendRedis:
		return cache.NewRedisStore(config.Redis)
	default:
		return nil, fmt.Errorf("di: unknown backend %q", config.Backend)
	}
}

func pickCodec(name string) (cache.Codec, error) {
	switch name {
	case "", "json":
		return cache.JSON, nil
	case "msgpack":
		return cache.Msgpack, nil
	default:
		return nil, fmt.Errorf("di: unknown codec %q", name)
	}
}

// Manager returns the singleton manager instance.
func (c *Container) Manager() *dbm.Manager {
	return c.manager
}

// Store returns the cache store behind the manager, or nil when the
// container was built without one. This allows direct access for advanced
// use cases such as out-of-band invalidation.
func (c *Container) Store() cache.Store {
	return c.store
}

// Executor returns the query executor behind the manager.
func (c *Container) Executor() dbm.Executor {
	return c.exec
}

// Config returns a copy of the configuration used by this container.
// This is useful for debugging and monitoring purposes.
func (c *Container) Config() Config {
	return c.config
}

// Close releases the cache store. Database handles stay with the caller
// and injected redis clients stay open; see cache.Store.
func (c *Container) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
