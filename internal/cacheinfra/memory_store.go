package cacheinfra

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryConfig holds the configuration for the in-process store adapter.
type MemoryConfig struct {
	// SizeHint pre-sizes the entry map for the expected number of live
	// entries. Zero lets the map start at its default size.
	SizeHint int

	// JanitorInterval sets how often expired entries are swept out in the
	// background. Zero disables the janitor; expired entries are then only
	// reclaimed lazily when they are read.
	JanitorInterval time.Duration
}

// DefaultMemoryConfig returns a MemoryConfig with sensible defaults for most
// use cases.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		SizeHint:        1024,
		JanitorInterval: time.Minute,
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c MemoryConfig) Validate() error {
	if c.SizeHint < 0 {
		return &ConfigError{Field: "SizeHint", Message: "must be non-negative"}
	}
	if c.JanitorInterval < 0 {
		return &ConfigError{Field: "JanitorInterval", Message: "must be non-negative"}
	}
	return nil
}

// memoryEntry is one stored payload plus its expiry deadline in unix nanos.
// A zero deadline never expires.
type memoryEntry struct {
	value     []byte
	expiresAt int64
}

func (e memoryEntry) expired(now int64) bool {
	return e.expiresAt > 0 && now > e.expiresAt
}

// memoryStore keeps entries in an in-process concurrent map with per-entry
// TTLs. It implements cache.Store.
type memoryStore struct {
	entries *xsync.MapOf[string, memoryEntry]

	stopOnce sync.Once
	stop     chan struct{}
}

// NewMemory creates a new in-process store adapter. It validates the
// configuration and, when a janitor interval is configured, starts a
// background sweeper that the caller stops via Close.
func NewMemory(cfg MemoryConfig) (*memoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*xsync.MapConfig)
	if cfg.SizeHint > 0 {
		opts = append(opts, xsync.WithPresize(cfg.SizeHint))
	}

	s := &memoryStore{
		entries: xsync.NewMapOf[string, memoryEntry](opts...),
		stop:    make(chan struct{}),
	}

	if cfg.JanitorInterval > 0 {
		go s.janitor(cfg.JanitorInterval)
	}

	return s, nil
}

// Get implements cache.Store.Get. Reading an expired entry reclaims it.
func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(time.Now().UnixNano()) {
		s.entries.Delete(key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// GetMulti implements cache.Store.GetMulti. Absent and expired keys are
// omitted from the result.
func (s *memoryStore) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	now := time.Now().UnixNano()
	res := make(map[string][]byte, len(keys))
	for _, key := range keys {
		entry, ok := s.entries.Load(key)
		if !ok {
			continue
		}
		if entry.expired(now) {
			s.entries.Delete(key)
			continue
		}
		res[key] = append([]byte(nil), entry.value...)
	}
	return res, nil
}

// Set implements cache.Store.Set. The payload is copied so later caller
// mutations cannot leak into the store.
func (s *memoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	s.entries.Store(key, memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: expiresAt,
	})
	return nil
}

// SetMulti implements cache.Store.SetMulti.
func (s *memoryStore) SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	for key, value := range entries {
		if err := s.Set(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Delete implements cache.Store.Delete.
func (s *memoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.entries.Delete(key)
	}
	return nil
}

// Close stops the janitor. The store stays usable afterwards; expired entries
// are then reclaimed lazily on read.
func (s *memoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

// Len reports the number of entries currently held, expired ones included.
func (s *memoryStore) Len() int {
	return s.entries.Size()
}

func (s *memoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			s.entries.Range(func(key string, entry memoryEntry) bool {
				if entry.expired(now) {
					s.entries.Delete(key)
				}
				return true
			})
		}
	}
}
