package dbm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dilun7525/xr-tools-dbm/cache"
)

// Manager orchestrates cache-aware query execution. It is safe for
// concurrent use. Calls never coordinate with each other: two callers
// missing the same key may both run the backing query and both write the
// entry, last writer wins. Values are idempotent reads, so only work is
// duplicated, never correctness. Do not add request coalescing here.
type Manager struct {
	exec  Executor
	store cache.Store
	codec cache.Codec
	log   zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore supplies the key-value store. Without one the Manager still
// answers every call correctly, just without caching.
func WithStore(store cache.Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithCodec overrides the payload codec. Defaults to cache.JSON.
func WithCodec(codec cache.Codec) Option {
	return func(m *Manager) { m.codec = codec }
}

// WithLogger attaches a zerolog logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a Manager around the given query executor.
func New(exec Executor, opts ...Option) (*Manager, error) {
	if exec == nil {
		return nil, fmt.Errorf("dbm: executor is required")
	}
	m := &Manager{
		exec:  exec,
		codec: cache.JSON,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// cacheActive reports whether this call should touch the store. Caching
// requested without a configured store degrades to an uncached call.
func (m *Manager) cacheActive(cfg CacheConfig) bool {
	if !cfg.Enabled {
		return false
	}
	if m.store == nil {
		m.log.Debug().Msg("caching requested but no store configured; proceeding uncached")
		return false
	}
	return true
}

// singleEntry wraps single-key payloads so a cached "no result" stays
// distinguishable from a key that was never cached.
type singleEntry struct {
	Found bool `json:"found" msgpack:"found"`
	Value any  `json:"value" msgpack:"value"`
}

// FetchOne runs a single-row lookup through the cache. found reports
// whether the query produced a row; only the first row is considered. A
// cached empty result answers found=false without touching the database
// until the entry expires.
func (m *Manager) FetchOne(ctx context.Context, q QueryRequest, cfg CacheConfig) (Row, bool, error) {
	if err := cfg.validateSingle(); err != nil {
		return nil, false, fmt.Errorf("cache config: %w", err)
	}

	active := m.cacheActive(cfg)
	if active && !cfg.Renew {
		if entry, ok := m.readSingle(ctx, cfg.Key); ok {
			if !entry.Found {
				return nil, false, nil
			}
			if row, ok := entry.Value.(map[string]any); ok {
				return row, true, nil
			}
			m.log.Warn().Str("key", cfg.Key).Msg("cached entry has unexpected shape; treating as miss")
		}
	}

	rows, err := m.exec.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, false, &QueryError{Query: q.SQL(), Err: err}
	}

	var row Row
	found := len(rows) > 0
	if found {
		row = rows[0]
	}

	if active && cfg.TTL > 0 {
		m.writeSingle(ctx, cfg.Key, singleEntry{Found: found, Value: row}, cfg.TTL)
	}
	return row, found, nil
}

// FetchScalar runs a single-value lookup through the cache. The statement
// must select exactly one column; found reports whether the query produced
// a row. Empty results are cached the same way FetchOne caches them.
func (m *Manager) FetchScalar(ctx context.Context, q QueryRequest, cfg CacheConfig) (any, bool, error) {
	if err := cfg.validateSingle(); err != nil {
		return nil, false, fmt.Errorf("cache config: %w", err)
	}

	active := m.cacheActive(cfg)
	if active && !cfg.Renew {
		if entry, ok := m.readSingle(ctx, cfg.Key); ok {
			return entry.Value, entry.Found, nil
		}
	}

	rows, err := m.exec.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, false, &QueryError{Query: q.SQL(), Err: err}
	}

	var value any
	found := len(rows) > 0
	if found {
		value, err = scalarCell(rows[0])
		if err != nil {
			return nil, false, &QueryError{Query: q.SQL(), Err: err}
		}
	}

	if active && cfg.TTL > 0 {
		m.writeSingle(ctx, cfg.Key, singleEntry{Found: found, Value: value}, cfg.TTL)
	}
	return value, found, nil
}

// Exec runs a side-effect statement. Exec never touches the cache; explicit
// invalidation stays with the caller, typically through RotateVersion or
// Invalidate.
func (m *Manager) Exec(ctx context.Context, q QueryRequest) (ExecResult, error) {
	res, err := m.exec.Exec(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return ExecResult{}, &QueryError{Query: q.SQL(), Err: err}
	}
	return res, nil
}

// Invalidate removes the given cache keys. It is a no-op without a store.
func (m *Manager) Invalidate(ctx context.Context, keys ...string) error {
	if m.store == nil || len(keys) == 0 {
		return nil
	}
	return m.store.Delete(ctx, keys...)
}

// scalarCell extracts the lone cell of a single-column row.
func scalarCell(row Row) (any, error) {
	if len(row) != 1 {
		return nil, fmt.Errorf("scalar query returned %d columns, want 1", len(row))
	}
	for _, v := range row {
		return v, nil
	}
	return nil, nil
}

func (m *Manager) readSingle(ctx context.Context, key string) (singleEntry, bool) {
	data, found, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache read failed; treating as miss")
		return singleEntry{}, false
	}
	if !found {
		return singleEntry{}, false
	}
	var entry singleEntry
	if err := m.codec.Unmarshal(data, &entry); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache decode failed; treating as miss")
		return singleEntry{}, false
	}
	m.log.Debug().Str("key", key).Msg("cache hit")
	return entry, true
}

func (m *Manager) writeSingle(ctx context.Context, key string, entry singleEntry, ttl time.Duration) {
	data, err := m.codec.Marshal(entry)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache encode failed; skipping write")
		return
	}
	if err := m.store.Set(ctx, key, data, ttl); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}
	m.log.Debug().Str("key", key).Dur("ttl", ttl).Msg("cache entry written")
}
