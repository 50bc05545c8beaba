package dbm

import (
	"context"
	"fmt"
	"time"
)

// FetchList runs a multi-row query through the cache and returns rows in
// statement order. An empty result is cached as an empty list, so repeated
// calls for a list that happens to be empty stay off the database. When
// cfg.VersionKey is set the entry is stored under a composite key derived
// from the current version token; see RotateVersion.
func (m *Manager) FetchList(ctx context.Context, q QueryRequest, cfg CacheConfig) ([]Row, error) {
	if cfg.IndexBy != "" {
		return nil, fmt.Errorf("cache config: IndexBy is only valid for indexed fetches")
	}
	return m.fetchList(ctx, q, cfg)
}

// FetchListIndexed is FetchList with the result re-keyed by the cfg.IndexBy
// column. Only the returned shape changes; what gets cached is the ordered
// list, so FetchList and FetchListIndexed can share one entry. Rows missing
// the index column are an error.
func (m *Manager) FetchListIndexed(ctx context.Context, q QueryRequest, cfg CacheConfig) (map[string]Row, error) {
	if cfg.IndexBy == "" {
		return nil, fmt.Errorf("cache config: IndexBy is required for indexed fetches")
	}
	rows, err := m.fetchList(ctx, q, cfg)
	if err != nil {
		return nil, err
	}
	indexed, err := IndexRows(rows, cfg.IndexBy)
	if err != nil {
		return nil, err
	}
	return indexed, nil
}

func (m *Manager) fetchList(ctx context.Context, q QueryRequest, cfg CacheConfig) ([]Row, error) {
	if err := cfg.validateSingle(); err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}

	active := m.cacheActive(cfg)
	key := cfg.Key
	if active && cfg.VersionKey != "" {
		key = cfg.Key + "_" + m.versionToken(ctx, cfg.VersionKey, cfg.TTL)
	}

	if active && !cfg.Renew {
		if rows, ok := m.readList(ctx, key); ok {
			return rows, nil
		}
	}

	fetched, err := m.exec.Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, &QueryError{Query: q.SQL(), Err: err}
	}
	if fetched == nil {
		fetched = []Row{}
	}

	if active && cfg.TTL > 0 {
		m.writeList(ctx, key, fetched, cfg.TTL)
	}
	return fetched, nil
}

func (m *Manager) readList(ctx context.Context, key string) ([]Row, bool) {
	data, found, err := m.store.Get(ctx, key)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache read failed; treating as miss")
		return nil, false
	}
	if !found {
		return nil, false
	}
	var rows []Row
	if err := m.codec.Unmarshal(data, &rows); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache decode failed; treating as miss")
		return nil, false
	}
	if rows == nil {
		rows = []Row{}
	}
	m.log.Debug().Str("key", key).Int("rows", len(rows)).Msg("cache hit")
	return rows, true
}

func (m *Manager) writeList(ctx context.Context, key string, rows []Row, ttl time.Duration) {
	data, err := m.codec.Marshal(rows)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache encode failed; skipping write")
		return
	}
	if err := m.store.Set(ctx, key, data, ttl); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}
	m.log.Debug().Str("key", key).Int("rows", len(rows)).Dur("ttl", ttl).Msg("cache entry written")
}
