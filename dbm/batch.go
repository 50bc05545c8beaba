package dbm

import (
	"context"
	"fmt"

	"github.com/Dilun7525/xr-tools-dbm/cache"
)

// FetchKeyed answers a per-identifier lookup, serving what it can from
// individually cached entries and querying the database once for the rest.
// The returned map holds exactly one entry per identifier the database
// knows about, keyed by the identifier's canonical string form. Identifiers
// with no matching rows are absent from the map and are never cached, so
// they are retried on the next call.
//
// The statement template must carry no WHERE clause of its own; the filter
// restricting it to the missed identifiers is appended here.
func (m *Manager) FetchKeyed(ctx context.Context, q QueryRequest, ids []any, cfg CacheConfig) (map[string]any, error) {
	if err := cfg.validateKeyed(); err != nil {
		return nil, fmt.Errorf("cache config: %w", err)
	}

	idents, values := m.gateIdentifiers(ids, cfg)
	if len(idents) == 0 {
		return nil, ErrNoIdentifiers
	}

	grouped := len(cfg.GroupColumns) > 0
	active := m.cacheActive(cfg)

	result := make(map[string]any, len(idents))
	missIdents := idents
	missValues := values
	if active && !cfg.Renew {
		var hits map[string]any
		hits, missIdents, missValues = m.lookupHits(ctx, idents, values, cfg, grouped)
		for ident, unit := range hits {
			result[ident] = unit
		}
	}

	if len(missIdents) == 0 {
		return m.reindex(result, cfg, grouped)
	}

	column := cfg.ByColumnSQL
	if column == "" {
		column = cfg.ByColumn
	}
	filtered := q.withKeyFilter(column, missValues)
	rows, err := m.exec.Query(ctx, filtered.SQL(), filtered.Args()...)
	if err != nil {
		return nil, &QueryError{Query: filtered.SQL(), Err: err}
	}

	var shaped map[string]any
	if grouped {
		shaped = make(map[string]any)
		for ident, units := range GroupRows(rows, cfg.ByColumn, cfg.GroupColumns, cfg.GroupValue) {
			shaped[ident] = units
		}
	} else {
		indexed, err := IndexRows(rows, cfg.ByColumn)
		if err != nil {
			return nil, err
		}
		shaped = make(map[string]any, len(indexed))
		for ident, row := range indexed {
			shaped[ident] = row
		}
	}

	entries := make(map[string][]byte)
	for _, ident := range missIdents {
		unit, ok := shaped[ident]
		if !ok {
			continue
		}
		result[ident] = unit
		if !active || cfg.TTL <= 0 {
			continue
		}
		data, err := m.codec.Marshal(unit)
		if err != nil {
			m.log.Warn().Err(err).Str("key", cfg.Prefix+ident).Msg("cache encode failed; skipping write")
			continue
		}
		entries[cfg.Prefix+ident] = data
	}
	if len(entries) > 0 {
		if err := m.store.SetMulti(ctx, entries, cfg.TTL); err != nil {
			m.log.Warn().Err(err).Int("entries", len(entries)).Msg("cache write failed")
		} else {
			m.log.Debug().Int("entries", len(entries)).Dur("ttl", cfg.TTL).Msg("cache entries written")
		}
	}

	return m.reindex(result, cfg, grouped)
}

// gateIdentifiers canonicalizes, filters and dedupes the caller's
// identifiers, returning canonical strings alongside the original values
// kept for binding. Numeric gating applies when NumericKeys is set or
// ByColumn is "id"; identifiers failing it disappear from the call, from
// key derivation and database filter alike.
func (m *Manager) gateIdentifiers(ids []any, cfg CacheConfig) ([]string, []any) {
	gate := cfg.NumericKeys || cfg.ByColumn == "id"
	idents := make([]string, 0, len(ids))
	values := make([]any, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		ident := cellString(id)
		if gate && !isNumeric(ident) {
			m.log.Debug().Str("identifier", ident).Msg("non-numeric identifier dropped")
			continue
		}
		if _, dup := seen[ident]; dup {
			continue
		}
		seen[ident] = struct{}{}
		idents = append(idents, ident)
		values = append(values, id)
	}
	return idents, values
}

// lookupHits resolves cached entries for the given identifiers in one
// multi-get. It returns decoded hits plus the identifiers and bind values
// still missing, in their original order. Store or decode failures demote
// the affected identifiers to misses.
func (m *Manager) lookupHits(ctx context.Context, idents []string, values []any, cfg CacheConfig, grouped bool) (map[string]any, []string, []any) {
	keys := make([]string, len(idents))
	for i, ident := range idents {
		keys[i] = cfg.Prefix + ident
	}

	cached, err := m.store.GetMulti(ctx, keys)
	if err != nil {
		m.log.Warn().Err(err).Int("keys", len(keys)).Msg("cache read failed; treating all as misses")
		return nil, idents, values
	}

	hits := make(map[string]any)
	missIdents := make([]string, 0, len(idents))
	missValues := make([]any, 0, len(idents))
	for i, ident := range idents {
		data, found := cached[keys[i]]
		if found {
			unit, err := decodeUnit(m.codec, data, grouped)
			if err == nil {
				hits[ident] = unit
				continue
			}
			m.log.Warn().Err(err).Str("key", keys[i]).Msg("cache decode failed; treating as miss")
		}
		missIdents = append(missIdents, ident)
		missValues = append(missValues, values[i])
	}
	if len(hits) > 0 {
		m.log.Debug().Int("hits", len(hits)).Int("misses", len(missIdents)).Msg("cache multi-get resolved")
	}
	return hits, missIdents, missValues
}

// decodeUnit decodes one cached per-identifier payload into the shape the
// fresh path produces, so hits and misses are indistinguishable to callers.
func decodeUnit(codec cache.Codec, data []byte, grouped bool) (any, error) {
	if grouped {
		var units []any
		if err := codec.Unmarshal(data, &units); err != nil {
			return nil, err
		}
		return units, nil
	}
	var row Row
	if err := codec.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// reindex re-keys a plain keyed result by the IndexBy column. Grouped
// results are already keyed the only way they can be and pass through, as
// do results whose rows would not change keys. A row missing the IndexBy
// column, or a unit that is not a row at all, keeps its identifier key.
func (m *Manager) reindex(result map[string]any, cfg CacheConfig, grouped bool) (map[string]any, error) {
	if grouped || cfg.IndexBy == "" || cfg.IndexBy == cfg.ByColumn {
		return result, nil
	}
	rekeyed := make(map[string]any, len(result))
	for ident, unit := range result {
		row, ok := unit.(map[string]any)
		if !ok {
			rekeyed[ident] = unit
			continue
		}
		v, ok := row[cfg.IndexBy]
		if !ok {
			rekeyed[ident] = unit
			continue
		}
		rekeyed[cellString(v)] = unit
	}
	return rekeyed, nil
}
