// Package dbm layers read-through caching over parameterized SQL queries.
//
// # Overview
//
// A Manager pairs a query Executor with an optional cache.Store and answers
// four read shapes plus a write passthrough:
//
//   - FetchOne: first row of a query, or not found
//   - FetchScalar: lone cell of a single-column query, or not found
//   - FetchList / FetchListIndexed: full result set, ordered or re-keyed
//   - FetchKeyed: per-identifier lookup with partial cache hits
//   - Exec: side-effect statements, never cached
//
// Every fetch takes a CacheConfig describing whether and how that one call
// caches. The zero config disables caching, so the Manager doubles as a
// plain query runner:
//
//	mgr, err := dbm.New(dbm.NewBunExecutor(db),
//		dbm.WithStore(store),
//		dbm.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	row, found, err := mgr.FetchOne(ctx,
//		dbm.NewQuery("SELECT * FROM users WHERE id = ?", 42),
//		dbm.CacheConfig{Enabled: true, Key: "user_42", TTL: 5 * time.Minute})
//
// # Rows
//
// Results are []Row, with Row an alias for map[string]any. Executor
// adapters canonicalize every scanned cell to nil or string before the row
// leaves the adapter, so a row decoded from the cache and the same row
// scanned fresh are deeply equal regardless of codec. Callers needing typed
// values convert at the edge.
//
// # Single-Key Caching
//
// FetchOne, FetchScalar and FetchList address the cache with an explicit
// Key. Empty results are cached too: a lookup that found nothing answers
// not-found from the cache until the entry expires, keeping repeated misses
// off the database.
//
// Setting VersionKey puts a list entry under a composite key derived from a
// shared version token. RotateVersion replaces the token, orphaning every
// entry derived from it in one write; orphans age out through their TTLs.
// This trades a pile of deletes for one small write when a whole family of
// lists must be invalidated together.
//
// # Per-Identifier Caching
//
// FetchKeyed caches one entry per identifier under Prefix + identifier and
// resolves a call in one multi-get plus at most one query. Identifiers
// found in the cache are served from it; the rest are fetched by appending
// a WHERE ... IN (?) filter to the statement template, shaped by ByColumn,
// written back individually, and merged. Identifiers the database does not
// know stay absent from the result and are not cached, so later calls retry
// them.
//
// When ByColumn is "id", or NumericKeys is set, identifiers must look
// numeric; the ones that do not are dropped from the call entirely. A call
// left with no identifiers fails with ErrNoIdentifiers rather than running
// an unfiltered statement.
//
// GroupColumns switches the path to grouped caching, where all rows sharing
// a ByColumn value form one cached unit. See CacheConfig for the projection
// and collapse knobs.
//
// # Failure Semantics
//
// Database errors are fatal and come back as *QueryError wrapping the
// driver error. Cache errors never are: a failing read counts as a miss, a
// failing write is dropped, both logged at warn level, and the call answers
// from the database as if no cache existed.
//
// # Concurrency
//
// A Manager is safe for concurrent use and performs no request coalescing.
// Concurrent misses on one key each run the query and each write the entry;
// values are idempotent reads, so duplicated work is the whole cost.
//
// # See Also
//
// Package cache defines the Store and Codec contracts plus the memory and
// Redis constructors. Package di assembles a Manager from configuration.
package dbm
