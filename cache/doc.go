// Package cache provides the key-value store surface and payload codecs for
// the query caching layer.
//
// # Overview
//
// This package exports two main interfaces and their bundled implementations:
//
//   - Store: a byte-oriented key-value store with multi-get/multi-set and a
//     distinguished "absent" outcome
//   - Codec: payload serialization (JSON by default, MessagePack optional)
//
// Concrete store adapters live in internal/cacheinfra and are reached through
// the factories here, so consumers depend on the interface and not on a
// backend.
//
// # Basic Usage
//
// The simplest store is the in-process one:
//
//	store, err := cache.NewMemoryStore(cache.DefaultMemoryConfig())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
// For a shared cache, hand an existing go-redis client to the Redis adapter:
//
//	store, err := cache.NewRedisStore(cache.RedisConfig{
//		Client:    redisClient,
//		KeyPrefix: "app:",
//	})
//
// # Absence vs Errors
//
// Store implementations keep three outcomes strictly apart: a present value,
// an absent key (found=false, or omitted from a GetMulti result), and a
// transport failure (err != nil). Callers in the query layer treat absence as
// a cache miss and transport failures as a degraded miss; conflating them
// would turn cache outages into wrong answers.
//
// # TTL Semantics
//
// Every write carries its own TTL. A zero TTL stores without expiry where the
// backend allows it. The memory store sweeps expired entries with a
// background janitor and also reclaims them lazily on read; Redis handles
// expiry natively.
//
// # Codecs
//
// Both bundled codecs round-trip the query layer's canonical payload shapes
// exactly, so a value read back from the store compares equal to the value
// that was written. Pick Msgpack for density, JSON for inspectability; they
// are interchangeable as long as readers and writers agree.
//
// # See Also
//
// For the cache-aware query orchestration built on top of this package, see
// the dbm package.
package cache
