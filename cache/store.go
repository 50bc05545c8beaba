package cache

import (
	"context"
	"time"
)

// Store is the key-value surface the caching layer talks to.
// Implementations must keep absence distinguishable from every stored value:
// a missing key reports found=false (or is omitted from a multi-get result),
// never an error and never an empty payload.
type Store interface {
	// Get returns the payload stored under key. found reports whether the key
	// was present; err is reserved for transport failures.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// GetMulti returns the payloads for the keys that are present. Absent keys
	// are omitted from the result rather than reported as errors.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value under key for ttl. A zero ttl stores without expiry
	// where the backend allows it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMulti stores every entry under the same ttl.
	SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error

	// Delete removes the given keys. Deleting an absent key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// Close releases resources owned by the store. Stores built around an
	// injected client leave that client open; its lifetime belongs to whoever
	// supplied it.
	Close() error
}
