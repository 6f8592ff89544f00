// Package cache provides generic, thread-safe caches for resolver memoization.
//
// Two implementations are offered:
//   - LRU: capacity-bounded, least recently used entries evicted first, no expiry
//   - Noop: stores nothing, every Get is a miss (for tests and disabled caching)
//
// Statistics are always collected; Prometheus export is opt-in via WithMetrics.
package cache

import (
	"github.com/navith/genreguide/errors"
)

// Cache represents a generic cache interface that all cache implementations must satisfy.
// The cache is parameterized by value type V for type safety.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found, zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value with the given key. Returns true if a new entry was created, false if updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed and was deleted.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of entries in the cache.
	Size() int

	// Keys returns the keys currently in the cache.
	Keys() []string

	// Stats returns cache statistics, nil for caches that do not track them.
	Stats() *Statistics

	// Close releases any resources held by the cache.
	Close() error
}

// EvictCallback is called when an entry is evicted from the cache.
type EvictCallback[V any] func(key string, value V)

// validateKey validates a cache key for basic requirements.
func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
