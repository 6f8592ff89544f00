package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/navith/genreguide/errors"
)

// lruCache is a capacity-bounded cache backed by hashicorp/golang-lru.
// Entries never expire; once maxSize is exceeded the least recently used
// entry is dropped.
type lruCache[V any] struct {
	lru     *lru.Cache[string, V]
	maxSize int
	stats   *Statistics
	metrics *cacheMetrics
}

// NewLRU creates a new LRU cache with the specified maximum size.
// Stats are always enabled. Use WithMetrics() to also export them to Prometheus.
func NewLRU[V any](maxSize int, options ...Option[V]) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "NewLRU",
			fmt.Sprintf("max size must be positive, got %d", maxSize))
	}

	opts := applyOptions(options...)

	var metrics *cacheMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewLRU", "metrics registration")
		}
	}

	inner, err := lru.NewWithEvict[string, V](maxSize, opts.evictCallback)
	if err != nil {
		return nil, errors.WrapInvalid(err, "cache", "NewLRU", "create lru")
	}

	return &lruCache[V]{
		lru:     inner,
		maxSize: maxSize,
		stats:   NewStatistics(),
		metrics: metrics,
	}, nil
}

// Get retrieves a value by key and marks it as recently used.
func (c *lruCache[V]) Get(key string) (V, bool) {
	value, ok := c.lru.Get(key)
	if !ok {
		c.stats.Miss()
		if c.metrics != nil {
			c.metrics.recordMiss()
		}
		return value, false
	}

	c.stats.Hit()
	if c.metrics != nil {
		c.metrics.recordHit()
	}
	return value, true
}

// Set stores a value with the given key and marks it as recently used.
func (c *lruCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	// ContainsOrAdd only inserts absent keys; present keys are refreshed with Add.
	existed, evicted := c.lru.ContainsOrAdd(key, value)
	if existed {
		evicted = c.lru.Add(key, value)
	}

	c.stats.Set()
	if evicted {
		c.stats.Eviction()
	}
	size := c.lru.Len()
	c.stats.UpdateSize(int64(size))

	if c.metrics != nil {
		c.metrics.recordSet()
		if evicted {
			c.metrics.recordEviction()
		}
		c.metrics.updateSize(size)
	}

	return !existed, nil
}

// Delete removes an entry by key.
func (c *lruCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	if !c.lru.Remove(key) {
		return false, nil
	}

	c.stats.Delete()
	size := c.lru.Len()
	c.stats.UpdateSize(int64(size))
	if c.metrics != nil {
		c.metrics.updateSize(size)
	}
	return true, nil
}

// Clear removes all entries from the cache.
func (c *lruCache[V]) Clear() error {
	c.lru.Purge()
	c.stats.UpdateSize(0)
	if c.metrics != nil {
		c.metrics.updateSize(0)
	}
	return nil
}

// Size returns the current number of entries in the cache.
func (c *lruCache[V]) Size() int {
	return c.lru.Len()
}

// Keys returns the keys in LRU order, most recently used first.
func (c *lruCache[V]) Keys() []string {
	keys := c.lru.Keys()
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// Stats returns cache statistics.
func (c *lruCache[V]) Stats() *Statistics {
	return c.stats
}

// Close is a no-op; the LRU has no background goroutines.
func (c *lruCache[V]) Close() error {
	return nil
}
