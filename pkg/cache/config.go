package cache

import (
	"fmt"

	"github.com/navith/genreguide/errors"
)

// Config contains configuration for a single cache.
type Config struct {
	// Enabled determines if caching is enabled. A disabled cache is a Noop cache.
	Enabled bool `json:"enabled"`

	// MaxSize is the maximum number of entries kept before LRU eviction.
	MaxSize int `json:"max_size"`
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxSize <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("max_size must be positive, got %d", c.MaxSize))
	}
	return nil
}

// NewFromConfig creates a cache based on the provided configuration.
// Returns a Noop cache if config.Enabled is false.
func NewFromConfig[V any](config Config, options ...Option[V]) (Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "cache", "NewFromConfig", "config validation")
	}

	if !config.Enabled {
		return NewNoop[V](), nil
	}

	return NewLRU[V](config.MaxSize, options...)
}
