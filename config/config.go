package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/gateway/graphql"
	"github.com/navith/genreguide/resolver"
	"github.com/navith/genreguide/storage/redisstore"
)

// Store backends
const (
	BackendRedis  = "redis"  // Redis hashes, sets and lists (production)
	BackendNATS   = "nats"   // NATS JetStream KV bucket
	BackendMemory = "memory" // In-process, loaded from a dataset file
)

// Config represents the complete server configuration
type Config struct {
	Store   StoreConfig     `json:"store"`
	Cache   resolver.Config `json:"cache"`
	GraphQL graphql.Config  `json:"graphql"`
	Metrics MetricsConfig   `json:"metrics"`
	Health  HealthConfig    `json:"health"`
}

// StoreConfig selects and configures the catalog store
type StoreConfig struct {
	Backend string `json:"backend"`

	// Dataset is loaded into the store at startup. Required for the memory
	// backend; optional seeding for the others.
	Dataset string `json:"dataset,omitempty"`

	Redis redisstore.Config `json:"redis"`
	NATS  NATSConfig        `json:"nats"`
}

// NATSConfig defines the NATS connection and KV bucket holding the catalog
type NATSConfig struct {
	URL           string        `json:"url"`
	Bucket        string        `json:"bucket"`
	CreateBucket  bool          `json:"create_bucket,omitempty"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// HealthConfig configures the store connectivity probe
type HealthConfig struct {
	CheckInterval time.Duration `json:"check_interval"`
	CheckTimeout  time.Duration `json:"check_timeout"`
}

// Default returns the configuration used when no file overrides it
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendRedis,
			Redis:   redisstore.DefaultConfig(),
			NATS: NATSConfig{
				URL:           "nats://localhost:4222",
				Bucket:        "genreguide",
				MaxReconnects: -1,
				ReconnectWait: 2 * time.Second,
			},
		},
		Cache:   resolver.DefaultConfig(),
		GraphQL: graphql.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Health: HealthConfig{
			CheckInterval: 15 * time.Second,
			CheckTimeout:  2 * time.Second,
		},
	}
}

// Validate checks the config and fills section defaults
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}

	if err := c.Cache.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "cache")
	}

	if err := c.GraphQL.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "graphql")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port))
		}
		if c.Metrics.Path == "" {
			c.Metrics.Path = "/metrics"
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"metrics.path must start with /")
		}
	}

	if c.Health.CheckInterval <= 0 || c.Health.CheckTimeout <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"health.check_interval and health.check_timeout must be positive")
	}
	if c.Health.CheckTimeout > c.Health.CheckInterval {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"health.check_timeout must not exceed health.check_interval")
	}

	return nil
}

// Validate checks the selected backend's settings
func (s *StoreConfig) Validate() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))

	switch s.Backend {
	case BackendRedis:
		if err := s.Redis.Validate(); err != nil {
			return errors.WrapInvalid(err, "Config", "Validate", "store.redis")
		}
	case BackendNATS:
		if s.NATS.URL == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "store.nats.url is required")
		}
		if s.NATS.Bucket == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "store.nats.bucket is required")
		}
	case BackendMemory:
		if s.Dataset == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate",
				"store.dataset is required for the memory backend")
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("store.backend must be one of redis, nats, memory; got %q", s.Backend))
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// String returns a JSON representation of the config with secrets redacted
func (c *Config) String() string {
	redacted := c.Clone()
	for _, secret := range []*string{
		&redacted.Store.Redis.Password,
		&redacted.Store.NATS.Password,
		&redacted.Store.NATS.Token,
	} {
		if *secret != "" {
			*secret = "[REDACTED]"
		}
	}
	data, _ := json.MarshalIndent(redacted, "", "  ")
	return string(data)
}
