package graphql

import (
	"fmt"
	"math"
	"time"

	"github.com/navith/genreguide/errors"
)

// Config holds configuration for the GraphQL HTTP server
type Config struct {
	// BindAddress is the HTTP bind address (default: ":8080")
	BindAddress string `json:"bind_address"`

	// Path is the GraphQL endpoint path (default: "/graphql")
	Path string `json:"path"`

	// EnablePlayground serves the GraphQL Playground UI at "/"
	EnablePlayground bool `json:"enable_playground"`

	// EnableCORS enables CORS headers
	EnableCORS bool `json:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (default: ["*"])
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// TimeoutStr bounds each request, including its store reads (default: "30s")
	TimeoutStr string `json:"timeout,omitempty"`

	// MaxQueryDepth limits GraphQL query nesting depth (default: 10)
	MaxQueryDepth int `json:"max_query_depth,omitempty"`

	// MaxParallelism bounds concurrently resolved fields per request (default: 10)
	MaxParallelism int `json:"max_parallelism,omitempty"`

	// RateLimit caps GraphQL requests per second across clients; 0 disables it
	RateLimit float64 `json:"rate_limit,omitempty"`

	// RateBurst is the limiter's bucket size (default: RateLimit rounded up)
	RateBurst int `json:"rate_burst,omitempty"`

	// timeout is the parsed duration (internal use)
	timeout time.Duration
}

// Validate fills defaults and rejects bad values
func (c *Config) Validate() error {
	if c.BindAddress == "" {
		c.BindAddress = ":8080"
	}

	if c.Path == "" {
		c.Path = "/graphql"
	}
	if c.Path[0] != '/' {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"path must start with /")
	}
	if c.Path == "/" || c.Path == "/health" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("path %s is reserved", c.Path))
	}

	if c.TimeoutStr == "" {
		c.timeout = 30 * time.Second
	} else {
		timeout, err := time.ParseDuration(c.TimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid timeout format: %s", c.TimeoutStr))
		}
		if timeout < 100*time.Millisecond || timeout > 5*time.Minute {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"timeout must be between 100ms and 5m")
		}
		c.timeout = timeout
	}

	if c.MaxQueryDepth == 0 {
		c.MaxQueryDepth = 10
	}
	if c.MaxQueryDepth < 1 || c.MaxQueryDepth > 50 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_query_depth must be between 1 and 50")
	}

	if c.MaxParallelism == 0 {
		c.MaxParallelism = 10
	}
	if c.MaxParallelism < 1 || c.MaxParallelism > 256 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_parallelism must be between 1 and 256")
	}

	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"rate_limit and rate_burst must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		c.RateBurst = int(math.Ceil(c.RateLimit))
	}

	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}

	return nil
}

// Timeout returns the parsed timeout duration
func (c *Config) Timeout() time.Duration {
	return c.timeout
}

// DefaultConfig returns default GraphQL server configuration
func DefaultConfig() Config {
	return Config{
		BindAddress:      ":8080",
		Path:             "/graphql",
		EnablePlayground: true,
		EnableCORS:       true,
		CORSOrigins:      []string{"*"},
		TimeoutStr:       "30s",
		MaxQueryDepth:    10,
		MaxParallelism:   10,
	}
}
