package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand. Each falls back to a
// GENREGUIDE_* environment variable.
type globalFlags struct {
	configPath      string
	logLevel        string
	logFormat       string
	shutdownTimeout time.Duration
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c",
		getEnv("GENREGUIDE_CONFIG", "configs/genreguide.yaml"),
		"Path to configuration file (env: GENREGUIDE_CONFIG)")
	pf.StringVar(&f.logLevel, "log-level",
		getEnv("GENREGUIDE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: GENREGUIDE_LOG_LEVEL)")
	pf.StringVar(&f.logFormat, "log-format",
		getEnv("GENREGUIDE_LOG_FORMAT", "json"),
		"Log format: json, text (env: GENREGUIDE_LOG_FORMAT)")
	pf.DurationVar(&f.shutdownTimeout, "shutdown-timeout",
		getEnvDuration("GENREGUIDE_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: GENREGUIDE_SHUTDOWN_TIMEOUT)")
}

func (f *globalFlags) validate() error {
	switch strings.ToLower(f.logLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", f.logLevel)
	}

	switch strings.ToLower(f.logFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", f.logFormat)
	}

	if f.shutdownTimeout < time.Second {
		return fmt.Errorf("shutdown timeout too short: %v (minimum 1s)", f.shutdownTimeout)
	}
	if f.shutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown timeout too long: %v (maximum 5m)", f.shutdownTimeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
