package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/navith/genreguide/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GENREGUIDE"

// durationSuffixes mark keys whose string values are durations such as "5s".
var durationSuffixes = []string{"_timeout", "_interval", "_wait"}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	getenv     func(string) string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  EnvPrefix,
		getenv:     os.Getenv,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file over the defaults
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load merges the defaults, each layer and the environment, in that order
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("load %s", path))
		}
		cfg, err = l.mergeFromMap(cfg, raw)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Loader", "Load", fmt.Sprintf("merge %s", path))
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadRaw reads a JSON or YAML file into a generic map
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	data, err = yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid structure: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if err := parseDurations(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// mergeFromMap overrides only the fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}
	return result
}

// parseDurations converts duration strings to nanoseconds for json unmarshaling
func parseDurations(data map[string]any) error {
	for k, v := range data {
		switch value := v.(type) {
		case map[string]any:
			if err := parseDurations(value); err != nil {
				return err
			}
		case string:
			if !isDurationKey(k) {
				continue
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			data[k] = d.Nanoseconds()
		}
	}
	return nil
}

func isDurationKey(key string) bool {
	for _, suffix := range durationSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	overrides := []struct {
		name   string
		target *string
	}{
		{"STORE_BACKEND", &cfg.Store.Backend},
		{"DATASET", &cfg.Store.Dataset},
		{"REDIS_ADDR", &cfg.Store.Redis.Addr},
		{"REDIS_PASSWORD", &cfg.Store.Redis.Password},
		{"NATS_URL", &cfg.Store.NATS.URL},
		{"NATS_BUCKET", &cfg.Store.NATS.Bucket},
		{"NATS_USERNAME", &cfg.Store.NATS.Username},
		{"NATS_PASSWORD", &cfg.Store.NATS.Password},
		{"NATS_TOKEN", &cfg.Store.NATS.Token},
		{"GRAPHQL_BIND_ADDRESS", &cfg.GraphQL.BindAddress},
	}
	for _, s := range overrides {
		key := l.envPrefix + "_" + s.name
		val := l.getenv(key)
		if val == "" {
			continue
		}
		if err := validateEnvVar(key, val); err != nil {
			return errors.WrapInvalid(err, "Loader", "applyEnvOverrides", key)
		}
		*s.target = val
	}

	if val := l.getenv(l.envPrefix + "_REDIS_DB"); val != "" {
		db, err := strconv.Atoi(val)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "applyEnvOverrides", l.envPrefix+"_REDIS_DB")
		}
		cfg.Store.Redis.DB = db
	}
	if val := l.getenv(l.envPrefix + "_METRICS_PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return errors.WrapInvalid(err, "Loader", "applyEnvOverrides", l.envPrefix+"_METRICS_PORT")
		}
		cfg.Metrics.Port = port
	}
	return nil
}
