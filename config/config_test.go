package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestLoader(env map[string]string) *Loader {
	l := NewLoader()
	l.getenv = func(key string) string { return env[key] }
	return l
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 8192, cfg.Cache.Fetch.MaxSize)
	assert.Equal(t, 30*time.Second, cfg.GraphQL.Timeout())
}

func TestLoader_LoadYAML(t *testing.T) {
	path := writeConfig(t, "genreguide.yaml", `
store:
  backend: redis
  redis:
    addr: cache.internal:6380
    db: 2
    dial_timeout: 1s
cache:
  fetch:
    enabled: true
    max_size: 1024
graphql:
  path: /api/graphql
  timeout: 10s
  enable_playground: false
health:
  check_interval: 30s
`)

	cfg, err := newTestLoader(nil).LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, time.Second, cfg.Store.Redis.DialTimeout)
	// Unset fields keep their defaults.
	assert.Equal(t, 3*time.Second, cfg.Store.Redis.ReadTimeout)
	assert.Equal(t, 10, cfg.Store.Redis.PoolSize)

	assert.Equal(t, 1024, cfg.Cache.Fetch.MaxSize)
	assert.Equal(t, 64, cfg.Cache.Tokens.MaxSize)

	assert.Equal(t, "/api/graphql", cfg.GraphQL.Path)
	assert.Equal(t, 10*time.Second, cfg.GraphQL.Timeout())
	assert.False(t, cfg.GraphQL.EnablePlayground)
	assert.True(t, cfg.GraphQL.EnableCORS)

	assert.Equal(t, 30*time.Second, cfg.Health.CheckInterval)
	assert.Equal(t, 2*time.Second, cfg.Health.CheckTimeout)
}

func TestLoader_LoadJSON(t *testing.T) {
	path := writeConfig(t, "genreguide.json", `{
		"store": {
			"backend": "NATS",
			"nats": {"url": "nats://nats:4222", "bucket": "catalog", "reconnect_wait": "500ms"}
		},
		"metrics": {"enabled": false}
	}`)

	cfg, err := newTestLoader(nil).LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, BackendNATS, cfg.Store.Backend)
	assert.Equal(t, "nats://nats:4222", cfg.Store.NATS.URL)
	assert.Equal(t, "catalog", cfg.Store.NATS.Bucket)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.NATS.ReconnectWait)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoader_Layers(t *testing.T) {
	base := writeConfig(t, "base.yaml", `
store:
  backend: memory
  dataset: catalog.yaml
graphql:
  bind_address: ":8000"
`)
	override := writeConfig(t, "prod.yaml", `
graphql:
  bind_address: ":9000"
`)

	l := newTestLoader(nil)
	l.AddLayer(base)
	l.AddLayer(override)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "catalog.yaml", cfg.Store.Dataset)
	assert.Equal(t, ":9000", cfg.GraphQL.BindAddress)
}

func TestLoader_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "genreguide.yaml", "store:\n  backend: redis\n")

	cfg, err := newTestLoader(map[string]string{
		"GENREGUIDE_REDIS_ADDR":     "redis.prod:6379",
		"GENREGUIDE_REDIS_PASSWORD": "hunter2",
		"GENREGUIDE_REDIS_DB":       "4",
		"GENREGUIDE_METRICS_PORT":   "9191",
	}).LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "redis.prod:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Store.Redis.Password)
	assert.Equal(t, 4, cfg.Store.Redis.DB)
	assert.Equal(t, 9191, cfg.Metrics.Port)

	_, err = newTestLoader(map[string]string{"GENREGUIDE_REDIS_DB": "two"}).LoadFile(path)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown backend", "a.yaml", "store:\n  backend: postgres\n"},
		{"memory without dataset", "b.yaml", "store:\n  backend: memory\n"},
		{"bad duration", "c.yaml", "health:\n  check_interval: often\n"},
		{"timeout above interval", "d.yaml", "health:\n  check_interval: 1s\n  check_timeout: 5s\n"},
		{"bad graphql path", "e.yaml", "graphql:\n  path: graphql\n"},
		{"bad metrics port", "f.yaml", "metrics:\n  port: 70000\n"},
		{"bad cache size", "g.yaml", "cache:\n  fetch:\n    enabled: true\n    max_size: 0\n"},
		{"not yaml", "h.yaml", "store: [unclosed\n"},
		{"wrong extension", "config.toml", "store = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			_, err := newTestLoader(nil).LoadFile(path)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err), err.Error())
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := newTestLoader(nil).LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_StringRedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Store.Redis.Password = "hunter2"
	cfg.Store.NATS.Token = "s3cret"

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "s3cret")
	assert.Contains(t, out, "[REDACTED]")

	// The original is untouched.
	assert.Equal(t, "hunter2", cfg.Store.Redis.Password)
}

func TestValidateJSONDepth(t *testing.T) {
	assert.NoError(t, validateJSONDepth([]byte(`{"a": [1, {"b": "]]]"}]}`)))
	assert.Error(t, validateJSONDepth([]byte(`{"a": [}`)))
	assert.Error(t, validateJSONDepth([]byte(strings.Repeat("[", maxJSONDepth+1)+strings.Repeat("]", maxJSONDepth+1))))
}

func TestValidateConfigPath(t *testing.T) {
	assert.NoError(t, validateConfigPath("/etc/genreguide/config.yaml"))
	assert.NoError(t, validateConfigPath("config.yml"))
	assert.Error(t, validateConfigPath(""))
	assert.Error(t, validateConfigPath("../outside.yaml"))
	assert.Error(t, validateConfigPath("config.ini"))
}
