package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navith/genreguide/config"
	"github.com/navith/genreguide/storage"
	"github.com/navith/genreguide/testutil"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(testutil.Catalog())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGlobalFlags_Validate(t *testing.T) {
	valid := globalFlags{logLevel: "info", logFormat: "json", shutdownTimeout: 30 * time.Second}
	require.NoError(t, valid.validate())

	tests := []struct {
		name   string
		mutate func(*globalFlags)
	}{
		{"level", func(f *globalFlags) { f.logLevel = "trace" }},
		{"format", func(f *globalFlags) { f.logFormat = "xml" }},
		{"short timeout", func(f *globalFlags) { f.shutdownTimeout = 10 * time.Millisecond }},
		{"long timeout", func(f *globalFlags) { f.shutdownTimeout = time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			assert.Error(t, f.validate())
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("warn", "json", &buf)

	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, appName, line["service"])
	assert.Equal(t, Version, line["version"])

	buf.Reset()
	setupLogger("info", "text", &buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "genreguide version "+Version))
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "scalar Date")
	assert.Contains(t, out, "allSubgenres")

	out, err = execute(t, "schema", "--normalize")
	require.NoError(t, err)
	assert.Contains(t, out, "type Query")
	assert.Contains(t, out, "subgenresFlat")
}

func TestOpenBackend_Memory(t *testing.T) {
	ctx := context.Background()
	be, err := openBackend(ctx, config.StoreConfig{Backend: config.BackendMemory}, testLogger())
	require.NoError(t, err)
	require.NoError(t, be.checker.Ping(ctx))

	require.NoError(t, loadDataset(ctx, be.store, writeDataset(t), testLogger()))

	ok, err := be.store.IsMember(ctx, storage.GenresSet, "Dubstep")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, be.close(ctx))
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cfg := config.Default().Store
	cfg.Redis.Addr = mr.Addr()

	be, err := openBackend(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer func() { _ = be.close(ctx) }()

	require.NoError(t, be.checker.Ping(ctx))

	mr.Close()
	assert.Error(t, be.checker.Ping(ctx))
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := openBackend(context.Background(), config.StoreConfig{Backend: "postgres"}, testLogger())
	assert.Error(t, err)
}

func TestLoadDataset_Invalid(t *testing.T) {
	ctx := context.Background()
	be, err := openBackend(ctx, config.StoreConfig{Backend: config.BackendMemory}, testLogger())
	require.NoError(t, err)

	assert.Error(t, loadDataset(ctx, be.store, filepath.Join(t.TempDir(), "absent.json"), testLogger()))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"subgenres": [{"is_genre": true}]}`), 0o600))
	assert.Error(t, loadDataset(ctx, be.store, bad, testLogger()))
}

func TestLoadCommand_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	dataset := writeDataset(t)

	cfgPath := filepath.Join(t.TempDir(), "genreguide.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  backend: redis\n  redis:\n    addr: "+mr.Addr()+"\n"), 0o600))

	_, err := execute(t, "load", dataset, "--config", cfgPath)
	require.NoError(t, err)

	assert.True(t, mr.Exists(storage.SubgenreKey("Grime")))
	assert.True(t, mr.Exists(storage.TrackKey("t0")))
}

func TestLoadCommand_MemoryRejected(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "genreguide.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  backend: memory\n  dataset: "+writeDataset(t)+"\n"), 0o600))

	_, err := execute(t, "load", "--config", cfgPath)
	assert.Error(t, err)
}

func TestServe_MemoryUntilCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Store.Dataset = writeDataset(t)
	cfg.GraphQL.BindAddress = "127.0.0.1:0"
	cfg.Metrics.Enabled = false
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, &globalFlags{shutdownTimeout: 5 * time.Second}, false, testLogger())
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServe_BadDataset(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Store.Dataset = filepath.Join(t.TempDir(), "absent.json")
	cfg.Metrics.Enabled = false

	err := serve(context.Background(), cfg, &globalFlags{shutdownTimeout: time.Second}, false, testLogger())
	assert.Error(t, err)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
