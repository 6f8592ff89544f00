package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/navith/genreguide/config"
	"github.com/navith/genreguide/errors"
	"github.com/navith/genreguide/health"
	"github.com/navith/genreguide/natsclient"
	"github.com/navith/genreguide/pkg/retry"
	"github.com/navith/genreguide/storage"
	"github.com/navith/genreguide/storage/kvstore"
	"github.com/navith/genreguide/storage/memstore"
	"github.com/navith/genreguide/storage/redisstore"
)

// backend is an opened catalog store with its health probe.
type backend struct {
	name    string
	store   storage.Backend
	checker health.Checker
	close   func(context.Context) error
}

func noClose(context.Context) error { return nil }

// openBackend connects the configured store, retrying transient failures.
func openBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return openRedis(ctx, cfg.Redis, logger)
	case config.BackendNATS:
		return openNATS(ctx, cfg.NATS, logger)
	case config.BackendMemory:
		st := memstore.New()
		return &backend{
			name:    config.BackendMemory,
			store:   st,
			checker: health.CheckerFunc(func(context.Context) error { return nil }),
			close:   noClose,
		}, nil
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "main", "openBackend",
			fmt.Sprintf("unknown store backend %q", cfg.Backend))
	}
}

func openRedis(ctx context.Context, cfg redisstore.Config, logger *slog.Logger) (*backend, error) {
	st, err := redisstore.New(cfg)
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, retry.Startup(), func() error {
		if err := st.Ping(ctx); err != nil {
			logger.Warn("Redis not ready", "addr", cfg.Addr, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Connected to Redis", "addr", cfg.Addr, "db", cfg.DB)
	return &backend{
		name:    config.BackendRedis,
		store:   st,
		checker: st,
		close:   func(context.Context) error { return st.Close() },
	}, nil
}

func openNATS(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*backend, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithName(appName),
		natsclient.WithLogger(logger),
		natsclient.WithMaxReconnects(cfg.MaxReconnects),
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, natsclient.WithReconnectWait(cfg.ReconnectWait))
	}
	if cfg.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.Username, cfg.Password))
	}
	if cfg.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.Token))
	}

	client, err := natsclient.NewClient(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	err = retry.Do(ctx, retry.Startup(), func() error {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return client.Connect(connectCtx)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", cfg.URL, err)
	}

	var bucket jetstream.KeyValue
	if cfg.CreateBucket {
		bucket, err = client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
			Bucket:      cfg.Bucket,
			Description: "genreguide catalog",
		})
	} else {
		bucket, err = client.GetKeyValueBucket(ctx, cfg.Bucket)
	}
	if err != nil {
		_ = client.Close(ctx)
		return nil, err
	}

	st := kvstore.New(bucket)
	return &backend{
		name:  config.BackendNATS,
		store: st,
		checker: health.CheckerFunc(func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				return err
			}
			return st.Ping(ctx)
		}),
		close: client.Close,
	}, nil
}

// loadDataset reads a dataset file and writes it into the store.
func loadDataset(ctx context.Context, w storage.Writer, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapInvalid(err, "main", "loadDataset", fmt.Sprintf("read %s", path))
	}

	ds, err := storage.ParseDataset(data)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := storage.Load(ctx, w, ds); err != nil {
		return err
	}

	logger.Info("Dataset loaded",
		"path", path,
		"subgenres", len(ds.Subgenres),
		"tracks", len(ds.Tracks),
		"duration", time.Since(start))
	return nil
}
