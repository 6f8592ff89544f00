package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/navith/genreguide/config"
	"github.com/navith/genreguide/gateway/graphql"
	"github.com/navith/genreguide/health"
	"github.com/navith/genreguide/metric"
	"github.com/navith/genreguide/resolver"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API",
		Long: `Serve the GraphQL API, the health endpoint and, when enabled, Prometheus metrics.

The memory backend is always filled from store.dataset. Pass --seed to also load
the dataset into a Redis or NATS backend before serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, flags, seed, slog.Default())
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", getEnvBool("GENREGUIDE_SEED", false),
		"Load store.dataset into the backend before serving (env: GENREGUIDE_SEED)")
	return cmd
}

// loadConfig reads the config file. A missing file at the default path falls
// back to defaults plus environment overrides.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	loader := config.NewLoader()
	if _, err := os.Stat(path); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		slog.Info("No config file, using defaults", "config_path", path)
		return loader.Load()
	}
	return loader.LoadFile(path)
}

func serve(ctx context.Context, cfg *config.Config, flags *globalFlags, seed bool, logger *slog.Logger) error {
	logger.Info("Starting genreguide",
		"version", Version,
		"build_time", BuildTime,
		"backend", cfg.Store.Backend)
	logger.Debug("Configuration", "config", cfg.String())

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()

	be, err := openBackend(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), flags.shutdownTimeout)
		defer cancel()
		if err := be.close(closeCtx); err != nil {
			logger.Warn("Store close failed", "error", err)
		}
	}()

	if cfg.Store.Dataset != "" && (seed || cfg.Store.Backend == config.BackendMemory) {
		if err := loadDataset(ctx, be.store, cfg.Store.Dataset, logger); err != nil {
			return err
		}
	}

	res, err := resolver.New(be.store, cfg.Cache, resolver.WithMetrics(registry))
	if err != nil {
		return err
	}

	schema, err := graphql.NewSchema(res, cfg.GraphQL)
	if err != nil {
		return err
	}

	monitor := health.NewMonitor(metrics, logger)
	monitor.Register("store."+be.name, be.checker)

	server, err := graphql.NewServer(cfg.GraphQL, schema, monitor, metrics, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		monitor.Run(gctx, cfg.Health.CheckInterval, cfg.Health.CheckTimeout)
		return nil
	})

	g.Go(func() error {
		return server.Start(gctx, nil)
	})

	if cfg.Metrics.Enabled {
		metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		g.Go(func() error {
			logger.Info("Metrics server starting", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			return metricsServer.Start()
		})
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), flags.shutdownTimeout)
			defer cancel()
			return metricsServer.Stop(stopCtx)
		})
	}

	err = g.Wait()
	logger.Info("genreguide stopped")
	return err
}
