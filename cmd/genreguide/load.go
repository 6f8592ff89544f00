package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/navith/genreguide/config"
	"github.com/navith/genreguide/errors"
)

func newLoadCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "load [dataset]",
		Short: "Load a dataset into the configured store",
		Long: `Load a catalog dataset (JSON or YAML) into the Redis or NATS backend named by
the config. The dataset argument defaults to store.dataset.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags.configPath)
			if err != nil {
				return err
			}

			path := cfg.Store.Dataset
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.WrapInvalid(errors.ErrMissingConfig, "main", "load", "no dataset given")
			}
			if cfg.Store.Backend == config.BackendMemory {
				return errors.WrapInvalid(errors.ErrInvalidConfig, "main", "load",
					"the memory backend does not outlive the process; use serve")
			}

			ctx := cmd.Context()
			logger := slog.Default()
			be, err := openBackend(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer func() { _ = be.close(ctx) }()

			return loadDataset(ctx, be.store, path, logger)
		},
	}
}
