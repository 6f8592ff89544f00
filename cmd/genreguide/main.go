// Package main implements the genreguide binary: a read-only GraphQL server
// over the genre taxonomy and track catalog.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "genreguide"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := newRootCommand().Execute(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName + " [command]",
		Short: "GraphQL server for the genre taxonomy and track catalog",
		Long: `genreguide serves a read-only GraphQL API over a music genre taxonomy and a
track catalog kept in Redis, a NATS JetStream KV bucket or memory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			slog.SetDefault(setupLogger(flags.logLevel, flags.logFormat, cmd.ErrOrStderr()))
			return nil
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	flags.register(cmd)
	cmd.AddCommand(newServeCommand(flags))
	cmd.AddCommand(newLoadCommand(flags))
	cmd.AddCommand(newSchemaCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (built %s, %s)\n",
				appName, Version, BuildTime, runtime.Version())
			return err
		},
	}
}
