// Package main is the entry point for the job board API. The default
// command serves HTTP; migrate, seed and hash-token are maintenance tools.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"jobboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "jobboard",
	Short:        "Job board API with hierarchical categories",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		// Text output, exactly as in development; level comes from LOG_LEVEL.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		})))
		return nil
	},
	RunE: runServe,
}

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
