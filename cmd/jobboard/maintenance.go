package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"jobboard/internal/authz"
	"jobboard/internal/config"
	"jobboard/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		slog.Info("migrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()
		return database.MigrationStatus(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample category tree and jobs into Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StoreBackend == config.BackendMemory {
			return errors.New("seed needs STORE_BACKEND=postgres; the memory store is seeded by serve")
		}
		be, err := openBackend(cfg)
		if err != nil {
			return err
		}
		defer be.Close()
		return database.Seed(cmd.Context(), be.tree, be.jobs)
	},
}

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token <token>",
	Short: "Print the bcrypt hash to use as ADMIN_TOKEN_HASH",
	Args:  cobra.ExactArgs(1),
	// Runs without configuration so a production hash can be produced
	// before ADMIN_TOKEN_HASH exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := authz.HashToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd, seedCmd, hashTokenCmd)
}
