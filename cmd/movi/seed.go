package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/movi-transport-agent/internal/seed"
	"github.com/tjfontaine/movi-transport-agent/internal/storage"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample data into the configured database",
		Long: `Loads the sample stops, paths, routes, vehicles, drivers, trips and
deployment. A database that already holds stops is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Logging, cmd.ErrOrStderr(), new(slog.LevelVar))

			store, err := storage.Open(cfg.Storage)
			if err != nil {
				return err
			}
			defer store.Close()

			seeded, err := seed.Load(cmd.Context(), store, time.Now())
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Database already contains data; nothing to do.")
				return nil
			}

			logger.Debug("seed complete", slog.String("storage", cfg.Storage.Type))
			fmt.Fprintln(cmd.OutOrStdout(), "Seeded sample data.")
			return nil
		},
	}
}
