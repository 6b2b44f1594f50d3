package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "movi",
		Short: "Transport operations backend with an intent-driven agent",
		Long: `movi serves the transport-operations API: stops, paths, routes,
vehicles, drivers, daily trips and deployments, plus the agent action
endpoint that gates risky operations behind confirmation.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newSeedCmd(opts),
		newActionCmd(opts),
	)
	return cmd
}

// loadConfig reads the config file named by --config.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section. The level
// is held in level so it can be changed at runtime.
func newLogger(cfg config.LoggingConfig, w io.Writer, level *slog.LevelVar) *slog.Logger {
	level.Set(cfg.SlogLevel())
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
