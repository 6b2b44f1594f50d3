package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/movi-transport-agent/internal/adapters/events/direct"
	"github.com/tjfontaine/movi-transport-agent/internal/core/domain"
	"github.com/tjfontaine/movi-transport-agent/internal/intent"
	"github.com/tjfontaine/movi-transport-agent/internal/pipeline"
	"github.com/tjfontaine/movi-transport-agent/internal/storage"
)

type actionOptions struct {
	params  []string
	context []string
	confirm bool
}

func newActionCmd(root *rootOptions) *cobra.Command {
	opts := &actionOptions{}

	cmd := &cobra.Command{
		Use:   "action <intent>",
		Short: "Run one agent action against the configured database",
		Long: `Runs a single intent through the agent pipeline and prints the JSON
response. Parameter values are parsed as JSON when possible, so
--param trip_id=2 is a number and --param stop_ids=[1,2] a list;
anything else is passed as a string.`,
		Example: `  movi action list_unassigned_vehicles
  movi action remove_vehicle_from_trip --param trip_id=2 --param "trip_name=Bulk - 08:30" --confirm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "intent parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.context, "context", nil, "request context as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.confirm, "confirm", false, "confirm an action that requires confirmation")
	return cmd
}

func runAction(cmd *cobra.Command, root *rootOptions, opts *actionOptions, name string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr(), new(slog.LevelVar))

	params, err := parseKeyValues(opts.params)
	if err != nil {
		return err
	}
	if opts.confirm {
		params[intent.ConfirmedKey] = true
	}
	reqContext, err := parseKeyValues(opts.context)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher, err := direct.NewPublisher(store)
	if err != nil {
		return err
	}
	executor := pipeline.NewExecutor(store,
		pipeline.WithLogger(logger),
		pipeline.WithEventPublisher(publisher),
	)

	resp := executor.Handle(cmd.Context(), domain.ActionRequest{
		Intent:     name,
		Parameters: params,
		Context:    reqContext,
	})

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// parseKeyValues turns key=value pairs into a map. Values that parse as
// JSON keep their JSON type; numbers stay json.Number.
func parseKeyValues(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		out[key] = parseValue(raw)
	}
	return out, nil
}

func parseValue(raw string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	return v
}
