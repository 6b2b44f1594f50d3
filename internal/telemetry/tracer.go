// Package telemetry wires tracing and metrics for the transport backend.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
)

// TracerOptions selects where spans are exported and how many are kept.
type TracerOptions struct {
	ServiceName string
	// Output is "stdout", "stderr" or a file path that spans are appended
	// to. Writer, when set, takes precedence.
	Output      string
	Writer      io.Writer
	PrettyPrint bool
	// SampleRatio is the fraction of root spans recorded, 0 to 1.
	SampleRatio float64
}

// TracerOptionsFromConfig maps the telemetry config section onto options.
func TracerOptionsFromConfig(cfg config.TelemetryConfig) TracerOptions {
	return TracerOptions{
		ServiceName: cfg.ServiceName,
		Output:      cfg.TraceOutput,
		PrettyPrint: cfg.PrettyPrint,
		SampleRatio: cfg.SampleRatio,
	}
}

// InitTracer installs a global tracer provider that exports spans as JSON.
// The returned function flushes pending spans and releases the output.
func InitTracer(opts TracerOptions, logger *slog.Logger) (func(context.Context) error, error) {
	w, closeOutput, err := traceWriter(opts)
	if err != nil {
		return nil, err
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if opts.PrettyPrint {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		closeOutput()
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		closeOutput()
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing enabled",
		slog.String("service", opts.ServiceName),
		slog.String("output", outputName(opts)),
		slog.Float64("sample_ratio", opts.SampleRatio),
	)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), closeOutput())
	}, nil
}

func traceWriter(opts TracerOptions) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	if opts.Writer != nil {
		return opts.Writer, noop, nil
	}

	switch opts.Output {
	case "", "stdout":
		return os.Stdout, noop, nil
	case "stderr":
		return os.Stderr, noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create trace output directory: %w", err)
	}
	f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, f.Close, nil
}

func outputName(opts TracerOptions) string {
	switch {
	case opts.Writer != nil:
		return "writer"
	case opts.Output == "":
		return "stdout"
	default:
		return opts.Output
	}
}
