// Package movi provides the public API for embedding the transport backend.
// This is the stable API for external consumers.
package movi

import (
	"github.com/tjfontaine/movi-transport-agent/internal/runtime"
)

// Service is the main entry point for running the transport backend.
// See internal/runtime.Service for full documentation.
type Service = runtime.Service

// Option is a functional option for configuring a Service.
type Option = runtime.Option

// New creates a new Service with the given options.
// Example:
//
//	svc, err := movi.New(
//	    movi.WithFileConfig("config.yaml"),
//	    movi.WithSQLite("./data/movi.db"),
//	)
var New = runtime.New

// Configuration options
var (
	// Config sources
	WithFileConfig     = runtime.WithFileConfig
	WithConfig         = runtime.WithConfig
	WithConfigProvider = runtime.WithConfigProvider

	// Storage
	WithSQLite          = runtime.WithSQLite
	WithDatabase        = runtime.WithDatabase
	WithMemoryStore     = runtime.WithMemoryStore
	WithStorageProvider = runtime.WithStorageProvider

	// Events
	WithEventPublisher = runtime.WithEventPublisher

	// Observability
	WithLogger          = runtime.WithLogger
	WithLogLevel        = runtime.WithLogLevel
	WithMetricsRegistry = runtime.WithMetricsRegistry
	WithTraceOutput     = runtime.WithTraceOutput

	// Advanced options
	WithListener = runtime.WithListener
)
