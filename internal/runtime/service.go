// Package runtime provides the Service struct and lifecycle management for
// the transport backend. A Service can be embedded in a larger application
// or run standalone from cmd/movi.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tjfontaine/movi-transport-agent/internal/adapters/config/file"
	"github.com/tjfontaine/movi-transport-agent/internal/adapters/events/direct"
	"github.com/tjfontaine/movi-transport-agent/internal/api/transport"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/pipeline"
	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
	"github.com/tjfontaine/movi-transport-agent/internal/seed"
	"github.com/tjfontaine/movi-transport-agent/internal/server"
	"github.com/tjfontaine/movi-transport-agent/internal/storage"
	"github.com/tjfontaine/movi-transport-agent/internal/telemetry"
)

// Service wires configuration, storage, the agent pipeline and the HTTP
// server together. A Service is single-use: once shut down it cannot be
// started again.
type Service struct {
	// Dependencies (injected via options)
	config     ports.ConfigProvider
	configPath string
	storage    ports.StorageProvider
	events     ports.EventPublisher
	registry   *prometheus.Registry
	logger     *slog.Logger
	level      *slog.LevelVar
	listener   net.Listener
	traceOut   io.Writer

	// Internal state
	cfg            *config.Config
	ownsStorage    bool
	executor       *pipeline.Executor
	server         *server.Server
	addr           net.Addr
	serveErr       chan error
	tracerShutdown func(context.Context) error

	// Lifecycle management
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	started bool
	stopped bool
}

// New creates a Service with the given options. A config source is
// required; storage defaults to whatever the loaded configuration selects.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if s.config == nil && s.configPath != "" {
		provider, err := file.NewProvider(s.configPath, s.logger)
		if err != nil {
			return nil, fmt.Errorf("create file config provider: %w", err)
		}
		s.config = provider
	}
	if s.config == nil {
		if s.ownsStorage && s.storage != nil {
			s.storage.Close()
		}
		return nil, fmt.Errorf("config provider required (use WithFileConfig or WithConfig)")
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	return s, nil
}

// Start loads configuration, opens storage, seeds it when configured and
// starts serving HTTP in the background.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.New("service has been shut down")
	}
	if s.started {
		return errors.New("service already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	defer func() {
		if err != nil {
			s.abortStart()
		}
	}()

	cfg, err := s.config.Load(s.ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s.cfg = cfg
	s.applyLogLevel(cfg)

	if s.storage == nil {
		store, err := storage.Open(cfg.Storage)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		s.storage = store
		s.ownsStorage = true
	}

	if s.events == nil {
		publisher, err := direct.NewPublisher(s.storage)
		if err != nil {
			return fmt.Errorf("create default event publisher: %w", err)
		}
		s.events = publisher
	}

	if cfg.Seed.OnStartup {
		seeded, err := seed.Load(s.ctx, s.storage, time.Now())
		if err != nil {
			return fmt.Errorf("seed storage: %w", err)
		}
		if seeded {
			s.logger.Info("seeded storage with sample data")
		}
	}

	if cfg.Telemetry.Tracing {
		opts := telemetry.TracerOptionsFromConfig(cfg.Telemetry)
		opts.Writer = s.traceOut
		shutdown, err := telemetry.InitTracer(opts, s.logger)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		s.tracerShutdown = shutdown
	}

	metrics, err := telemetry.NewMetrics(s.registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	s.executor = pipeline.NewExecutor(s.storage,
		pipeline.WithLogger(s.logger),
		pipeline.WithMetrics(metrics),
		pipeline.WithEventPublisher(s.events),
	)

	s.server = server.New(cfg.Server, cfg.RateLimit, s.logger)
	transport.NewHandler(s.storage, s.executor,
		transport.WithMetricsHandler(metrics.Handler()),
		transport.WithLogger(s.logger),
	).Mount(s.server.Router)

	ln := s.listener
	if ln == nil {
		ln, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
		if err != nil {
			return fmt.Errorf("listen on port %d: %w", cfg.Server.Port, err)
		}
	}
	s.addr = ln.Addr()

	s.serveErr = make(chan error, 1)
	go func() {
		s.serveErr <- s.server.Serve(ln)
	}()

	// Watch for config changes
	go s.watchConfig()

	s.started = true
	s.logger.Info("service started",
		slog.String("addr", s.addr.String()),
		slog.String("storage", cfg.Storage.Type))

	return nil
}

// abortStart releases what a failed Start acquired.
func (s *Service) abortStart() {
	s.cancel()
	if s.ownsStorage && s.storage != nil {
		s.storage.Close()
		s.storage = nil
		s.ownsStorage = false
	}
	if s.tracerShutdown != nil {
		s.tracerShutdown(context.Background())
		s.tracerShutdown = nil
	}
	s.server = nil
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.logger.Info("shutting down service")

	if s.cancel != nil {
		s.cancel()
	}

	var errs []error

	// Stop HTTP server
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		if err := <-s.serveErr; err != nil {
			errs = append(errs, err)
		}
		s.server = nil
	}

	// Close resources
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			s.logger.Error("failed to close events", slog.String("error", err.Error()))
		}
	}

	if s.storage != nil && s.ownsStorage {
		if err := s.storage.Close(); err != nil {
			s.logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
		s.storage = nil
		s.ownsStorage = false
	}

	if s.config != nil {
		if err := s.config.Close(); err != nil {
			s.logger.Error("failed to close config", slog.String("error", err.Error()))
		}
	}

	if s.tracerShutdown != nil {
		if err := s.tracerShutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}

	s.started = false
	s.stopped = true
	s.logger.Info("service shutdown complete")
	return errors.Join(errs...)
}

// Addr returns the address the HTTP server listens on, or nil before Start.
func (s *Service) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Agent returns the action pipeline, or nil before Start.
func (s *Service) Agent() ports.ActionHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.executor == nil {
		return nil
	}
	return s.executor
}

// Config returns the active configuration, or nil before Start.
func (s *Service) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// watchConfig watches for config changes and reloads.
func (s *Service) watchConfig() {
	onChange := func(newCfg *config.Config) {
		s.logger.Info("config changed, reloading")
		s.reload(newCfg)
	}

	if err := s.config.Watch(s.ctx, onChange); err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("config watch failed", slog.String("error", err.Error()))
		}
	}
}

// reload applies the settings that can change without a restart: the log
// level and the rate limit. Other changes are logged and ignored.
func (s *Service) reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil || s.server == nil {
		return
	}

	if cfg.Server.Port != s.cfg.Server.Port || cfg.Storage != s.cfg.Storage {
		s.logger.Warn("server and storage changes take effect after restart")
	}

	s.applyLogLevel(cfg)
	s.server.RateLimiter().Update(cfg.RateLimit)

	s.cfg.Logging = cfg.Logging
	s.cfg.RateLimit = cfg.RateLimit

	s.logger.Info("reload complete",
		slog.String("log_level", cfg.Logging.Level),
		slog.Bool("rate_limit", cfg.RateLimit.Enabled))
}

func (s *Service) applyLogLevel(cfg *config.Config) {
	if s.level != nil {
		s.level.Set(cfg.Logging.SlogLevel())
	}
}
