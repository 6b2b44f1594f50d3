package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tjfontaine/movi-transport-agent/internal/adapters/config/static"
	"github.com/tjfontaine/movi-transport-agent/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/memory"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/sqldb"
)

// Option is a functional option for configuring a Service.
type Option func(*Service) error

// WithFileConfig uses file-based configuration with hot-reload (default).
// The path should point to a config.yaml file that will be watched for
// changes. A missing file falls back to environment variables and defaults.
func WithFileConfig(path string) Option {
	return func(s *Service) error {
		if path == "" {
			return fmt.Errorf("config path cannot be empty")
		}
		s.configPath = path
		return nil
	}
}

// WithConfig uses a fixed configuration built in code.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) error {
		s.config = static.NewProvider(cfg)
		return nil
	}
}

// WithConfigProvider sets a custom config provider.
func WithConfigProvider(provider ports.ConfigProvider) Option {
	return func(s *Service) error {
		s.config = provider
		return nil
	}
}

// WithSQLite uses SQLite storage at path.
func WithSQLite(path string) Option {
	return func(s *Service) error {
		store, err := sqlite.NewProvider(path)
		if err != nil {
			return fmt.Errorf("create sqlite storage: %w", err)
		}
		s.storage = store
		s.ownsStorage = true
		return nil
	}
}

// WithDatabase uses a SQL database opened through driver. The driver must
// be linked into the binary.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) error {
		store, err := sqldb.New(sqldb.Config{Driver: driver, DSN: dsn})
		if err != nil {
			return fmt.Errorf("create %s storage: %w", driver, err)
		}
		s.storage = store
		s.ownsStorage = true
		return nil
	}
}

// WithMemoryStore keeps all data in process memory.
func WithMemoryStore() Option {
	return func(s *Service) error {
		s.storage = memory.New()
		s.ownsStorage = true
		return nil
	}
}

// WithStorageProvider sets a custom storage provider. The caller keeps
// ownership and must close it.
func WithStorageProvider(provider ports.StorageProvider) Option {
	return func(s *Service) error {
		s.storage = provider
		s.ownsStorage = false
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// WithLogLevel lets the service apply logging.level from configuration,
// including on reload, to a logger built over level.
func WithLogLevel(level *slog.LevelVar) Option {
	return func(s *Service) error {
		s.level = level
		return nil
	}
}

// WithEventPublisher sets a custom event publisher.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) error {
		s.events = publisher
		return nil
	}
}

// WithMetricsRegistry registers the service metrics on reg instead of a
// private registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Service) error {
		s.registry = reg
		return nil
	}
}

// WithListener serves HTTP on ln instead of listening on server.port.
func WithListener(ln net.Listener) Option {
	return func(s *Service) error {
		s.listener = ln
		return nil
	}
}

// WithTraceOutput sets where exported spans are written when tracing is
// enabled, overriding telemetry.trace_output.
func WithTraceOutput(w io.Writer) Option {
	return func(s *Service) error {
		s.traceOut = w
		return nil
	}
}
