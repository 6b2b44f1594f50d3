// Package storage selects the transport store described by configuration.
package storage

import (
	"fmt"

	sqliteadapter "github.com/tjfontaine/movi-transport-agent/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/pkg/config"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/memory"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/sqldb"
)

// Open returns the configured storage provider. A database driver, when
// set, takes precedence over the storage type.
func Open(cfg config.StorageConfig) (ports.StorageProvider, error) {
	if cfg.Database.Driver != "" {
		store, err := sqldb.New(sqldb.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
		if err != nil {
			return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
		}
		return store, nil
	}

	switch cfg.Type {
	case "memory":
		return memory.New(), nil
	case "sqlite", "":
		provider, err := sqliteadapter.NewProvider(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
