// Package sqlite provides the SQLite storage adapter for the transport backend.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
	"github.com/tjfontaine/movi-transport-agent/internal/storage/sqldb"
)

// Provider implements ports.StorageProvider using SQLite.
// It wraps the sqldb implementation.
type Provider struct {
	*sqldb.Store
}

// NewProvider creates a new SQLite storage provider. For file-backed
// databases the parent directory is created if missing.
func NewProvider(path string) (*Provider, error) {
	if dir := fileDir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := sqldb.NewSQLite(path)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Store: store,
	}, nil
}

// fileDir returns the directory to create for path, or "" for in-memory
// and URI DSNs.
func fileDir(path string) string {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

// Ensure Provider implements ports.StorageProvider at compile time.
var _ ports.StorageProvider = (*Provider)(nil)
