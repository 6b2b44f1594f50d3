package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tjfontaine/movi-transport-agent/internal/core/ports"
)

func TestNewProvider(t *testing.T) {
	// Use in-memory SQLite for testing
	provider, err := NewProvider(":memory:")
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	if provider == nil {
		t.Fatal("NewProvider returned nil")
	}

	// Verify it implements StorageProvider
	var _ ports.StorageProvider = provider

	// Clean up
	provider.Close()
}

func TestNewProvider_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "movi.db")

	provider, err := NewProvider(path)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer provider.Close()

	if _, err := provider.CreateStop(context.Background(), "Campus Gate", 1, 2); err != nil {
		t.Fatalf("CreateStop() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestNewProvider_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A regular file where the directory should be
	if _, err := NewProvider(filepath.Join(blocker, "sub", "test.db")); err == nil {
		t.Error("Expected error for invalid path")
	}
}

func TestFileDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{":memory:", ""},
		{"file:memdb1?mode=memory&cache=shared", ""},
		{"movi.db", ""},
		{"./data/movi.db", "data"},
		{"/var/lib/movi/movi.db", "/var/lib/movi"},
	}
	for _, tt := range tests {
		if got := fileDir(tt.path); got != tt.want {
			t.Errorf("fileDir(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestProvider_Close(t *testing.T) {
	provider, err := NewProvider(":memory:")
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}

	if err := provider.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
