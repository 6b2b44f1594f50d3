// Package dialect provides database dialect abstractions for the SQL store.
package dialect

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect represents a SQL database dialect.
type Dialect interface {
	// Name returns the dialect name (e.g., "sqlite", "postgres")
	Name() string

	// DriverName returns the database/sql driver name to use
	DriverName() string

	// Rebind converts ? placeholders to the dialect's format.
	Rebind(query string) string

	// AutoIncrementClause returns the column definition for an integer
	// surrogate primary key.
	AutoIncrementClause() string

	// BooleanType returns the SQL type for boolean values
	BooleanType() string

	// FalseLiteral returns the literal used for a false column default
	FalseLiteral() string

	// TimestampType returns the SQL type for timestamps
	TimestampType() string

	// RealType returns the SQL type for floating point coordinates
	RealType() string

	// PragmaStatements returns dialect-specific initialization statements
	PragmaStatements() []string

	// MaxOpenConns limits the pool size; 0 means unlimited.
	MaxOpenConns() int
}

// DialectType represents supported database types
type DialectType string

const (
	SQLite   DialectType = "sqlite"
	Postgres DialectType = "postgres"
)

// New creates a new Dialect based on the dialect type
func New(dialectType DialectType) (Dialect, error) {
	switch dialectType {
	case SQLite:
		return &sqliteDialect{}, nil
	case Postgres:
		return &postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialectType)
	}
}

// FromDriverName returns the dialect for a given driver name
func FromDriverName(driverName string) (Dialect, error) {
	switch strings.ToLower(driverName) {
	case "sqlite", "sqlite3":
		return &sqliteDialect{}, nil
	case "postgres", "pgx":
		return &postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driverName)
	}
}

type sqliteDialect struct{}

func (d *sqliteDialect) Name() string               { return "sqlite" }
func (d *sqliteDialect) DriverName() string         { return "sqlite" }
func (d *sqliteDialect) Rebind(query string) string { return query }
func (d *sqliteDialect) AutoIncrementClause() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}
func (d *sqliteDialect) BooleanType() string   { return "INTEGER" }
func (d *sqliteDialect) FalseLiteral() string  { return "0" }
func (d *sqliteDialect) TimestampType() string { return "TIMESTAMP" }
func (d *sqliteDialect) RealType() string      { return "REAL" }

func (d *sqliteDialect) PragmaStatements() []string {
	return []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
}

// A single connection serialises writers and keeps :memory: databases
// shared across the pool.
func (d *sqliteDialect) MaxOpenConns() int { return 1 }

type postgresDialect struct{}

func (d *postgresDialect) Name() string       { return "postgres" }
func (d *postgresDialect) DriverName() string { return "pgx" }

func (d *postgresDialect) Rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func (d *postgresDialect) AutoIncrementClause() string { return "BIGSERIAL PRIMARY KEY" }
func (d *postgresDialect) BooleanType() string         { return "BOOLEAN" }
func (d *postgresDialect) FalseLiteral() string        { return "FALSE" }
func (d *postgresDialect) TimestampType() string       { return "TIMESTAMP WITH TIME ZONE" }
func (d *postgresDialect) RealType() string            { return "DOUBLE PRECISION" }
func (d *postgresDialect) PragmaStatements() []string  { return nil }

func (d *postgresDialect) MaxOpenConns() int { return 0 }
