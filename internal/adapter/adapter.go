// Package adapter defines the execution backend contract and its DuckDB
// implementation. The run engine speaks only this interface, so tests can
// swap in a fake backend and assert on the exact statements they receive.
package adapter

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by any operation invoked before Connect.
var ErrNotConnected = errors.New("adapter: not connected")

// Config holds the connection settings for an execution backend.
type Config struct {
	// Type selects the registered adapter ("duckdb").
	Type string

	// Path is the database file for file-based backends; ":memory:" for
	// an in-memory database.
	Path string

	// Database is the logical database (catalog) name.
	Database string

	// Schema is the default schema.
	Schema string

	// Options carries driver-specific settings.
	Options map[string]string
}

// Result is the materialized outcome of one Query call. Exec paths carry
// only RowCount.
type Result struct {
	Columns  []string
	Rows     [][]any
	RowCount int64
}

// Adapter is the execution backend used by the run, test, seed and
// snapshot engines.
type Adapter interface {
	// Connect establishes the backend connection.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query runs a statement and materializes all returned rows.
	Query(ctx context.Context, sql string) (*Result, error)

	// TableExists reports whether schema.table exists.
	TableExists(ctx context.Context, schema, table string) (bool, error)

	// EnsureSchema creates the schema when missing.
	EnsureSchema(ctx context.Context, schema string) error

	// LoadCSV creates or replaces a table from a CSV file with inferred
	// column types.
	LoadCSV(ctx context.Context, table, filePath string) error

	// Name returns the adapter type name.
	Name() string
}
