package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Adapter { return NewDuckDB(logger) })
}

// DuckDB executes statements against an embedded DuckDB database.
type DuckDB struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
}

// NewDuckDB creates an unconnected DuckDB adapter.
func NewDuckDB(logger *slog.Logger) *DuckDB {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDB{logger: logger}
}

// Connect opens the database file, or an in-memory database when the
// path is empty or ":memory:".
func (d *DuckDB) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	d.db = db
	d.cfg = cfg
	d.logger.Debug("connected to duckdb", "path", path)
	return nil
}

// Close closes the connection.
func (d *DuckDB) Close() error {
	if d.db != nil {
		d.logger.Debug("closing duckdb connection")
		return d.db.Close()
	}
	return nil
}

// Exec executes a statement that returns no rows.
func (d *DuckDB) Exec(ctx context.Context, sqlStr string) error {
	if d.db == nil {
		return ErrNotConnected
	}
	if _, err := d.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement and materializes every returned row.
func (d *DuckDB) Query(ctx context.Context, sqlStr string) (*Result, error) {
	if d.db == nil {
		return nil, ErrNotConnected
	}

	rows, err := d.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	res.RowCount = int64(len(res.Rows))
	return res, nil
}

// TableExists checks information_schema for schema.table,
// case-insensitively; Snowflake-style projects upper-case identifiers
// while DuckDB keeps them as written.
func (d *DuckDB) TableExists(ctx context.Context, schema, table string) (bool, error) {
	if d.db == nil {
		return false, ErrNotConnected
	}

	const query = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE lower(table_schema) = lower(?) AND lower(table_name) = lower(?)
	`
	var n int64
	if err := d.db.QueryRowContext(ctx, query, schema, table).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return n > 0, nil
}

// EnsureSchema creates the schema when missing.
func (d *DuckDB) EnsureSchema(ctx context.Context, schema string) error {
	if d.db == nil {
		return ErrNotConnected
	}
	if schema == "" || strings.EqualFold(schema, "main") {
		return nil
	}
	return d.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
}

// LoadCSV creates or replaces table from a CSV file, letting DuckDB
// infer column types.
func (d *DuckDB) LoadCSV(ctx context.Context, table, filePath string) error {
	if d.db == nil {
		return ErrNotConnected
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		table, absPath,
	)
	if err := d.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to load CSV: %w", err)
	}
	return nil
}

// Name returns "duckdb".
func (d *DuckDB) Name() string { return "duckdb" }

var _ Adapter = (*DuckDB)(nil)
