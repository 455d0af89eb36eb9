package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDuckDB(t *testing.T) *DuckDB {
	t.Helper()
	d := NewDuckDB(nil)
	require.NoError(t, d.Connect(context.Background(), Config{Type: "duckdb", Path: ":memory:"}))
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDuckDB_ExecAndQuery(t *testing.T) {
	d := newTestDuckDB(t)
	ctx := context.Background()

	require.NoError(t, d.Exec(ctx, "CREATE TABLE t (id INTEGER, name VARCHAR)"))
	require.NoError(t, d.Exec(ctx, "INSERT INTO t VALUES (1, 'a'), (2, 'b')"))

	res, err := d.Query(ctx, "SELECT id, name FROM t ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, int64(2), res.RowCount)
	require.Len(t, res.Rows, 2)
}

func TestDuckDB_TableExists(t *testing.T) {
	d := newTestDuckDB(t)
	ctx := context.Background()

	exists, err := d.TableExists(ctx, "main", "customers")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, d.Exec(ctx, "CREATE TABLE customers (id INTEGER)"))

	exists, err = d.TableExists(ctx, "main", "customers")
	require.NoError(t, err)
	assert.True(t, exists)

	// Identifier matching is case-insensitive.
	exists, err = d.TableExists(ctx, "MAIN", "CUSTOMERS")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDuckDB_EnsureSchema(t *testing.T) {
	d := newTestDuckDB(t)
	ctx := context.Background()

	require.NoError(t, d.EnsureSchema(ctx, "STAGING"))
	require.NoError(t, d.Exec(ctx, "CREATE TABLE STAGING.t (id INTEGER)"))

	// Idempotent.
	require.NoError(t, d.EnsureSchema(ctx, "STAGING"))
	// Default schema is a no-op.
	require.NoError(t, d.EnsureSchema(ctx, "main"))
}

func TestDuckDB_LoadCSV(t *testing.T) {
	d := newTestDuckDB(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("code,name\nDE,Germany\nFR,France\n"), 0o644))

	require.NoError(t, d.LoadCSV(ctx, "codes", path))

	res, err := d.Query(ctx, "SELECT COUNT(*) FROM codes")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}
