package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DuckDBRegistered(t *testing.T) {
	assert.Contains(t, List(), "duckdb")

	a, err := New(Config{Type: "duckdb"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", a.Name())
}

func TestRegistry_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
	assert.Contains(t, unknown.Available, "duckdb")
}

func TestRegistry_MissingType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestDuckDB_NotConnected(t *testing.T) {
	d := NewDuckDB(nil)

	assert.ErrorIs(t, d.Exec(context.Background(), "SELECT 1"), ErrNotConnected)
	_, err := d.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = d.TableExists(context.Background(), "main", "t")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, d.Close())
}
