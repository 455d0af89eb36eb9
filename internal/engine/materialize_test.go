package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

func testModel(mat core.Materialization) *core.Model {
	return &core.Model{
		Name: "orders", Database: "snowduck", Schema: "main",
		Materialized: mat,
	}
}

func TestBuildDDL_View(t *testing.T) {
	ddl := BuildDDL(testModel(core.MaterializationView), "SELECT 1", false, false)
	require.Len(t, ddl, 1)
	assert.Equal(t, "CREATE OR REPLACE VIEW snowduck.main.orders AS SELECT 1", ddl[0])
}

func TestBuildDDL_TableIsAlwaysDropThenCreate(t *testing.T) {
	ddl := BuildDDL(testModel(core.MaterializationTable), "SELECT 1", true, false)
	require.Len(t, ddl, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS snowduck.main.orders", ddl[0])
	assert.Equal(t, "CREATE TABLE snowduck.main.orders AS SELECT 1", ddl[1])

	for _, stmt := range ddl {
		assert.NotContains(t, stmt, "CREATE OR REPLACE TABLE")
	}
}

func TestBuildDDL_IncrementalVariants(t *testing.T) {
	m := testModel(core.MaterializationIncremental)

	// Missing target behaves like a fresh table build.
	fresh := BuildDDL(m, "SELECT 1", false, false)
	assert.Equal(t, BuildDDL(testModel(core.MaterializationTable), "SELECT 1", false, false), fresh)

	// Full refresh matches the fresh shape even when the target exists.
	assert.Equal(t, fresh, BuildDDL(m, "SELECT 1", true, true))

	// Existing target without a key appends.
	ddl := BuildDDL(m, "SELECT 1", true, false)
	require.Len(t, ddl, 1)
	assert.Equal(t, "INSERT INTO snowduck.main.orders SELECT 1", ddl[0])

	// With a unique key: delete matching rows, then insert.
	m.Meta = map[string]any{"unique_key": "order_id"}
	ddl = BuildDDL(m, "SELECT 1", true, false)
	require.Len(t, ddl, 2)
	assert.Equal(t,
		"DELETE FROM snowduck.main.orders WHERE order_id IN (SELECT order_id FROM (SELECT 1) src)",
		ddl[0])
	assert.Equal(t, "INSERT INTO snowduck.main.orders SELECT 1", ddl[1])
}

func TestBuildDDL_Ephemeral(t *testing.T) {
	assert.Nil(t, BuildDDL(testModel(core.MaterializationEphemeral), "SELECT 1", false, false))
}

func TestBuildDDL_UnhandledKindFallsBackToTable(t *testing.T) {
	ddl := BuildDDL(testModel(core.MaterializationSnapshot), "SELECT 1", false, false)
	require.Len(t, ddl, 2)
	assert.True(t, strings.HasPrefix(ddl[0], "DROP TABLE IF EXISTS"))
}

func TestBuildDDL_AliasShapesRelation(t *testing.T) {
	m := testModel(core.MaterializationTable)
	m.Alias = "orders_final"
	ddl := BuildDDL(m, "SELECT 1", false, false)
	assert.Contains(t, ddl[1], "CREATE TABLE snowduck.main.orders_final AS")
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements("DROP TABLE IF EXISTS t; CREATE TABLE t AS SELECT 1")
	require.Len(t, stmts, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS t", stmts[0])
	assert.Equal(t, "CREATE TABLE t AS SELECT 1", stmts[1])
}

func TestSplitStatements_QuotesAndComments(t *testing.T) {
	stmts := SplitStatements("SELECT 'a;b' AS v; SELECT 1 -- trailing; note")
	require.Len(t, stmts, 2)
	assert.Equal(t, "SELECT 'a;b' AS v", stmts[0])

	stmts = SplitStatements("SELECT 'it''s;fine'")
	require.Len(t, stmts, 1)

	stmts = SplitStatements("SELECT /* a;b */ 1; SELECT 2")
	require.Len(t, stmts, 2)

	assert.Empty(t, SplitStatements("  ;  ; "))
}
