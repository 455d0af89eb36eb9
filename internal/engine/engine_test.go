package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowduck-labs/snowduck/internal/adapter"
	"github.com/snowduck-labs/snowduck/internal/testutil"
	"github.com/snowduck-labs/snowduck/pkg/core"
)

// fakeAdapter records executed statements and serves canned query
// results, so run tests can assert on exact statement shapes without a
// live database.
type fakeAdapter struct {
	execd   []string
	queried []string

	// failOn makes Exec fail for any statement containing the substring.
	failOn string
	// tables marks schema.table names that TableExists reports.
	tables map[string]bool
	// results maps a substring to a canned query result.
	results map[string]*adapter.Result
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{tables: make(map[string]bool), results: make(map[string]*adapter.Result)}
}

func (f *fakeAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (f *fakeAdapter) Close() error                                  { return nil }
func (f *fakeAdapter) Name() string                                  { return "fake" }

func (f *fakeAdapter) Exec(_ context.Context, sql string) error {
	f.execd = append(f.execd, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return fmt.Errorf("forced failure on %q", f.failOn)
	}
	return nil
}

func (f *fakeAdapter) Query(_ context.Context, sql string) (*adapter.Result, error) {
	f.queried = append(f.queried, sql)
	for sub, res := range f.results {
		if strings.Contains(sql, sub) {
			return res, nil
		}
	}
	return &adapter.Result{}, nil
}

func (f *fakeAdapter) TableExists(_ context.Context, schema, table string) (bool, error) {
	return f.tables[schema+"."+table], nil
}

func (f *fakeAdapter) EnsureSchema(_ context.Context, schema string) error {
	return nil
}

func (f *fakeAdapter) LoadCSV(_ context.Context, table, path string) error {
	f.execd = append(f.execd, "LOADCSV "+table)
	return nil
}

// newTestEngine builds an engine wired to a fake backend and an
// in-memory history store.
func newTestEngine(t *testing.T) (*Engine, *fakeAdapter) {
	t.Helper()
	e, err := New(Config{StatePath: ":memory:", Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	fake := newFakeAdapter()
	e.db = fake
	e.dbConnected = true
	return e, fake
}

func registerModel(e *Engine, name, sql string, mat core.Materialization) *core.Model {
	m := &core.Model{
		Name:         name,
		Database:     "snowduck",
		Schema:       "main",
		Materialized: mat,
		RawSQL:       sql,
	}
	e.Catalog().RegisterModel(m)
	return m
}

func TestEngine_RunBuildsInDependencyOrder(t *testing.T) {
	e, fake := newTestEngine(t)

	registerModel(e, "stg_orders", "SELECT 1 AS id", core.MaterializationTable)
	registerModel(e, "fct_orders", "SELECT * FROM {{ ref('stg_orders') }}", core.MaterializationTable)

	summary, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	assert.Equal(t, "model.stg_orders", summary.Results[0].NodeID)
	assert.Equal(t, "model.fct_orders", summary.Results[1].NodeID)
	for _, r := range summary.Results {
		assert.Equal(t, core.ResultSuccess, r.Status)
	}

	// Table builds are drop + create, never CREATE OR REPLACE TABLE.
	require.GreaterOrEqual(t, len(fake.execd), 4)
	assert.Equal(t, "DROP TABLE IF EXISTS snowduck.main.stg_orders", fake.execd[0])
	assert.True(t, strings.HasPrefix(fake.execd[1], "CREATE TABLE snowduck.main.stg_orders AS "))

	// The downstream ref resolved to the physical relation.
	assert.Contains(t, fake.execd[3], "FROM snowduck.main.stg_orders")
}

func TestEngine_RunContinuesPastFailingNode(t *testing.T) {
	e, fake := newTestEngine(t)
	// Fail only the broken node's own build; its compiled SQL appears
	// inside downstream statements too.
	fake.failOn = "CREATE TABLE snowduck.main.broken_model"

	registerModel(e, "a_ok", "SELECT 1", core.MaterializationTable)
	registerModel(e, "broken_model", "SELECT * FROM {{ ref('a_ok') }}", core.MaterializationTable)
	registerModel(e, "downstream", "SELECT * FROM {{ ref('broken_model') }}", core.MaterializationTable)

	summary, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)

	byNode := make(map[string]core.RunResult)
	for _, r := range summary.Results {
		byNode[r.NodeID] = r
	}
	assert.Equal(t, core.ResultSuccess, byNode["model.a_ok"].Status)
	assert.Equal(t, core.ResultError, byNode["model.broken_model"].Status)
	// Deliberate non-abort policy: downstream still ran.
	assert.Equal(t, core.ResultSuccess, byNode["model.downstream"].Status)

	success, errored, skipped := summary.Counts()
	assert.Equal(t, 2, success)
	assert.Equal(t, 1, errored)
	assert.Equal(t, 0, skipped)
}

func TestEngine_RunSelection(t *testing.T) {
	e, fake := newTestEngine(t)

	registerModel(e, "a", "SELECT 1", core.MaterializationTable)
	registerModel(e, "b", "SELECT * FROM {{ ref('a') }}", core.MaterializationTable)
	registerModel(e, "c", "SELECT * FROM {{ ref('b') }}", core.MaterializationTable)

	summary, err := e.Run(context.Background(), RunOptions{Select: []string{"+b"}})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "model.a", summary.Results[0].NodeID)
	assert.Equal(t, "model.b", summary.Results[1].NodeID)

	for _, stmt := range fake.execd {
		assert.NotContains(t, stmt, " c ")
	}
}

func TestEngine_EphemeralIsSkipped(t *testing.T) {
	e, fake := newTestEngine(t)

	registerModel(e, "inline_only", "SELECT 1", core.MaterializationEphemeral)

	summary, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, core.ResultSkipped, summary.Results[0].Status)
	assert.Empty(t, fake.execd)
}

func TestEngine_EphemeralRefInlinedIntoConsumer(t *testing.T) {
	e, fake := newTestEngine(t)

	registerModel(e, "int_base", "SELECT 1 AS id", core.MaterializationEphemeral)
	registerModel(e, "consumer", "SELECT * FROM {{ ref('int_base') }}", core.MaterializationTable)

	summary, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 2)

	// The consumer selects from the inlined subquery; no statement may
	// name the ephemeral relation, which nothing ever creates.
	require.Len(t, fake.execd, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS snowduck.main.consumer", fake.execd[0])
	assert.Equal(t, "CREATE TABLE snowduck.main.consumer AS SELECT * FROM (SELECT 1 AS id)", fake.execd[1])
	for _, stmt := range fake.execd {
		assert.NotContains(t, stmt, "main.int_base")
	}
}

func TestEngine_IncrementalExistingUsesUpsert(t *testing.T) {
	e, fake := newTestEngine(t)
	fake.tables["main.events"] = true

	m := registerModel(e, "events", "SELECT * FROM src", core.MaterializationIncremental)
	m.Meta = map[string]any{"unique_key": "id"}

	summary, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, core.ResultSuccess, summary.Results[0].Status)

	require.Len(t, fake.execd, 2)
	assert.True(t, strings.HasPrefix(fake.execd[0], "DELETE FROM snowduck.main.events WHERE id IN"))
	assert.True(t, strings.HasPrefix(fake.execd[1], "INSERT INTO snowduck.main.events "))
}

func TestEngine_IncrementalFullRefreshRebuilds(t *testing.T) {
	e, fake := newTestEngine(t)
	fake.tables["main.events"] = true

	m := registerModel(e, "events", "SELECT * FROM src", core.MaterializationIncremental)
	m.Meta = map[string]any{"unique_key": "id"}

	_, err := e.Run(context.Background(), RunOptions{FullRefresh: true})
	require.NoError(t, err)

	require.Len(t, fake.execd, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS snowduck.main.events", fake.execd[0])
	assert.True(t, strings.HasPrefix(fake.execd[1], "CREATE TABLE snowduck.main.events AS "))
}

func TestEngine_RunRecordsHistory(t *testing.T) {
	e, _ := newTestEngine(t)

	registerModel(e, "a", "SELECT 1", core.MaterializationTable)

	_, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	runs, err := e.Store().ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.ResultSuccess, runs[0].Status)

	results, err := e.Store().ResultsForRun(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "model.a", results[0].NodeID)
}

func TestEngine_CompileModelPreview(t *testing.T) {
	e, _ := newTestEngine(t)

	registerModel(e, "base", "SELECT 1 AS id", core.MaterializationView)
	registerModel(e, "derived", "SELECT NVL(x, 0) FROM {{ ref('base') }}", core.MaterializationView)

	sql, err := e.CompileModel("derived", false)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(x, 0) FROM snowduck.main.base", sql)

	_, err = e.CompileModel("missing", false)
	assert.Error(t, err)
}

func TestEngine_ViewBuild(t *testing.T) {
	e, fake := newTestEngine(t)

	registerModel(e, "v", "SELECT 1", core.MaterializationView)

	_, err := e.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, fake.execd, 1)
	assert.Equal(t, "CREATE OR REPLACE VIEW snowduck.main.v AS SELECT 1", fake.execd[0])
}
