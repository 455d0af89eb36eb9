package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

func timestampSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Name: "customers_snapshot", Database: "snowduck", Schema: "snapshots",
		Strategy: core.StrategyTimestamp, UniqueKey: "id", UpdatedAt: "updated_at",
		RawSQL: "SELECT * FROM raw.customers",
	}
}

func TestValidateSnapshot(t *testing.T) {
	s := timestampSnapshot()
	assert.NoError(t, validateSnapshot(s))

	s.UniqueKey = ""
	assert.Error(t, validateSnapshot(s))

	s = timestampSnapshot()
	s.UpdatedAt = ""
	assert.Error(t, validateSnapshot(s))

	s = timestampSnapshot()
	s.Strategy = core.StrategyCheck
	s.CheckCols = nil
	assert.Error(t, validateSnapshot(s))

	// check_cols='*' is rejected, not expanded.
	s.CheckCols = []string{"*"}
	assert.Error(t, validateSnapshot(s))

	s.CheckCols = []string{"name", "email"}
	assert.NoError(t, validateSnapshot(s))

	s.Strategy = core.SnapshotStrategy("drift")
	assert.Error(t, validateSnapshot(s))
}

func TestBuildSnapshotInit(t *testing.T) {
	stmt := buildSnapshotInit(timestampSnapshot(), "SELECT * FROM raw.customers")

	assert.True(t, strings.HasPrefix(stmt, "CREATE TABLE snowduck.snapshots.customers_snapshot AS "))
	// Every first-run row starts as an open version.
	assert.Contains(t, stmt, "CAST(NULL AS TIMESTAMP) AS valid_to")
	assert.Contains(t, stmt, "AS scd_id")
	// Timestamp strategy anchors valid_from on the source column.
	assert.Contains(t, stmt, "src.updated_at AS valid_from")
}

func TestBuildSnapshotUpdate_Timestamp(t *testing.T) {
	stmts := buildSnapshotUpdate(timestampSnapshot(), "SELECT * FROM raw.customers")
	require.Len(t, stmts, 2)

	// Close pass stamps valid_to on changed open versions only.
	assert.True(t, strings.HasPrefix(stmts[0], "UPDATE snowduck.snapshots.customers_snapshot SET valid_to = now()"))
	assert.Contains(t, stmts[0], "valid_to IS NULL")
	assert.Contains(t, stmts[0], "src.updated_at > t.updated_at")

	// Insert pass adds exactly the rows with no remaining open version.
	assert.True(t, strings.HasPrefix(stmts[1], "INSERT INTO snowduck.snapshots.customers_snapshot"))
	assert.Contains(t, stmts[1], "CAST(NULL AS TIMESTAMP) AS valid_to")
	assert.Contains(t, stmts[1], "WHERE t.id IS NULL")
}

func TestBuildSnapshotUpdate_Check(t *testing.T) {
	s := timestampSnapshot()
	s.Strategy = core.StrategyCheck
	s.UpdatedAt = ""
	s.CheckCols = []string{"name", "email"}

	stmts := buildSnapshotUpdate(s, "SELECT * FROM raw.customers")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "src.name IS DISTINCT FROM t.name OR src.email IS DISTINCT FROM t.email")
	assert.Contains(t, stmts[1], "now() AS valid_from")
}

func TestBuildSnapshotUpdate_HardDeletes(t *testing.T) {
	s := timestampSnapshot()
	s.HardDeletes = true

	stmts := buildSnapshotUpdate(s, "SELECT * FROM raw.customers")
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[2], "id NOT IN (SELECT id FROM (SELECT * FROM raw.customers) src)")
}

func TestEngine_RunSnapshots(t *testing.T) {
	e, fake := newTestEngine(t)

	e.Catalog().RegisterSnapshot(timestampSnapshot())

	// First run creates the table.
	summary, err := e.RunSnapshots(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, core.ResultSuccess, summary.Results[0].Status)
	require.Len(t, fake.execd, 1)
	assert.True(t, strings.HasPrefix(fake.execd[0], "CREATE TABLE "))

	// Second run closes and re-inserts instead of recreating.
	fake.tables["snapshots.customers_snapshot"] = true
	fake.execd = nil
	_, err = e.RunSnapshots(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, fake.execd, 2)
	assert.True(t, strings.HasPrefix(fake.execd[0], "UPDATE "))
	assert.True(t, strings.HasPrefix(fake.execd[1], "INSERT INTO "))
}

func TestEngine_RunSnapshotsInvalidConfig(t *testing.T) {
	e, fake := newTestEngine(t)

	s := timestampSnapshot()
	s.Strategy = core.StrategyCheck
	s.CheckCols = []string{"*"}
	e.Catalog().RegisterSnapshot(s)

	summary, err := e.RunSnapshots(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, core.ResultError, summary.Results[0].Status)
	assert.Empty(t, fake.execd)
}
