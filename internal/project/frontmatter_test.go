package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

func TestSplitFrontmatter(t *testing.T) {
	yamlPart, sqlPart, found := splitFrontmatter("/*---\nname: x\n---*/\nSELECT 1")
	assert.True(t, found)
	assert.Equal(t, "name: x", yamlPart)
	assert.Equal(t, "SELECT 1", sqlPart)

	_, sqlPart, found = splitFrontmatter("SELECT 1")
	assert.False(t, found)
	assert.Equal(t, "SELECT 1", sqlPart)
}

func TestParseSnapshotFile(t *testing.T) {
	content := `/*---
strategy: timestamp
unique_key: id
updated_at: updated_at
hard_deletes: true
---*/
SELECT * FROM {{ source('raw', 'customers') }}`

	s, err := parseSnapshotFile(content, "customers_snapshot", "snowduck")
	require.NoError(t, err)

	assert.Equal(t, "customers_snapshot", s.Name)
	assert.Equal(t, "snowduck", s.Database)
	assert.Equal(t, "snapshots", s.Schema)
	assert.Equal(t, core.StrategyTimestamp, s.Strategy)
	assert.Equal(t, "id", s.UniqueKey)
	assert.True(t, s.HardDeletes)
	assert.Equal(t, "SELECT * FROM {{ source('raw', 'customers') }}", s.RawSQL)
}

func TestParseSnapshotFile_RequiresConfigBlock(t *testing.T) {
	_, err := parseSnapshotFile("SELECT 1", "s", "snowduck")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config block")
}

func TestParseSingularTestFile(t *testing.T) {
	test, err := parseSingularTestFile("SELECT * FROM t WHERE amount < 0", "no_negative_amounts")
	require.NoError(t, err)
	assert.Equal(t, "no_negative_amounts", test.Name)
	assert.Equal(t, "test.no_negative_amounts", test.UniqueID)
	assert.Equal(t, core.TestKindSingular, test.Kind)
	assert.Equal(t, core.SeverityError, test.Severity)

	warn, err := parseSingularTestFile("/*---\nseverity: warn\n---*/\nSELECT 1", "stale")
	require.NoError(t, err)
	assert.Equal(t, core.SeverityWarn, warn.Severity)
	assert.Equal(t, "SELECT 1", warn.SQL)

	_, err = parseSingularTestFile("/*---\nseverity: shrug\n---*/\nSELECT 1", "x")
	assert.Error(t, err)
}

func TestRelationshipTarget(t *testing.T) {
	assert.Equal(t, "stg_customers", relationshipTarget("ref('stg_customers')"))
	assert.Equal(t, "stg_customers", relationshipTarget("stg_customers"))
}
