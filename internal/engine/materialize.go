package engine

// materialize.go - DDL generation per materialization kind. Pure
// functions over the compiled, translated SQL; execution happens in
// run.go.

import (
	"fmt"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// BuildDDL returns the statement sequence that materializes the model.
// tableExists and fullRefresh only matter for incremental models. An
// empty slice means nothing to execute (ephemeral).
func BuildDDL(m *core.Model, sql string, tableExists, fullRefresh bool) []string {
	rel := m.RelationName()

	switch m.Materialized {
	case core.MaterializationView:
		return []string{fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", rel, sql)}

	case core.MaterializationTable:
		return tableStatements(rel, sql)

	case core.MaterializationIncremental:
		// First build and forced rebuilds are plain table builds.
		if fullRefresh || !tableExists {
			return tableStatements(rel, sql)
		}
		if key := m.UniqueKey(); key != "" {
			// Delete-then-insert upsert emulation.
			return []string{
				fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM (%s) src)", rel, key, key, sql),
				fmt.Sprintf("INSERT INTO %s %s", rel, sql),
			}
		}
		return []string{fmt.Sprintf("INSERT INTO %s %s", rel, sql)}

	case core.MaterializationEphemeral:
		// Ephemeral models exist only to be inlined elsewhere.
		return nil

	default:
		return tableStatements(rel, sql)
	}
}

// tableStatements always drops then recreates. Some target engines
// forbid CREATE OR REPLACE TABLE ... AS SELECT, so the single-statement
// form is never emitted.
func tableStatements(rel, sql string) []string {
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", rel),
		fmt.Sprintf("CREATE TABLE %s AS %s", rel, sql),
	}
}
