package engine

// snapshots.go - SCD Type-2 snapshot execution. Changed rows get their
// open version closed (valid_to stamped) and a fresh open version
// inserted; unchanged rows are left alone.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snowduck-labs/snowduck/internal/compile"
	"github.com/snowduck-labs/snowduck/pkg/core"
	"github.com/snowduck-labs/snowduck/pkg/translate"
)

// RunSnapshots executes every registered snapshot, or only the named
// ones when names is non-empty. Failures never stop the loop.
func (e *Engine) RunSnapshots(ctx context.Context, names []string) (*core.RunSummary, error) {
	if err := e.ensureConnected(ctx); err != nil {
		return nil, err
	}

	summary := &core.RunSummary{
		InvocationID: uuid.New().String(),
		StartedAt:    nowUTC(),
	}
	cctx := e.compileContext(summary.InvocationID, false)
	cctx.RunStartedAt = summary.StartedAt

	snaps := e.catalog.Snapshots()
	if len(names) > 0 {
		keep := make(map[string]struct{}, len(names))
		for _, n := range names {
			keep[n] = struct{}{}
		}
		var filtered []*core.Snapshot
		for _, s := range snaps {
			if _, ok := keep[s.Name]; ok {
				filtered = append(filtered, s)
			}
		}
		snaps = filtered
	}

	e.logger.Info("starting snapshots", "invocation_id", summary.InvocationID, "snapshots", len(snaps))

	run, err := e.store.CreateRun(e.target.Name)
	if err != nil {
		e.logger.Warn("run history unavailable", "error", err)
		run = nil
	}

	for _, s := range snaps {
		res := e.runSnapshot(ctx, cctx, s)
		summary.Results = append(summary.Results, res)
		if run != nil {
			if err := e.store.RecordResult(run.ID, res); err != nil {
				e.logger.Warn("failed to record result", "node", res.NodeID, "error", err)
			}
		}
	}

	_, errored, _ := summary.Counts()
	if run != nil {
		status, msg := core.ResultSuccess, ""
		if errored > 0 {
			status = core.ResultError
			msg = fmt.Sprintf("%d snapshot(s) failed", errored)
		}
		if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
			e.logger.Warn("failed to complete run record", "error", err)
		}
	}

	return summary, nil
}

func (e *Engine) runSnapshot(ctx context.Context, cctx *compile.Context, s *core.Snapshot) core.RunResult {
	start := nowUTC()
	res := core.RunResult{NodeID: "snapshot." + s.Name, StartedAt: start}

	fail := func(err error) core.RunResult {
		e.logger.Error("snapshot failed", "snapshot", s.Name, "error", err)
		res.Status = core.ResultError
		res.Message = err.Error()
		res.ExecutionMS = time.Since(start).Milliseconds()
		return res
	}

	if err := validateSnapshot(s); err != nil {
		return fail(err)
	}

	s.CompiledSQL = compile.Compile(s.RawSQL, nil, cctx)
	sql := translate.Translate(s.CompiledSQL)

	if err := e.db.EnsureSchema(ctx, s.Schema); err != nil {
		return fail(fmt.Errorf("ensure schema %s: %w", s.Schema, err))
	}

	exists, err := e.db.TableExists(ctx, s.Schema, s.Name)
	if err != nil {
		return fail(fmt.Errorf("check snapshot table: %w", err))
	}

	var stmts []string
	if !exists {
		stmts = []string{buildSnapshotInit(s, sql)}
	} else {
		stmts = buildSnapshotUpdate(s, sql)
	}

	for _, stmt := range stmts {
		if err := e.db.Exec(ctx, stmt); err != nil {
			return fail(fmt.Errorf("execute snapshot %s: %w", s.Name, err))
		}
	}

	e.logger.Debug("snapshot captured", "snapshot", s.Name, "first_run", !exists)

	res.Status = core.ResultSuccess
	res.Message = "snapshot captured"
	res.ExecutionMS = time.Since(start).Milliseconds()
	return res
}

func validateSnapshot(s *core.Snapshot) error {
	if s.UniqueKey == "" {
		return fmt.Errorf("snapshot %s has no unique_key", s.Name)
	}
	switch s.Strategy {
	case core.StrategyTimestamp:
		if s.UpdatedAt == "" {
			return fmt.Errorf("snapshot %s uses the timestamp strategy but has no updated_at", s.Name)
		}
	case core.StrategyCheck:
		if len(s.CheckCols) == 0 {
			return fmt.Errorf("snapshot %s uses the check strategy but lists no columns", s.Name)
		}
		for _, c := range s.CheckCols {
			if c == "*" {
				return fmt.Errorf("snapshot %s: check_cols='*' is not supported, list the columns", s.Name)
			}
		}
	default:
		return fmt.Errorf("snapshot %s has unknown strategy %q", s.Name, s.Strategy)
	}
	return nil
}

// scdIDExpr derives a stable version id from the key and the change
// marker.
func scdIDExpr(s *core.Snapshot) string {
	marker := "now()"
	if s.Strategy == core.StrategyTimestamp {
		marker = fmt.Sprintf("CAST(src.%s AS VARCHAR)", s.UpdatedAt)
	}
	return fmt.Sprintf("md5(CAST(src.%s AS VARCHAR) || '|' || %s)", s.UniqueKey, marker)
}

// validFromExpr is the version's start: the source's own updated_at for
// the timestamp strategy, the capture time otherwise.
func validFromExpr(s *core.Snapshot) string {
	if s.Strategy == core.StrategyTimestamp {
		return "src." + s.UpdatedAt
	}
	return "now()"
}

// buildSnapshotInit creates the snapshot table; every row starts as an
// open version (valid_to NULL).
func buildSnapshotInit(s *core.Snapshot, sql string) string {
	return fmt.Sprintf(
		"CREATE TABLE %s AS SELECT src.*, %s AS scd_id, %s AS valid_from, CAST(NULL AS TIMESTAMP) AS valid_to FROM (%s) src",
		s.RelationName(), scdIDExpr(s), validFromExpr(s), sql)
}

// buildSnapshotUpdate closes changed open versions, inserts new open
// versions for changed and new keys, and optionally closes rows that
// vanished from the source.
func buildSnapshotUpdate(s *core.Snapshot, sql string) []string {
	rel := s.RelationName()
	key := s.UniqueKey

	stmts := []string{
		// Close the open version of every changed row.
		fmt.Sprintf(
			"UPDATE %s SET valid_to = now() WHERE valid_to IS NULL AND %s IN "+
				"(SELECT src.%s FROM (%s) src JOIN %s t ON src.%s = t.%s "+
				"WHERE t.valid_to IS NULL AND (%s))",
			rel, key, key, sql, rel, key, key, changeCondition(s)),

		// Insert a fresh open version for changed and brand-new keys.
		// Changed keys no longer have an open version after the close
		// above, so the anti-join covers both.
		fmt.Sprintf(
			"INSERT INTO %s SELECT src.*, %s AS scd_id, %s AS valid_from, CAST(NULL AS TIMESTAMP) AS valid_to "+
				"FROM (%s) src LEFT JOIN %s t ON src.%s = t.%s AND t.valid_to IS NULL "+
				"WHERE t.%s IS NULL",
			rel, scdIDExpr(s), validFromExpr(s), sql, rel, key, key, key),
	}

	if s.HardDeletes {
		stmts = append(stmts, fmt.Sprintf(
			"UPDATE %s SET valid_to = now() WHERE valid_to IS NULL AND %s NOT IN (SELECT %s FROM (%s) src)",
			rel, key, key, sql))
	}
	return stmts
}

// changeCondition detects a changed row between source (src) and the
// open snapshot version (t).
func changeCondition(s *core.Snapshot) string {
	if s.Strategy == core.StrategyTimestamp {
		return fmt.Sprintf("src.%s > t.%s", s.UpdatedAt, s.UpdatedAt)
	}
	conds := make([]string, len(s.CheckCols))
	for i, c := range s.CheckCols {
		conds[i] = fmt.Sprintf("src.%s IS DISTINCT FROM t.%s", c, c)
	}
	return strings.Join(conds, " OR ")
}
