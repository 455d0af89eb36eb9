package engine

// run.go - Run orchestration: selection, scheduling, per-node execution.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snowduck-labs/snowduck/internal/compile"
	"github.com/snowduck-labs/snowduck/pkg/core"
	"github.com/snowduck-labs/snowduck/pkg/translate"
)

// RunOptions selects and shapes one invocation.
type RunOptions struct {
	// Select and Exclude use the node-selection grammar; an empty Select
	// runs every model.
	Select  []string
	Exclude []string
	// FullRefresh rebuilds incremental models from scratch.
	FullRefresh bool
}

// Run executes the selected models in dependency order. Node failures
// are recorded and the run continues to the next node; the returned
// error covers only setup problems (connection, scheduling).
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*core.RunSummary, error) {
	if err := e.ensureConnected(ctx); err != nil {
		return nil, err
	}

	graph := e.BuildGraph()

	var selected []string
	if len(opts.Select) == 0 && len(opts.Exclude) == 0 {
		selected = graph.SelectAll()
	} else if len(opts.Select) == 0 {
		selected = graph.Select(graph.SelectAll(), opts.Exclude)
	} else {
		selected = graph.Select(opts.Select, opts.Exclude)
	}

	order, cyclic := graph.OrderSubset(selected)
	if len(cyclic) > 0 {
		e.logger.Warn("dependency cycle detected, appending unordered remainder", "models", cyclic)
		order = append(order, cyclic...)
	}

	summary := &core.RunSummary{
		InvocationID: uuid.New().String(),
		StartedAt:    nowUTC(),
	}
	cctx := e.compileContext(summary.InvocationID, opts.FullRefresh)
	cctx.RunStartedAt = summary.StartedAt

	e.logger.Info("starting run", "invocation_id", summary.InvocationID,
		"target", e.target.Name, "models", len(order))

	run, err := e.store.CreateRun(e.target.Name)
	if err != nil {
		e.logger.Warn("run history unavailable", "error", err)
		run = nil
	}

	for _, name := range order {
		m, ok := graph.Node(name)
		if !ok {
			continue
		}
		res := e.runModel(ctx, cctx, m, opts.FullRefresh)
		summary.Results = append(summary.Results, res)
		if run != nil {
			if err := e.store.RecordResult(run.ID, res); err != nil {
				e.logger.Warn("failed to record result", "node", res.NodeID, "error", err)
			}
		}
	}

	success, errored, skipped := summary.Counts()
	e.logger.Info("run finished", "invocation_id", summary.InvocationID,
		"success", success, "errored", errored, "skipped", skipped)

	if run != nil {
		status, msg := core.ResultSuccess, ""
		if errored > 0 {
			status = core.ResultError
			msg = fmt.Sprintf("%d node(s) failed", errored)
		}
		if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
			e.logger.Warn("failed to complete run record", "error", err)
		}
	}

	return summary, nil
}

// runModel executes one model and returns its single RunResult.
func (e *Engine) runModel(ctx context.Context, cctx *compile.Context, m *core.Model, fullRefresh bool) core.RunResult {
	start := nowUTC()
	m.Status = core.NodeStatusPending
	m.LastError = ""

	// Recompile fresh every run; vars and target may have changed since
	// registration.
	m.CompiledSQL = compile.Compile(m.RawSQL, m, cctx)
	sql := translate.Translate(m.CompiledSQL)

	if m.Materialized == core.MaterializationEphemeral {
		e.logger.Debug("skipping ephemeral model", "model", m.Name)
		return e.finishModel(m, core.RunResult{
			NodeID:    nodeID(m),
			Status:    core.ResultSkipped,
			Message:   "ephemeral models are only inlined, never built",
			StartedAt: start,
		})
	}

	if err := e.db.EnsureSchema(ctx, m.Schema); err != nil {
		return e.failModel(m, start, fmt.Errorf("ensure schema %s: %w", m.Schema, err))
	}

	exists := false
	if m.Materialized == core.MaterializationIncremental {
		var err error
		exists, err = e.db.TableExists(ctx, m.Schema, relationLeaf(m))
		if err != nil {
			return e.failModel(m, start, fmt.Errorf("check target table: %w", err))
		}
	}

	ddl := BuildDDL(m, sql, exists, fullRefresh)
	var stmts []string
	for _, d := range ddl {
		stmts = append(stmts, SplitStatements(d)...)
	}

	for _, stmt := range stmts {
		if err := e.db.Exec(ctx, stmt); err != nil {
			return e.failModel(m, start, fmt.Errorf("execute %s: %w", m.Name, err))
		}
	}

	m.RowsAffected = e.countRows(ctx, m)

	e.logger.Debug("model built", "model", m.Name,
		"materialized", m.Materialized.String(), "rows", m.RowsAffected)

	return e.finishModel(m, core.RunResult{
		NodeID:    nodeID(m),
		Status:    core.ResultSuccess,
		Message:   fmt.Sprintf("built as %s", m.Materialized),
		StartedAt: start,
	})
}

func (e *Engine) failModel(m *core.Model, start time.Time, err error) core.RunResult {
	e.logger.Error("model failed", "model", m.Name, "error", err)
	return e.finishModel(m, core.RunResult{
		NodeID:    nodeID(m),
		Status:    core.ResultError,
		Message:   err.Error(),
		StartedAt: start,
	})
}

// finishModel stamps timing onto the model and its result.
func (e *Engine) finishModel(m *core.Model, res core.RunResult) core.RunResult {
	res.ExecutionMS = time.Since(res.StartedAt).Milliseconds()
	m.LastRunAt = res.StartedAt
	m.ExecutionMS = res.ExecutionMS
	switch res.Status {
	case core.ResultSuccess:
		m.Status = core.NodeStatusSuccess
	case core.ResultSkipped:
		m.Status = core.NodeStatusPending
	default:
		m.Status = core.NodeStatusError
		m.LastError = res.Message
	}
	return res
}

// countRows reads the row count of the built relation, best effort.
func (e *Engine) countRows(ctx context.Context, m *core.Model) int64 {
	if m.Materialized == core.MaterializationView {
		return 0
	}
	return e.countRelationRows(ctx, m.RelationName())
}

func (e *Engine) countRelationRows(ctx context.Context, relation string) int64 {
	res, err := e.db.Query(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", relation))
	if err != nil || len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return 0
	}
	switch v := res.Rows[0][0].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// CompileModel compiles and translates one model without executing it.
func (e *Engine) CompileModel(name string, fullRefresh bool) (string, error) {
	m, ok := e.catalog.Model(name)
	if !ok {
		return "", fmt.Errorf("unknown model %q", name)
	}
	cctx := e.compileContext(uuid.New().String(), fullRefresh)
	m.CompiledSQL = compile.Compile(m.RawSQL, m, cctx)
	return translate.Translate(m.CompiledSQL), nil
}

func nodeID(m *core.Model) string {
	if m.UniqueID != "" {
		return m.UniqueID
	}
	return "model." + m.Name
}

// relationLeaf is the physical table name without its namespace.
func relationLeaf(m *core.Model) string {
	if m.Alias != "" {
		return m.Alias
	}
	return m.Name
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
