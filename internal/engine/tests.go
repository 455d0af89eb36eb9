package engine

// tests.go - Schema test generation and assertion execution. Every test
// selects its violating rows; zero rows back means pass.

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

// UniqueTestSQL selects values that appear more than once.
func UniqueTestSQL(relation, column string) string {
	return fmt.Sprintf(
		"SELECT %s, COUNT(*) AS n FROM %s WHERE %s IS NOT NULL GROUP BY %s HAVING COUNT(*) > 1",
		column, relation, column, column)
}

// NotNullTestSQL selects rows with a NULL in the column.
func NotNullTestSQL(relation, column string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE %s IS NULL", relation, column)
}

// AcceptedValuesTestSQL selects rows whose column value is outside the
// accepted set. NULLs are left to not_null.
func AcceptedValuesTestSQL(relation, column string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return fmt.Sprintf(
		"SELECT * FROM %s WHERE %s IS NOT NULL AND %s NOT IN (%s)",
		relation, column, column, strings.Join(quoted, ", "))
}

// RelationshipsTestSQL selects child rows with no matching parent row.
func RelationshipsTestSQL(relation, column, parentRelation, parentColumn string) string {
	return fmt.Sprintf(
		"SELECT child.%s FROM %s child LEFT JOIN %s parent ON child.%s = parent.%s "+
			"WHERE child.%s IS NOT NULL AND parent.%s IS NULL",
		column, relation, parentRelation, column, parentColumn, column, parentColumn)
}

// SchemaTestParams parameterizes a generated column test.
type SchemaTestParams struct {
	// Values is the accepted set for accepted_values.
	Values []string
	// To and ToColumn name the parent relation for relationships.
	To       string
	ToColumn string
	Severity core.Severity
}

// BuildSchemaTest generates a column test of the given kind against a
// model. The SQL is templated on {{ ref() }} so the relation resolves at
// run time like any model.
func BuildSchemaTest(kind string, modelName, column string, p SchemaTestParams) (*core.Test, error) {
	relation := fmt.Sprintf("{{ ref('%s') }}", modelName)

	var sql string
	switch kind {
	case "unique":
		sql = UniqueTestSQL(relation, column)
	case "not_null":
		sql = NotNullTestSQL(relation, column)
	case "accepted_values":
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("accepted_values test on %s.%s has no values", modelName, column)
		}
		sql = AcceptedValuesTestSQL(relation, column, p.Values)
	case "relationships":
		if p.To == "" || p.ToColumn == "" {
			return nil, fmt.Errorf("relationships test on %s.%s needs to/to_column", modelName, column)
		}
		sql = RelationshipsTestSQL(relation, column, fmt.Sprintf("{{ ref('%s') }}", p.To), p.ToColumn)
	default:
		return nil, fmt.Errorf("unknown test kind %q", kind)
	}

	severity := p.Severity
	if severity == "" {
		severity = core.SeverityError
	}

	name := fmt.Sprintf("%s_%s_%s", kind, modelName, column)
	return &core.Test{
		Name:     name,
		UniqueID: "test." + name,
		Model:    modelName,
		Column:   column,
		Kind:     core.TestKindSchema,
		SQL:      sql,
		Severity: severity,
	}, nil
}

// RunTests compiles and executes every registered test. Like model runs,
// a failing test never stops the loop.
func (e *Engine) RunTests(ctx context.Context) (*core.RunSummary, error) {
	if err := e.ensureConnected(ctx); err != nil {
		return nil, err
	}

	summary := &core.RunSummary{
		InvocationID: uuid.New().String(),
		StartedAt:    nowUTC(),
	}
	cctx := e.compileContext(summary.InvocationID, false)
	cctx.RunStartedAt = summary.StartedAt

	tests := e.catalog.Tests()
	e.logger.Info("starting tests", "invocation_id", summary.InvocationID, "tests", len(tests))

	run, err := e.store.CreateRun(e.target.Name)
	if err != nil {
		e.logger.Warn("run history unavailable", "error", err)
		run = nil
	}

	for _, t := range tests {
		res := e.runTest(ctx, cctx, t)
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
			msg = fmt.Sprintf("%d test(s) failed", errored)
		}
		if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
			e.logger.Warn("failed to complete run record", "error", err)
		}
	}

	return summary, nil
}

// runTest executes one assertion and classifies its result.
func (e *Engine) runTest(ctx context.Context, cctx *compile.Context, t *core.Test) core.RunResult {
	start := nowUTC()

	var owner *core.Model
	if t.Model != "" {
		owner, _ = e.catalog.Model(t.Model)
	}
	compiled := compile.Compile(t.SQL, owner, cctx)
	sql := translate.Translate(compiled)

	res := core.RunResult{NodeID: testNodeID(t), StartedAt: start}

	qr, err := e.db.Query(ctx, sql)
	if err != nil {
		t.Status = core.NodeStatusError
		res.Status = core.ResultError
		res.Message = fmt.Sprintf("test query failed: %v", err)
		res.ExecutionMS = time.Since(start).Milliseconds()
		e.logger.Error("test errored", "test", t.Name, "error", err)
		return res
	}

	t.Failures = qr.RowCount
	res.Failures = qr.RowCount
	res.ExecutionMS = time.Since(start).Milliseconds()

	switch {
	case qr.RowCount == 0:
		t.Status = core.NodeStatusSuccess
		res.Status = core.ResultPass
	case t.Severity == core.SeverityWarn:
		t.Status = core.NodeStatusSuccess
		res.Status = core.ResultWarn
		res.Message = fmt.Sprintf("got %d violating rows", qr.RowCount)
		e.logger.Warn("test warned", "test", t.Name, "failures", qr.RowCount)
	default:
		t.Status = core.NodeStatusError
		res.Status = core.ResultFail
		res.Message = fmt.Sprintf("got %d violating rows", qr.RowCount)
		e.logger.Error("test failed", "test", t.Name, "failures", qr.RowCount)
	}
	return res
}

func testNodeID(t *core.Test) string {
	if t.UniqueID != "" {
		return t.UniqueID
	}
	return "test." + t.Name
}
