package engine

// seeds.go - CSV seed loading. Column types are inferred once per load
// from a sample of rows; everything unrecognized stays VARCHAR.

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// typeSampleRows caps how many data rows inference looks at.
const typeSampleRows = 100

// SeedOptions shapes one seed invocation.
type SeedOptions struct {
	// Direct hands each CSV file to the backend's native reader instead
	// of inferring column types and inserting row by row.
	Direct bool
}

// LoadSeeds loads every registered seed into the backend. One result per
// seed; failures never stop the loop.
func (e *Engine) LoadSeeds(ctx context.Context, opts SeedOptions) (*core.RunSummary, error) {
	if err := e.ensureConnected(ctx); err != nil {
		return nil, err
	}

	summary := &core.RunSummary{
		InvocationID: uuid.New().String(),
		StartedAt:    nowUTC(),
	}

	seeds := e.catalog.Seeds()
	e.logger.Info("loading seeds", "invocation_id", summary.InvocationID,
		"seeds", len(seeds), "direct", opts.Direct)

	run, err := e.store.CreateRun(e.target.Name)
	if err != nil {
		e.logger.Warn("run history unavailable", "error", err)
		run = nil
	}

	for _, s := range seeds {
		var res core.RunResult
		if opts.Direct {
			res = e.loadSeedDirect(ctx, s)
		} else {
			res = e.loadSeed(ctx, s)
		}
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
			msg = fmt.Sprintf("%d seed(s) failed", errored)
		}
		if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
			e.logger.Warn("failed to complete run record", "error", err)
		}
	}

	return summary, nil
}

// loadSeedDirect delegates CSV parsing and type inference to the
// backend. Columns stay empty; the backend owns the schema.
func (e *Engine) loadSeedDirect(ctx context.Context, s *core.Seed) core.RunResult {
	start := nowUTC()
	res := core.RunResult{NodeID: "seed." + s.Name, StartedAt: start}

	fail := func(err error) core.RunResult {
		e.logger.Error("seed failed", "seed", s.Name, "error", err)
		res.Status = core.ResultError
		res.Message = err.Error()
		res.ExecutionMS = time.Since(start).Milliseconds()
		return res
	}

	if err := e.db.EnsureSchema(ctx, s.Schema); err != nil {
		return fail(fmt.Errorf("ensure schema %s: %w", s.Schema, err))
	}
	if err := e.db.LoadCSV(ctx, s.RelationName(), s.FilePath); err != nil {
		return fail(fmt.Errorf("load seed file: %w", err))
	}

	s.RowsLoaded = e.countRelationRows(ctx, s.RelationName())
	s.LoadedAt = start

	e.logger.Debug("seed loaded", "seed", s.Name, "rows", s.RowsLoaded, "direct", true)

	res.Status = core.ResultSuccess
	res.Message = fmt.Sprintf("loaded %d rows", s.RowsLoaded)
	res.ExecutionMS = time.Since(start).Milliseconds()
	return res
}

func (e *Engine) loadSeed(ctx context.Context, s *core.Seed) core.RunResult {
	start := nowUTC()
	res := core.RunResult{NodeID: "seed." + s.Name, StartedAt: start}

	fail := func(err error) core.RunResult {
		e.logger.Error("seed failed", "seed", s.Name, "error", err)
		res.Status = core.ResultError
		res.Message = err.Error()
		res.ExecutionMS = time.Since(start).Milliseconds()
		return res
	}

	header, rows, err := readCSV(s.FilePath)
	if err != nil {
		return fail(fmt.Errorf("read seed file: %w", err))
	}
	if len(header) == 0 {
		return fail(fmt.Errorf("seed file %s has no header row", s.FilePath))
	}

	s.Columns = inferColumns(header, rows)

	if err := e.db.EnsureSchema(ctx, s.Schema); err != nil {
		return fail(fmt.Errorf("ensure schema %s: %w", s.Schema, err))
	}

	rel := s.RelationName()
	if err := e.db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", rel)); err != nil {
		return fail(fmt.Errorf("drop seed table: %w", err))
	}

	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = fmt.Sprintf("%s %s", c.Name, c.Type)
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", rel, strings.Join(cols, ", "))
	if err := e.db.Exec(ctx, createSQL); err != nil {
		return fail(fmt.Errorf("create seed table: %w", err))
	}

	for _, row := range rows {
		vals := make([]string, len(s.Columns))
		for i := range s.Columns {
			if i < len(row) {
				vals[i] = seedLiteral(row[i], s.Columns[i].Type)
			} else {
				vals[i] = "NULL"
			}
		}
		insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", rel, strings.Join(vals, ", "))
		if err := e.db.Exec(ctx, insertSQL); err != nil {
			return fail(fmt.Errorf("insert seed row: %w", err))
		}
	}

	s.RowsLoaded = int64(len(rows))
	s.LoadedAt = start

	e.logger.Debug("seed loaded", "seed", s.Name, "rows", s.RowsLoaded)

	res.Status = core.ResultSuccess
	res.Message = fmt.Sprintf("loaded %d rows", s.RowsLoaded)
	res.ExecutionMS = time.Since(start).Milliseconds()
	return res
}

func readCSV(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}

// inferColumns assigns each column the narrowest type that fits every
// sampled non-empty value.
func inferColumns(header []string, rows [][]string) []core.SeedColumn {
	cols := make([]core.SeedColumn, len(header))
	sample := rows
	if len(sample) > typeSampleRows {
		sample = sample[:typeSampleRows]
	}

	for i, name := range header {
		var values []string
		for _, row := range sample {
			if i < len(row) && row[i] != "" {
				values = append(values, row[i])
			}
		}
		cols[i] = core.SeedColumn{Name: strings.TrimSpace(name), Type: inferType(values)}
	}
	return cols
}

// inferType picks INTEGER, DOUBLE, BOOLEAN, TIMESTAMP or VARCHAR.
func inferType(values []string) string {
	if len(values) == 0 {
		return "VARCHAR"
	}

	allInt, allFloat, allBool, allTime := true, true, true, true
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloat = false
		}
		if !isBoolLiteral(v) {
			allBool = false
		}
		if !isTimeLiteral(v) {
			allTime = false
		}
	}

	switch {
	case allBool:
		return "BOOLEAN"
	case allInt:
		return "INTEGER"
	case allFloat:
		return "DOUBLE"
	case allTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}

func isBoolLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func isTimeLiteral(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// seedLiteral renders a CSV cell as a SQL literal for its column type.
func seedLiteral(v, colType string) string {
	if v == "" {
		return "NULL"
	}
	switch colType {
	case "INTEGER", "DOUBLE", "BOOLEAN":
		return v
	default:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
}
