package engine

// manifest.go - Documentation export. The manifest is a JSON snapshot of
// every model and source with its resolved metadata, consumed by an
// external docs viewer.

import (
	"encoding/json"
	"io"
	"time"

	"github.com/snowduck-labs/snowduck/internal/compile"
	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Manifest is the docs export payload.
type Manifest struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Target      string         `json:"target"`
	Models      []ModelDoc     `json:"models"`
	Sources     []SourceDoc    `json:"sources"`
	Seeds       []SeedDoc      `json:"seeds,omitempty"`
	Snapshots   []SnapshotDoc  `json:"snapshots,omitempty"`
	Tests       []TestManifest `json:"tests,omitempty"`
}

// ModelDoc documents one model.
type ModelDoc struct {
	Name         string         `json:"name"`
	Relation     string         `json:"relation"`
	Materialized string         `json:"materialized"`
	Tags         []string       `json:"tags,omitempty"`
	DependsOn    []string       `json:"depends_on,omitempty"`
	Description  string         `json:"description,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// SourceDoc documents one source group.
type SourceDoc struct {
	Name     string           `json:"name"`
	Database string           `json:"database"`
	Schema   string           `json:"schema"`
	Tables   []SourceTableDoc `json:"tables"`
}

// SourceTableDoc documents one declared source table.
type SourceTableDoc struct {
	Name        string           `json:"name"`
	Relation    string           `json:"relation"`
	Description string           `json:"description,omitempty"`
	Columns     []core.ColumnDoc `json:"columns,omitempty"`
}

// SeedDoc documents one seed.
type SeedDoc struct {
	Name     string            `json:"name"`
	Relation string            `json:"relation"`
	Columns  []core.SeedColumn `json:"columns,omitempty"`
	Rows     int64             `json:"rows_loaded"`
}

// SnapshotDoc documents one snapshot.
type SnapshotDoc struct {
	Name      string `json:"name"`
	Relation  string `json:"relation"`
	Strategy  string `json:"strategy"`
	UniqueKey string `json:"unique_key"`
}

// TestManifest documents one test.
type TestManifest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Model    string `json:"model,omitempty"`
	Column   string `json:"column,omitempty"`
	Severity string `json:"severity"`
}

// BuildManifest assembles the manifest from the catalog. depends_on is
// rederived from raw SQL so the export never shows stale edges.
func (e *Engine) BuildManifest() *Manifest {
	man := &Manifest{
		GeneratedAt: nowUTC(),
		Target:      e.target.Name,
	}

	for _, m := range e.catalog.Models() {
		man.Models = append(man.Models, ModelDoc{
			Name:         m.Name,
			Relation:     m.RelationName(),
			Materialized: m.Materialized.String(),
			Tags:         m.Tags,
			DependsOn:    compile.ExtractRefs(m.RawSQL),
			Description:  m.Description,
			Meta:         m.Meta,
		})
	}

	for _, s := range e.catalog.Sources() {
		doc := SourceDoc{Name: s.Name, Database: s.Database, Schema: s.Schema}
		for i := range s.Tables {
			t := &s.Tables[i]
			doc.Tables = append(doc.Tables, SourceTableDoc{
				Name:        t.Name,
				Relation:    s.RelationName(t),
				Description: t.Description,
				Columns:     t.Columns,
			})
		}
		man.Sources = append(man.Sources, doc)
	}

	for _, s := range e.catalog.Seeds() {
		man.Seeds = append(man.Seeds, SeedDoc{
			Name: s.Name, Relation: s.RelationName(),
			Columns: s.Columns, Rows: s.RowsLoaded,
		})
	}
	for _, s := range e.catalog.Snapshots() {
		man.Snapshots = append(man.Snapshots, SnapshotDoc{
			Name: s.Name, Relation: s.RelationName(),
			Strategy: string(s.Strategy), UniqueKey: s.UniqueKey,
		})
	}
	for _, t := range e.catalog.Tests() {
		man.Tests = append(man.Tests, TestManifest{
			Name: t.Name, Kind: string(t.Kind),
			Model: t.Model, Column: t.Column, Severity: string(t.Severity),
		})
	}
	return man
}

// WriteManifest serializes the manifest as indented JSON.
func (e *Engine) WriteManifest(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e.BuildManifest())
}
