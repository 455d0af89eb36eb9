package core

import (
	"fmt"
	"strings"
	"time"
)

// SourceTable is a table declared under a source.
type SourceTable struct {
	Name string
	// Identifier is the physical table name when it differs from Name.
	Identifier  string
	Description string
	Columns     []ColumnDoc
}

// ColumnDoc documents a column for the docs manifest.
type ColumnDoc struct {
	Name        string
	Type        string
	Description string
}

// Source declares a set of external tables loaded outside snowduck.
// Immutable once registered except by re-registration.
type Source struct {
	Name     string
	Database string
	Schema   string
	Tables   []SourceTable

	// Freshness policy.
	LoadedAtField string
	WarnAfter     time.Duration
	ErrorAfter    time.Duration
}

// Table finds a declared table by name, matching case-insensitively.
func (s *Source) Table(name string) (*SourceTable, bool) {
	for i := range s.Tables {
		if strings.EqualFold(s.Tables[i].Name, name) {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// RelationName returns the physical name for a table of this source,
// using the declared identifier when present.
func (s *Source) RelationName(t *SourceTable) string {
	name := t.Name
	if t.Identifier != "" {
		name = t.Identifier
	}
	return fmt.Sprintf("%s.%s.%s", s.Database, s.Schema, name)
}

// Seed is a table loaded from a local data file.
type Seed struct {
	Name     string
	Database string
	Schema   string
	FilePath string
	// Columns are inferred once per load from a sample of rows.
	Columns    []SeedColumn
	RowsLoaded int64
	LoadedAt   time.Time
}

// SeedColumn is an inferred seed column.
type SeedColumn struct {
	Name string
	Type string
}

// RelationName returns the fully-qualified target table for the seed.
func (s *Seed) RelationName() string {
	return fmt.Sprintf("%s.%s.%s", s.Database, s.Schema, s.Name)
}
