package core

import "fmt"

// SnapshotStrategy selects how row changes are detected.
type SnapshotStrategy string

const (
	// StrategyTimestamp compares a source updated_at column.
	StrategyTimestamp SnapshotStrategy = "timestamp"
	// StrategyCheck compares a configured list of columns.
	StrategyCheck SnapshotStrategy = "check"
)

// Snapshot captures a query's rows as SCD Type-2 history: every change
// closes the prior version and inserts a new open-ended one.
type Snapshot struct {
	Name     string
	Database string
	Schema   string
	Strategy SnapshotStrategy
	// UniqueKey identifies a logical row across versions.
	UniqueKey string
	// UpdatedAt is the change-detection column for the timestamp strategy.
	UpdatedAt string
	// CheckCols lists compared columns for the check strategy.
	CheckCols []string
	// HardDeletes invalidates rows that disappeared from the source.
	HardDeletes bool

	RawSQL      string
	CompiledSQL string
}

// RelationName returns the fully-qualified snapshot table name.
func (s *Snapshot) RelationName() string {
	return fmt.Sprintf("%s.%s.%s", s.Database, s.Schema, s.Name)
}
