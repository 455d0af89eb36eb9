package core

import "strings"

// Materialization defines how a model's result becomes a relation.
// It is a closed enum; the engine switches over it exhaustively so a new
// strategy is a compile-time decision, not a string comparison.
type Materialization int

const (
	// MaterializationView creates or replaces a view.
	MaterializationView Materialization = iota
	// MaterializationTable drops and recreates a table.
	MaterializationTable
	// MaterializationIncremental appends or upserts into an existing table.
	MaterializationIncremental
	// MaterializationEphemeral is never built; it exists only to be inlined.
	MaterializationEphemeral
	// MaterializationSnapshot is an SCD Type-2 history table.
	MaterializationSnapshot
	// MaterializationSeed is a table loaded from a seed file.
	MaterializationSeed
	// MaterializationTest is a SQL assertion.
	MaterializationTest
)

// String returns the configuration name of the materialization.
func (m Materialization) String() string {
	switch m {
	case MaterializationView:
		return "view"
	case MaterializationTable:
		return "table"
	case MaterializationIncremental:
		return "incremental"
	case MaterializationEphemeral:
		return "ephemeral"
	case MaterializationSnapshot:
		return "snapshot"
	case MaterializationSeed:
		return "seed"
	case MaterializationTest:
		return "test"
	default:
		return "unknown"
	}
}

// ParseMaterialization parses a configuration value like "table" or "VIEW".
// The second return value is false for unrecognized values.
func ParseMaterialization(s string) (Materialization, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return MaterializationView, true
	case "table":
		return MaterializationTable, true
	case "incremental":
		return MaterializationIncremental, true
	case "ephemeral":
		return MaterializationEphemeral, true
	case "snapshot":
		return MaterializationSnapshot, true
	case "seed":
		return MaterializationSeed, true
	case "test":
		return MaterializationTest, true
	default:
		return MaterializationView, false
	}
}
