package core

// TestKind distinguishes generated column tests from freestanding assertions.
type TestKind string

const (
	// TestKindSchema is a generated column test (unique, not_null, ...).
	TestKindSchema TestKind = "schema"
	// TestKindSingular is a hand-written assertion file.
	TestKindSingular TestKind = "singular"
)

// Severity controls how a non-empty test result is classified.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Test is a SQL assertion. Its SQL must select the violating rows;
// zero returned rows means the test passes.
type Test struct {
	Name     string
	UniqueID string
	// Model is the owning model name for schema tests ("" for singular).
	Model  string
	Column string
	Kind   TestKind
	SQL    string
	// Severity defaults to error.
	Severity Severity
	Status   NodeStatus
	Failures int64
}
