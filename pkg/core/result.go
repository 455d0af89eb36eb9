package core

import "time"

// ResultStatus classifies the outcome of one executed node.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
	ResultSkipped ResultStatus = "skipped"
	// Test outcomes.
	ResultPass ResultStatus = "pass"
	ResultFail ResultStatus = "fail"
	ResultWarn ResultStatus = "warn"
)

// RunResult is produced exactly once per executed node per invocation and
// never mutated after creation. NodeID refers to the node's UniqueID.
type RunResult struct {
	NodeID      string
	Status      ResultStatus
	Message     string
	StartedAt   time.Time
	ExecutionMS int64
	// Failures is the violating row count for tests.
	Failures int64
}

// RunSummary aggregates the per-node outcomes of one invocation.
type RunSummary struct {
	InvocationID string
	StartedAt    time.Time
	Results      []RunResult
}

// Counts returns the number of succeeded, errored and skipped nodes.
// Test passes count as success, fails as error, warns as success.
func (s *RunSummary) Counts() (success, errored, skipped int) {
	for _, r := range s.Results {
		switch r.Status {
		case ResultSuccess, ResultPass, ResultWarn:
			success++
		case ResultError, ResultFail:
			errored++
		case ResultSkipped:
			skipped++
		}
	}
	return
}
