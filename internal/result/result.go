// Package result defines the outcome vocabulary shared by the executor,
// the classifier and the report aggregator.
package result

import (
	"fmt"
	"time"

	"github.com/starry-os/starry-test-harness/internal/testparser"
)

// Status is the terminal state of one test case.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusSkip  Status = "skip"
	StatusError Status = "error"
)

// IsFailure reports whether the status counts toward the failed tally.
// Error has no bucket of its own in suite totals.
func (s Status) IsFailure() bool {
	return s == StatusFail || s == StatusError
}

// ExecutionResult is the outcome of exactly one test case in one run.
// It is created once and never mutated.
type ExecutionResult struct {
	Name     string
	Type     string
	Status   Status
	Duration time.Duration
	Output   string

	// Counts holds sub-test counts parsed from Output, when the output
	// format is recognized. Informational only.
	Counts *testparser.TestCounts
}

// Pass builds a passing result.
func Pass(name, output string, d time.Duration) ExecutionResult {
	return ExecutionResult{Name: name, Status: StatusPass, Output: output, Duration: d}
}

// Fail builds a failing result.
func Fail(name, output string, d time.Duration) ExecutionResult {
	return ExecutionResult{Name: name, Status: StatusFail, Output: output, Duration: d}
}

// Skip builds a skipped result; output explains why.
func Skip(name, output string) ExecutionResult {
	return ExecutionResult{Name: name, Status: StatusSkip, Output: output}
}

// Error builds a result for a test that could not be run at all.
func Error(name, output string) ExecutionResult {
	return ExecutionResult{Name: name, Status: StatusError, Output: output}
}

// InterruptedMarker is the output recorded for a test killed because the run
// was cancelled.
const InterruptedMarker = "Interrupted"

// TimeoutMarker is the output recorded for a test killed at its deadline,
// e.g. "Timeout (60s)".
func TimeoutMarker(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("Timeout (%ds)", int64(d/time.Second))
	}
	return fmt.Sprintf("Timeout (%s)", d)
}
