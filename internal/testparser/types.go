// Package testparser extracts sub-test counts from the output of the test
// binaries shipped in the image.
//
// A single native test binary or libc-test module can contain many
// individual checks. The harness only needs the process exit status to
// classify a test case, but the counts are reported alongside it.
package testparser

// FailedTest holds information about a single failed sub-test.
type FailedTest struct {
	Name   string // e.g. "fs::tests::open_dir" or "src/functional/pthread_cancel.exe"
	Reason string
}

// TestCounts holds parsed sub-test counts.
type TestCounts struct {
	Passed      int
	Failed      int
	Skipped     int
	Total       int
	Parsed      bool // true if the output format was recognized
	FailedTests []FailedTest
}

// Add adds another TestCounts to this one, aggregating the counts.
// Parsed is sticky: the aggregate is Parsed if any added value was.
func (tc *TestCounts) Add(other *TestCounts) {
	if other == nil {
		return
	}
	tc.Passed += other.Passed
	tc.Failed += other.Failed
	tc.Skipped += other.Skipped
	tc.Total += other.Total
	tc.FailedTests = append(tc.FailedTests, other.FailedTests...)
	if other.Parsed {
		tc.Parsed = true
	}
}

// Parser defines the interface for test output parsers.
type Parser interface {
	// Parse extracts test counts from combined test output.
	Parse(output string) TestCounts
	// Name returns the name of the parser.
	Name() string
}
