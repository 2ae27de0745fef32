package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/starry-os/starry-test-harness/internal/result"
)

// TAPFormatter writes Test Anything Protocol version 13. The plan is written
// last because the runner only knows the count after the suite finishes.
type TAPFormatter struct {
	w   io.Writer
	err error
}

func (f *TAPFormatter) printf(format string, args ...interface{}) {
	if f.err != nil {
		return
	}
	_, f.err = fmt.Fprintf(f.w, format, args...)
}

func (f *TAPFormatter) Start(r *SuiteReport) {
	f.printf("TAP version 13\n")
	f.printf("# suite: %s\n", r.Suite)
	if r.Description != "" {
		f.printf("# %s\n", r.Description)
	}
}

func (f *TAPFormatter) Result(index int, r result.ExecutionResult) {
	n := index + 1
	switch r.Status {
	case result.StatusPass:
		f.printf("ok %d - %s\n", n, r.Name)
	case result.StatusSkip:
		f.printf("ok %d - %s # SKIP %s\n", n, r.Name, firstLine(plainOutput(r.Output)))
	default:
		f.printf("not ok %d - %s\n", n, r.Name)
		f.diagnostic(r)
	}
}

// diagnostic writes the YAML block attached to a failing test point.
func (f *TAPFormatter) diagnostic(r result.ExecutionResult) {
	f.printf("  ---\n")
	f.printf("  status: %s\n", r.Status)
	if r.Type != "" {
		f.printf("  type: %s\n", r.Type)
	}
	f.printf("  duration_ms: %d\n", r.Duration.Milliseconds())
	if r.Counts != nil {
		f.printf("  subtests: {passed: %d, failed: %d, skipped: %d}\n", r.Counts.Passed, r.Counts.Failed, r.Counts.Skipped)
	}
	if out := strings.TrimRight(plainOutput(r.Output), "\n"); out != "" {
		f.printf("  output: |\n")
		for _, line := range strings.Split(out, "\n") {
			f.printf("    %s\n", line)
		}
	}
	f.printf("  ...\n")
}

func (f *TAPFormatter) Finish(r *SuiteReport) error {
	f.printf("1..%d\n", r.Total)
	f.printf("# pass %d\n", r.Passed)
	f.printf("# fail %d\n", r.Failed)
	f.printf("# skip %d\n", r.Skipped)
	return f.err
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
