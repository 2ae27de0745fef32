package testparser

import (
	"regexp"
	"strings"
)

// libcLineRegex matches the per-binary lines printed by the libc-test run
// script and runtest.exe:
//
//	PASS src/functional/argv.exe
//	FAIL src/functional/pthread_cancel.exe [status 1]
//	FAIL src/regression/malloc-oom.exe [signal Segmentation fault]
//	FAIL src/math/lgammal.exe [timed out]
//	SKIP src/functional/dlopen.exe
var libcLineRegex = regexp.MustCompile(`(?m)^(PASS|FAIL|SKIP):?[ \t]+(\S+)(?:[ \t]+\[([^\]\n]*)\])?[ \t\r]*$`)

// LibcParser parses libc-test module output.
type LibcParser struct{}

// Name returns the parser name.
func (p *LibcParser) Name() string {
	return "libc"
}

// Parse counts PASS, FAIL and SKIP lines. The bracketed suffix of a FAIL
// line becomes the failure reason.
func (p *LibcParser) Parse(output string) TestCounts {
	counts := TestCounts{}

	for _, m := range libcLineRegex.FindAllStringSubmatch(output, -1) {
		switch m[1] {
		case "PASS":
			counts.Passed++
		case "SKIP":
			counts.Skipped++
		case "FAIL":
			counts.Failed++
			counts.FailedTests = append(counts.FailedTests, FailedTest{
				Name:   m[2],
				Reason: strings.TrimSpace(m[3]),
			})
		}
	}

	counts.Total = counts.Passed + counts.Failed + counts.Skipped
	counts.Parsed = counts.Total > 0
	return counts
}
