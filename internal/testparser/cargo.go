package testparser

import (
	"regexp"
	"strconv"
)

var (
	cargoResultRegex = regexp.MustCompile(`test result: \w+\.\s*(\d+) passed;\s*(\d+) failed;\s*(\d+) ignored`)
	cargoFailedRegex = regexp.MustCompile(`(?m)^test (\S+) \.\.\. FAILED\s*$`)
)

// CargoParser parses the output of Rust test binaries built by cargo.
type CargoParser struct{}

// Name returns the parser name.
func (p *CargoParser) Name() string {
	return "cargo"
}

// Parse sums every summary line in output, one per test binary:
//
//	test result: ok. 47 passed; 0 failed; 3 ignored; 0 measured; 0 filtered out; finished in 0.12s
//	test result: FAILED. 45 passed; 2 failed; 3 ignored; 0 measured; 0 filtered out; finished in 0.12s
//
// Names of failed tests are taken from "test <name> ... FAILED" lines.
func (p *CargoParser) Parse(output string) TestCounts {
	counts := TestCounts{}

	matches := cargoResultRegex.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return counts
	}

	for _, match := range matches {
		passed, _ := strconv.Atoi(match[1])
		failed, _ := strconv.Atoi(match[2])
		ignored, _ := strconv.Atoi(match[3])

		counts.Passed += passed
		counts.Failed += failed
		counts.Skipped += ignored
	}
	counts.Total = counts.Passed + counts.Failed + counts.Skipped
	counts.Parsed = true

	for _, m := range cargoFailedRegex.FindAllStringSubmatch(output, -1) {
		counts.FailedTests = append(counts.FailedTests, FailedTest{Name: m[1]})
	}

	return counts
}
