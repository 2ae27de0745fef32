package testparser

import (
	"regexp"
	"strings"
)

var ptestLineRegex = regexp.MustCompile(`(?m)^[ \t]*(PASS|FAIL|SKIP):[ \t]*(.*?)[ \t\r]*$`)

// PtestParser parses ptest-runner output, where every package test
// reports one line per check in the automake style:
//
//	PASS: test_basic
//	FAIL: test_network
//	SKIP: test_ipv6
type PtestParser struct{}

// Name returns the parser name.
func (p *PtestParser) Name() string {
	return "ptest"
}

// Parse counts the PASS:, FAIL: and SKIP: lines in output.
func (p *PtestParser) Parse(output string) TestCounts {
	counts := TestCounts{}

	for _, m := range ptestLineRegex.FindAllStringSubmatch(output, -1) {
		switch m[1] {
		case "PASS":
			counts.Passed++
		case "SKIP":
			counts.Skipped++
		case "FAIL":
			counts.Failed++
			counts.FailedTests = append(counts.FailedTests, FailedTest{Name: strings.TrimSpace(m[2])})
		}
	}

	counts.Total = counts.Passed + counts.Failed + counts.Skipped
	counts.Parsed = counts.Total > 0
	return counts
}
