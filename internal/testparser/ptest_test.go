package testparser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPtestParser(t *testing.T) {
	t.Parallel()
	parser := &PtestParser{}

	tests := []struct {
		name   string
		output string
		want   TestCounts
	}{
		{
			name: "package run",
			output: `START: ptest-runner
BEGIN: /usr/lib/zlib/ptest
PASS: example
PASS: minigzip
FAIL: infcover
SKIP: crc32_neon
END: /usr/lib/zlib/ptest
STOP: ptest-runner`,
			want: TestCounts{
				Passed: 2, Failed: 1, Skipped: 1, Total: 4, Parsed: true,
				FailedTests: []FailedTest{{Name: "infcover"}},
			},
		},
		{
			name:   "indented lines",
			output: "  PASS: a\n\tFAIL: b\n",
			want: TestCounts{
				Passed: 1, Failed: 1, Total: 2, Parsed: true,
				FailedTests: []FailedTest{{Name: "b"}},
			},
		},
		{
			name:   "no results",
			output: "START: ptest-runner\nSTOP: ptest-runner\n",
			want:   TestCounts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parser.Parse(tt.output)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPtestParserName(t *testing.T) {
	t.Parallel()
	if got := (&PtestParser{}).Name(); got != "ptest" {
		t.Errorf("Name: got %s, want ptest", got)
	}
}
