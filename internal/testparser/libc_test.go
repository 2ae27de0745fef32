package testparser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLibcParser(t *testing.T) {
	t.Parallel()
	parser := &LibcParser{}

	tests := []struct {
		name   string
		output string
		want   TestCounts
	}{
		{
			name: "mixed results",
			output: `PASS src/functional/argv.exe
FAIL src/functional/pthread_cancel.exe [status 1]
PASS src/functional/basename.exe
FAIL src/regression/malloc-oom.exe [signal Segmentation fault]
SKIP src/functional/dlopen.exe
FAIL src/math/lgammal.exe [timed out]
`,
			want: TestCounts{
				Passed: 2, Failed: 3, Skipped: 1, Total: 6, Parsed: true,
				FailedTests: []FailedTest{
					{Name: "src/functional/pthread_cancel.exe", Reason: "status 1"},
					{Name: "src/regression/malloc-oom.exe", Reason: "signal Segmentation fault"},
					{Name: "src/math/lgammal.exe", Reason: "timed out"},
				},
			},
		},
		{
			name:   "failure without reason",
			output: "FAIL src/functional/env.exe\n",
			want: TestCounts{
				Failed: 1, Total: 1, Parsed: true,
				FailedTests: []FailedTest{{Name: "src/functional/env.exe"}},
			},
		},
		{
			name:   "noise around results",
			output: "running functional (dynamic)\nPASS src/functional/qsort.exe\ndone\n",
			want:   TestCounts{Passed: 1, Total: 1, Parsed: true},
		},
		{
			name:   "pass must start the line",
			output: "test PASS src/functional/qsort.exe\n",
			want:   TestCounts{},
		},
		{
			name:   "empty output",
			output: "",
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

func TestLibcParserName(t *testing.T) {
	t.Parallel()
	if got := (&LibcParser{}).Name(); got != "libc" {
		t.Errorf("Name: got %s, want libc", got)
	}
}
