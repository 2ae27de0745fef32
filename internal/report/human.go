package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/starry-os/starry-test-harness/internal/output"
	"github.com/starry-os/starry-test-harness/internal/result"
)

// maxDetailLines caps the captured output shown per test in verbose mode.
const maxDetailLines = 10

// HumanFormatter renders a colored console transcript and summary table.
type HumanFormatter struct {
	out     *output.Writer
	verbose bool
}

func (f *HumanFormatter) Start(r *SuiteReport) {
	f.out.Banner("StarryOS Test Runner - Suite: "+r.Suite, "Description: "+r.Description)
}

func (f *HumanFormatter) Result(_ int, r result.ExecutionResult) {
	label, tone := statusLabel(r.Status)
	f.out.TestStart(r.Name)
	f.out.TestStatus(label, tone)

	if f.verbose && r.Output != "" {
		lines := strings.Split(strings.TrimRight(r.Output, "\n"), "\n")
		if len(lines) > maxDetailLines {
			lines = lines[:maxDetailLines]
		}
		for _, line := range lines {
			f.out.Detail(line)
		}
	}
	f.out.Println("")
}

func (f *HumanFormatter) Finish(r *SuiteReport) error {
	f.out.Print("%s", renderTable(r, f.out.Colored()))
	f.out.Println("")

	f.out.SummaryHeader("Test Results Summary")
	f.out.SummaryCount("Total", r.Total, output.ToneNeutral)
	f.out.SummaryCount("Passed", r.Passed, output.ToneSuccess)
	f.out.SummaryCount("Failed", r.Failed, output.ToneFailure)
	if r.Skipped > 0 {
		f.out.SummaryCount("Skipped", r.Skipped, output.ToneSkip)
	}
	f.out.Rule()

	if r.Success() {
		f.out.FinalSuccess("Suite %s passed in %s", r.Suite, formatDuration(r.Duration()))
	} else {
		f.out.FinalFailure("Suite %s failed: %d of %d tests failed", r.Suite, r.Failed, r.Total)
	}
	return nil
}

func statusLabel(s result.Status) (string, output.Tone) {
	switch s {
	case result.StatusPass:
		return "✓ PASS", output.ToneSuccess
	case result.StatusFail:
		return "✗ FAIL", output.ToneFailure
	case result.StatusSkip:
		return "○ SKIP", output.ToneSkip
	default:
		return "✗ ERROR", output.ToneFailure
	}
}

func renderTable(r *SuiteReport, color bool) string {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle("Suite " + r.Suite)
	t.AppendHeader(table.Row{"#", "Test", "Type", "Status", "Duration", "Sub-tests"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Test", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Sub-tests", Align: text.AlignRight},
	})

	for i, res := range r.Results {
		t.AppendRow(table.Row{
			i + 1,
			res.Name,
			res.Type,
			statusTitle(res.Status),
			formatDuration(res.Duration),
			subtests(res),
		})
	}

	switch {
	case !color:
		t.SetStyle(table.StyleLight)
	case r.Failed > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case r.Skipped > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		"", "TOTAL", "",
		fmt.Sprintf("%d/%d passed", r.Passed, r.Total),
		formatDuration(r.Duration()),
		"",
	})

	t.Render()
	return buf.String()
}

func subtests(r result.ExecutionResult) string {
	if r.Counts == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", r.Counts.Passed, r.Counts.Total)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
