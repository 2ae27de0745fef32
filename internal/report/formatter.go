package report

import (
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starry-os/starry-test-harness/internal/output"
	"github.com/starry-os/starry-test-harness/internal/result"
)

// Format names accepted by NewFormatter.
const (
	FormatHuman = "human"
	FormatTAP   = "tap"
	FormatJSON  = "json"
)

// Formats lists the supported formats.
var Formats = []string{FormatHuman, FormatTAP, FormatJSON}

// Formatter renders a suite run. Start is called once before the first
// result, Result once per test in run order, Finish once at the end.
type Formatter interface {
	Start(r *SuiteReport)
	Result(index int, r result.ExecutionResult)
	Finish(r *SuiteReport) error
}

// NewFormatter returns the formatter for format.
func NewFormatter(format string, out *output.Writer, verbose bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatHuman, "":
		return &HumanFormatter{out: out, verbose: verbose}, nil
	case FormatTAP:
		return &TAPFormatter{w: out.Out()}, nil
	case FormatJSON:
		return &JSONFormatter{w: out.Out()}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

var titleCase = cases.Title(language.English)

// statusTitle renders a status as "Pass", "Fail", ...
func statusTitle(s result.Status) string {
	return titleCase.String(string(s))
}

// plainOutput strips terminal escapes from captured test output.
func plainOutput(s string) string {
	return stripansi.Strip(s)
}
