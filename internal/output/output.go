// Package output renders human-facing console text for the harness commands.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tone selects the color of a status line or count.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneSuccess
	ToneFailure
	ToneSkip
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

func (t Tone) code() string {
	switch t {
	case ToneSuccess:
		return green
	case ToneFailure:
		return red
	case ToneSkip:
		return yellow
	default:
		return ""
	}
}

// ruleWidth is the width of banner and summary separators.
const ruleWidth = 50

// Writer handles console output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
}

// New creates a Writer on stdout/stderr, with color when stdout is a terminal.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers.
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// Out returns the stdout writer, for renderers that stream raw text.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Colored reports whether ANSI colors are emitted.
func (w *Writer) Colored() bool {
	return w.color
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// paint wraps s in the given color codes when color is enabled.
func (w *Writer) paint(codes, s string) string {
	if !w.color || codes == "" {
		return s
	}
	return codes + s + reset
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint(yellow, "warning:"), fmt.Sprintf(format, args...))
}

// ErrorPrefix prints an error message prefixed with the program name to stderr.
func (w *Writer) ErrorPrefix(prog, format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint(red, prog+":"), fmt.Sprintf(format, args...))
}

// Success prints a green message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s", w.paint(green, fmt.Sprintf(format, args...)))
}

// Rule prints a full-width separator.
func (w *Writer) Rule() {
	w.Println("%s", strings.Repeat("=", ruleWidth))
}

// Banner prints a framed title with optional detail lines.
func (w *Writer) Banner(title string, details ...string) {
	w.Rule()
	w.Println("%s", w.paint(bold+cyan, title))
	for _, d := range details {
		w.Println("%s", d)
	}
	w.Rule()
	w.Println("")
}

// TestStart announces a test about to run.
func (w *Writer) TestStart(name string) {
	w.Println("Running: %s", name)
}

// TestStatus prints the indented status label of the test just announced.
func (w *Writer) TestStatus(label string, tone Tone) {
	w.Println("  %s", w.paint(tone.code(), label))
}

// Detail prints an indented, dimmed line of captured output.
func (w *Writer) Detail(line string) {
	w.Println("    %s", w.paint(dim, line))
}

// SummaryHeader prints a framed summary title.
func (w *Writer) SummaryHeader(title string) {
	w.Rule()
	w.Println("%s", title)
	w.Rule()
}

// SummaryCount prints an aligned "Label: value" line with a colored value.
func (w *Writer) SummaryCount(label string, value int, tone Tone) {
	w.Println("%-9s%s", label+":", w.paint(tone.code(), fmt.Sprint(value)))
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.paint(green, fmt.Sprintf(format, args...)))
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.paint(red, fmt.Sprintf(format, args...)))
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
