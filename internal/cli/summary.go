package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/output"
	"github.com/starry-os/starry-test-harness/internal/testparser"
)

func (a *app) summaryCmd(code *int) *cobra.Command {
	var testType string
	cmd := &cobra.Command{
		Use:   "summary [file|-]",
		Short: "Summarize captured test output",
		Long: "Parses output captured from a native test binary, the libc-test run script\n" +
			"or ptest-runner and prints the sub-test counts with the failed sub-tests.\n\n" +
			"Reads stdin when no file (or \"-\") is given. Exits 1 if any sub-test failed.",
		Example: "  /usr/lib/starry-tests/libc-test/run src/functional static | starry-test-runner summary --type libc\n" +
			"  starry-test-runner summary --type rust file_io_basic.log",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			*code, err = a.summarize(cmd.InOrStdin(), args, testType)
			return err
		},
	}
	cmd.Flags().StringVarP(&testType, "type", "t", "rust", "Output type (rust|libc|ptest)")
	return cmd
}

func (a *app) summarize(stdin io.Reader, args []string, testType string) (int, error) {
	parser := testparser.NewRegistry().GetParser(testType)
	if parser == nil {
		return errors.ExitFailure, errors.Configf("no parser for output type %q", testType)
	}

	input := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.ExitFailure, err
		}
		defer func() { _ = f.Close() }()
		input = f
	}
	data, err := io.ReadAll(input)
	if err != nil {
		return errors.ExitFailure, err
	}

	counts := parser.Parse(string(data))
	if !counts.Parsed {
		return errors.ExitFailure, fmt.Errorf("no %s test results found in input", parser.Name())
	}

	printSummary(a.out, &counts)
	if counts.Failed > 0 {
		return errors.ExitFailure, nil
	}
	return errors.ExitSuccess, nil
}

// printSummary prints sub-test counts followed by the failed sub-tests.
func printSummary(out *output.Writer, counts *testparser.TestCounts) {
	out.SummaryHeader("Test Summary")
	out.SummaryCount("Passed", counts.Passed, output.ToneSuccess)
	if counts.Failed > 0 {
		out.SummaryCount("Failed", counts.Failed, output.ToneFailure)
	}
	if counts.Skipped > 0 {
		out.SummaryCount("Skipped", counts.Skipped, output.ToneSkip)
	}
	out.SummaryCount("Total", counts.Total, output.ToneNeutral)

	if len(counts.FailedTests) > 0 {
		out.Println("")
		out.Println("Failed tests:")
		for _, ft := range counts.FailedTests {
			if ft.Reason != "" {
				out.Detail(ft.Name + ": " + ft.Reason)
			} else {
				out.Detail(ft.Name)
			}
		}
	}

	if counts.Failed == 0 {
		out.FinalSuccess("All %d tests passed.", counts.Total)
	} else {
		out.FinalFailure("%d of %d tests failed.", counts.Failed, counts.Total)
	}
}
