package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/executor"
	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/report"
)

// Defaults match the layout the image recipes install.
const (
	DefaultTestDir  = "/usr/lib/starry-tests"
	DefaultManifest = DefaultTestDir + "/manifest.toml"
)

// Environment variables that override the defaults above.
const (
	EnvManifest = "STARRY_MANIFEST"
	EnvTestDir  = "STARRY_TEST_DIR"
)

type runnerOptions struct {
	suite       string
	manifest    string
	testDir     string
	format      string
	metricsFile string
	strict      bool
	verbose     bool
}

func (a *app) runnerCmd(code *int) *cobra.Command {
	var o runnerOptions
	cmd := &cobra.Command{
		Use:   "starry-test-runner",
		Short: "Run an installed test suite on the booted image",
		Long: "Runs every test of the selected suite sequentially and prints a report.\n\n" +
			"Exits 0 iff no test failed. A disabled suite runs nothing and exits 0.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("manifest") {
				o.manifest = a.envOr(EnvManifest, o.manifest)
			}
			if !cmd.Flags().Changed("test-dir") {
				o.testDir = a.envOr(EnvTestDir, o.testDir)
			}
			var err error
			*code, err = a.runSuite(cmd.Context(), o)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.suite, "suite", "ci", "Test suite name")
	f.StringVar(&o.manifest, "manifest", DefaultManifest, "Manifest file path (env "+EnvManifest+")")
	f.StringVar(&o.testDir, "test-dir", DefaultTestDir, "Installed test directory (env "+EnvTestDir+")")
	f.StringVar(&o.format, "format", report.FormatHuman, "Output format ("+strings.Join(report.Formats, "|")+")")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.BoolVar(&o.strict, "strict", false, "Reject tests of unknown type")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Show test output and debug logging")

	cmd.AddCommand(a.summaryCmd(code))
	return cmd
}

func (a *app) envOr(key, fallback string) string {
	if v := a.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (a *app) runSuite(ctx context.Context, o runnerOptions) (int, error) {
	logger := newLogger(a.stderr, o.verbose)

	formatter, err := report.NewFormatter(o.format, a.out, o.verbose)
	if err != nil {
		return errors.ExitFailure, err
	}

	m, warnings, err := manifest.LoadWithOptions(o.manifest, manifest.LoadOptions{Strict: o.strict})
	logWarnings(logger, warnings)
	if err != nil {
		return errors.ExitFailure, err
	}
	suite, enabled, err := m.Select(o.suite)
	if err != nil {
		return errors.ExitFailure, err
	}
	if !enabled {
		logger.Info("test suite is disabled, nothing to run", "suite", suite.Name)
		return errors.ExitSuccess, nil
	}

	agg := report.NewAggregator(suite)
	formatter.Start(agg.Report())

	exec := executor.New(o.testDir, executor.WithLogger(logger))
	for i, tc := range suite.Tests {
		r := exec.Execute(ctx, tc)
		agg.Add(r)
		formatter.Result(i, r)
		if ctx.Err() != nil {
			logger.Warn("interrupted, skipping remaining tests", "suite", suite.Name,
				"remaining", len(suite.Tests)-i-1)
			break
		}
	}

	rep := agg.Finish()
	if err := formatter.Finish(rep); err != nil {
		return errors.ExitFailure, err
	}
	if o.metricsFile != "" {
		if err := report.WriteMetrics(o.metricsFile, rep); err != nil {
			logger.Error("failed to write metrics", "path", o.metricsFile, "error", err)
		} else {
			logger.Debug("wrote metrics", "path", o.metricsFile)
		}
	}

	if ctx.Err() != nil {
		return errors.ExitFailure, nil
	}
	return agg.ExitCode(), nil
}
