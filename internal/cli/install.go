package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/install"
	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/resolve"
)

type installOptions struct {
	manifest string
	source   string
	dest     string
	target   string
	suite    string
	strict   bool
	verbose  bool
}

func (a *app) installCmd(code *int) *cobra.Command {
	var o installOptions
	cmd := &cobra.Command{
		Use:   "starry-install",
		Short: "Install the test artifacts of a suite into an image root",
		Long: "Resolves every test of the selected suite in the build-output tree and copies\n" +
			"it into the destination root: native test binaries into native-tests/, the\n" +
			"libc-test harness into libc-test/.\n\n" +
			"Exits 0 when at least one unit was installed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			*code, err = a.install(o)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.manifest, "manifest", "", "Path to the test manifest (required)")
	f.StringVar(&o.source, "source", "", "Source root holding the build output (required)")
	f.StringVar(&o.dest, "dest", "", "Destination root in the image (required)")
	f.StringVar(&o.target, "target", "", "Target architecture triple, e.g. riscv64gc-unknown-none-elf (required)")
	f.StringVar(&o.suite, "suite", "ci", "Test suite to install")
	f.BoolVar(&o.strict, "strict", false, "Reject tests of unknown type")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Enable debug logging")
	for _, name := range []string{"manifest", "source", "dest", "target"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) install(o installOptions) (int, error) {
	logger := newLogger(a.stderr, o.verbose)

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
		// Disabled suites are still installed so they can be run by hand.
		logger.Info("installing disabled suite", "suite", suite.Name)
	}

	logger.Info("installing suite", "suite", suite.Name, "tests", len(suite.Tests),
		"source", o.source, "dest", o.dest, "target", o.target)

	resolver := resolve.NewResolver(resolve.Layout{SourceRoot: o.source, TargetArch: o.target}, logger)
	res, err := install.New(resolver, filepath.Clean(o.dest), logger).Install(suite)
	for _, f := range res.Failures {
		a.out.Warning("%s: %v", f.Test, f.Err)
	}
	if err != nil {
		return errors.ExitFailure, err
	}

	a.out.Success("Installed %d test modules from suite %q", res.Count, suite.Name)
	return errors.ExitSuccess, nil
}
