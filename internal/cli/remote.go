package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/remote"
	"github.com/starry-os/starry-test-harness/internal/report"
	"github.com/starry-os/starry-test-harness/internal/result"
)

type remoteOptions struct {
	host           string
	keyFile        string
	keyDir         string
	sets           []string
	format         string
	metricsFile    string
	connectTimeout time.Duration
	verbose        bool
}

func (a *app) remoteCmd(code *int) *cobra.Command {
	var o remoteOptions
	cmd := &cobra.Command{
		Use:   "starry-remote",
		Short: "Run check sets against a booted image over SSH",
		Long: "Connects to the system under test and runs the selected check sets\n" +
			"(" + strings.Join(remote.SetNames(), ", ") + ") one check at a time.\n\n" +
			"An unreachable target skips its checks; a target that drops the connection\n" +
			"mid-check fails it. Exits 0 iff no check failed.",
		Example: "  starry-remote --host root@127.0.0.1:5555 --set ci --set stress",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			*code, err = a.runRemote(cmd.Context(), o)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.host, "host", "", "Target as [user@]host[:port] (required)")
	f.StringVar(&o.keyFile, "key", "", "Private key file")
	f.StringVar(&o.keyDir, "key-dir", defaultKeyDir(), "Directory searched for id_ed25519, id_ecdsa and id_rsa")
	f.StringArrayVar(&o.sets, "set", []string{"ci"}, "Check set to run; repeatable")
	f.StringVar(&o.format, "format", report.FormatHuman, "Output format ("+strings.Join(report.Formats, "|")+")")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.DurationVar(&o.connectTimeout, "connect-timeout", remote.DefaultConnectTimeout, "SSH connect timeout")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Show check output and debug logging")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func defaultKeyDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh")
}

func (a *app) runRemote(ctx context.Context, o remoteOptions) (int, error) {
	logger := newLogger(a.stderr, o.verbose)

	formatter, err := report.NewFormatter(o.format, a.out, o.verbose)
	if err != nil {
		return errors.ExitFailure, err
	}

	var checks []remote.Check
	for _, set := range o.sets {
		cs, err := remote.CheckSet(set)
		if err != nil {
			return errors.ExitFailure, errors.ConfigWrap(err, "invalid --set")
		}
		checks = append(checks, cs...)
	}

	sshOpts := remote.SSHOptions{KeyFile: o.keyFile, KeyDir: o.keyDir, ConnectTimeout: o.connectTimeout}
	if err := remote.ParseTarget(o.host, &sshOpts); err != nil {
		return errors.ExitFailure, errors.ConfigWrap(err, "invalid --host")
	}
	target, err := a.newTarget(sshOpts, logger)
	if err != nil {
		return errors.ExitFailure, err
	}
	if c, ok := target.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	suite := &manifest.Suite{
		Name:        "remote:" + strings.Join(o.sets, "+"),
		Description: "Checks on " + sshOpts.User + "@" + sshOpts.HostPort,
	}
	agg := report.NewAggregator(suite)
	formatter.Start(agg.Report())

	runner := remote.NewRunner(target, logger)
	runner.Run(ctx, checks, func(i int, r result.ExecutionResult) {
		agg.Add(r)
		formatter.Result(i, r)
	})

	rep := agg.Finish()
	if err := formatter.Finish(rep); err != nil {
		return errors.ExitFailure, err
	}
	if o.metricsFile != "" {
		if err := report.WriteMetrics(o.metricsFile, rep); err != nil {
			logger.Error("failed to write metrics", "path", o.metricsFile, "error", err)
		}
	}

	if ctx.Err() != nil {
		return errors.ExitFailure, nil
	}
	return agg.ExitCode(), nil
}
