// Package cli implements the starry-install, starry-test-runner and
// starry-remote command lines.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/output"
	"github.com/starry-os/starry-test-harness/internal/remote"
)

// Version is set at build time.
var Version = "dev"

// app carries the process environment so commands can be run in tests.
type app struct {
	out    *output.Writer
	stderr io.Writer
	getenv func(string) string

	// newTarget connects starry-remote to the system under test.
	newTarget func(opts remote.SSHOptions, logger *slog.Logger) (remote.Target, error)
}

func defaultApp() *app {
	return &app{
		out:       output.New(),
		stderr:    os.Stderr,
		getenv:    os.Getenv,
		newTarget: newSSHTarget,
	}
}

func newSSHTarget(opts remote.SSHOptions, logger *slog.Logger) (remote.Target, error) {
	return remote.NewSSHTarget(opts, logger)
}

// RunInstall runs starry-install and returns the process exit code.
func RunInstall(args []string) int {
	a := defaultApp()
	return a.execute(a.installCmd, args)
}

// RunTests runs starry-test-runner and returns the process exit code.
func RunTests(args []string) int {
	a := defaultApp()
	return a.execute(a.runnerCmd, args)
}

// RunRemote runs starry-remote and returns the process exit code.
func RunRemote(args []string) int {
	a := defaultApp()
	return a.execute(a.remoteCmd, args)
}

// execute builds a command that stores its exit code in *code, runs it
// with args and reports any returned error on stderr.
func (a *app) execute(build func(code *int) *cobra.Command, args []string) int {
	code := errors.ExitSuccess
	cmd := build(&code)
	cmd.Version = Version
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	cmd.SetOut(a.out.Out())
	cmd.SetErr(a.stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		a.out.ErrorPrefix(cmd.Name(), "%v", err)
		if code == errors.ExitSuccess {
			code = errors.GetExitCode(err)
		}
	}
	return code
}

// newLogger returns a text logger on w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func logWarnings(logger *slog.Logger, warnings []string) {
	for _, w := range warnings {
		logger.Warn("manifest", "warning", w)
	}
}
