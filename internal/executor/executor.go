// Package executor runs installed tests on the target and turns each run into
// exactly one result.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/resolve"
	"github.com/starry-os/starry-test-harness/internal/result"
	"github.com/starry-os/starry-test-harness/internal/testparser"
)

// Default per-type deadlines.
const (
	DefaultNativeTimeout = 60 * time.Second
	DefaultLibcTimeout   = 600 * time.Second
)

// Executor runs tests installed under a test directory.
type Executor struct {
	testDir       string
	logger        *slog.Logger
	nativeTimeout time.Duration
	libcTimeout   time.Duration
	run           ProcessRunner
	parsers       *testparser.Registry
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for command diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithNativeTimeout overrides the native test deadline.
func WithNativeTimeout(d time.Duration) Option {
	return func(e *Executor) { e.nativeTimeout = d }
}

// WithLibcTimeout overrides the libc-test module deadline.
func WithLibcTimeout(d time.Duration) Option {
	return func(e *Executor) { e.libcTimeout = d }
}

// WithProcessRunner replaces the function used to start processes.
func WithProcessRunner(r ProcessRunner) Option {
	return func(e *Executor) { e.run = r }
}

// New creates an executor for tests installed under testDir.
func New(testDir string, opts ...Option) *Executor {
	e := &Executor{
		testDir:       testDir,
		logger:        slog.Default(),
		nativeTimeout: DefaultNativeTimeout,
		libcTimeout:   DefaultLibcTimeout,
		run:           RunProcess,
		parsers:       testparser.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs tc once and returns its result. It never returns an error:
// every failure mode maps onto a result status.
func (e *Executor) Execute(ctx context.Context, tc manifest.TestCase) result.ExecutionResult {
	var r result.ExecutionResult
	switch tc.Type {
	case manifest.TypeNative:
		path := resolve.NativeTestPath(e.testDir, tc.Name)
		if _, err := os.Stat(path); err != nil {
			r = result.Error(tc.Name, "Binary not found: "+path)
			e.logger.Error("test binary not found", "test", tc.Name, "path", path)
			break
		}
		r = e.invoke(ctx, tc, Command{Path: path, Timeout: e.nativeTimeout})
	case manifest.TypeLibc:
		script := resolve.LibcRunScript(e.testDir)
		if _, err := os.Stat(script); err != nil {
			r = result.Error(tc.Name, "Run script not found: "+script)
			e.logger.Error("libc-test run script not found", "test", tc.Name, "path", script)
			break
		}
		r = e.invoke(ctx, tc, Command{
			Path:    script,
			Args:    []string{"src/" + tc.ModuleOrDefault(), tc.ModeOrDefault()},
			Dir:     resolve.LibcTestRoot(e.testDir),
			Timeout: e.libcTimeout,
		})
	default:
		r = result.Skip(tc.Name, fmt.Sprintf("Unknown type: %s", tc.Type))
		e.logger.Warn("skipping test of unknown type", "test", tc.Name, "type", string(tc.Type))
	}
	r.Type = string(tc.Type)
	return r
}

func (e *Executor) invoke(ctx context.Context, tc manifest.TestCase, cmd Command) result.ExecutionResult {
	command := commandLine(cmd)
	e.logger.Debug("running test", "test", tc.Name, "command", command, "dir", cmd.Dir)

	start := time.Now()
	out, err := e.run(ctx, cmd)
	elapsed := time.Since(start)

	if err != nil {
		herr := errors.Execution(tc.Name, err)
		e.logger.Error("test could not be started", "test", tc.Name, "kind", herr.Kind.String(), "command", command, "error", err)
		return result.Error(tc.Name, herr.Error())
	}

	output := string(out.Stdout) + string(out.Stderr)

	if out.Interrupted {
		e.logger.Warn("test interrupted", "test", tc.Name, "command", command, "output", output)
		return result.Fail(tc.Name, result.InterruptedMarker, elapsed)
	}

	if out.TimedOut {
		marker := result.TimeoutMarker(cmd.Timeout)
		e.logger.Error("test timed out", "test", tc.Name, "command", command, "timeout", cmd.Timeout, "output", output)
		return result.Fail(tc.Name, marker, elapsed)
	}

	var r result.ExecutionResult
	if out.ExitCode == 0 {
		r = result.Pass(tc.Name, output, elapsed)
		e.logger.Debug("test passed", "test", tc.Name, "duration", elapsed)
	} else {
		r = result.Fail(tc.Name, output, elapsed)
		e.logger.Error("test failed", "test", tc.Name, "command", command, "status", out.ExitCode, "output", output)
	}

	if p := e.parsers.GetParser(string(tc.Type)); p != nil {
		if counts := p.Parse(output); counts.Parsed {
			r.Counts = &counts
		}
	}
	return r
}

func commandLine(cmd Command) string {
	return strings.TrimSpace(cmd.Path + " " + strings.Join(cmd.Args, " "))
}
