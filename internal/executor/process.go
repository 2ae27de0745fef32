package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// waitDelay bounds how long Wait blocks on output pipes held open by
// descendants after the process group was killed.
const waitDelay = 5 * time.Second

// Command describes one process invocation.
type Command struct {
	Path    string
	Args    []string
	Dir     string // empty inherits the runner's working directory
	Timeout time.Duration
}

// Outcome is what a finished (or killed) process left behind.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	TimedOut bool
	// Interrupted is set instead of TimedOut when the caller's context was
	// cancelled before the deadline.
	Interrupted bool
}

// ProcessRunner starts a command and waits for it. A non-nil error means the
// process could not be started at all.
type ProcessRunner func(ctx context.Context, cmd Command) (Outcome, error)

// RunProcess runs cmd in its own process group. When the timeout expires or
// ctx is cancelled the whole group is killed, together with any descendant
// that moved to another group.
func RunProcess(parent context.Context, c Command) (Outcome, error) {
	ctx, cancel := context.WithTimeout(parent, c.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		killProcessTree(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return Outcome{}, err
	}
	err := cmd.Wait()

	out := Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil && ctx.Err() != nil {
		if parent.Err() != nil {
			out.Interrupted = true
		} else {
			out.TimedOut = true
		}
		out.ExitCode = -1
		return out, nil
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.ExitCode = 0
	case stderrors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		// Wait failed for a reason unrelated to the child's status, e.g. a
		// copy error after WaitDelay.
		out.ExitCode = -1
	}
	return out, nil
}

// killProcessTree kills the process group led by pid and every descendant
// found under it.
func killProcessTree(pid int) {
	descendants := collectDescendants(int32(pid))
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		_ = unix.Kill(pid, unix.SIGKILL)
	}
	for _, p := range descendants {
		_ = p.Kill()
	}
}

func collectDescendants(pid int32) []*process.Process {
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}
	children, err := p.Children()
	if err != nil {
		return nil
	}
	var all []*process.Process
	for _, c := range children {
		all = append(all, c)
		all = append(all, collectDescendants(c.Pid)...)
	}
	return all
}
