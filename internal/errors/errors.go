// Package errors provides structured error types and exit codes for the harness.
//
// The taxonomy follows how far a failure propagates:
//   - KindConfig: the manifest is unreadable, malformed, or the suite is absent.
//     Always fatal; nothing is installed or executed.
//   - KindResolution: an artifact or the libc harness is missing from the build
//     output tree. Fatal to that test only.
//   - KindExecution: a single test could not be started. Recorded as an Error
//     result; the suite continues.
//   - KindRuntime: everything else.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes shared by all harness binaries.
const (
	ExitSuccess = 0 // Success
	ExitFailure = 1 // Any failure (config error, nothing installed, failed tests)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindResolution
	KindExecution
)

// String returns the taxonomy name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindResolution:
		return "ResolutionError"
	case KindExecution:
		return "ExecutionError"
	default:
		return "RuntimeError"
	}
}

// HarnessError is the base error type for the harness.
type HarnessError struct {
	Kind    ErrorKind
	Message string
	Test    string // Test name if applicable
	Path    string // Filesystem path if applicable
	Cause   error  // Underlying error
}

func (e *HarnessError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Test != "" {
		msg = fmt.Sprintf("[%s] %s", e.Test, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this error.
// Every harness failure maps to ExitFailure; the distinction between kinds
// is carried in logs, not in the exit status.
func (e *HarnessError) ExitCode() int {
	return ExitFailure
}

// Config creates a new configuration error.
func Config(message string) *HarnessError {
	return &HarnessError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *HarnessError {
	return Config(fmt.Sprintf(format, args...))
}

// ConfigWrap wraps an error as a configuration error.
func ConfigWrap(err error, message string) *HarnessError {
	return &HarnessError{
		Kind:    KindConfig,
		Message: message,
		Cause:   err,
	}
}

// Resolution creates an error for an artifact that could not be located.
func Resolution(test, message, path string) *HarnessError {
	return &HarnessError{
		Kind:    KindResolution,
		Test:    test,
		Message: message,
		Path:    path,
	}
}

// ResolutionWrap is Resolution with the underlying cause attached.
func ResolutionWrap(err error, test, message, path string) *HarnessError {
	e := Resolution(test, message, path)
	e.Cause = err
	return e
}

// Execution creates an error for a test that could not be started.
func Execution(test string, cause error) *HarnessError {
	return &HarnessError{
		Kind:    KindExecution,
		Test:    test,
		Message: "execution failed",
		Cause:   cause,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *HarnessError {
	return &HarnessError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// KindOf returns the kind of the first HarnessError in err's chain.
// ok is false if err contains no HarnessError.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var he *HarnessError
	if errors.As(err, &he) {
		return he.Kind, true
	}
	return KindRuntime, false
}

// IsConfig reports whether err is or wraps a configuration error.
func IsConfig(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindConfig
}

// IsResolution reports whether err is or wraps a resolution error.
func IsResolution(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindResolution
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var he *HarnessError
	if errors.As(err, &he) {
		return he.ExitCode()
	}
	return ExitFailure
}
