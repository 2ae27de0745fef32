// Package starry provides public constants for tools that drive the
// starry-install, starry-test-runner and starry-remote binaries.
package starry

// Exit codes returned by the harness binaries.
// These constants allow CI scripts written in Go to check exit codes
// symbolically rather than using magic numbers.
const (
	// ExitSuccess indicates the command completed successfully: at least one
	// module was installed, or no test failed.
	ExitSuccess = 0

	// ExitFailure indicates a failure of any kind: configuration errors,
	// nothing installed, or at least one failed test.
	ExitFailure = 1
)
