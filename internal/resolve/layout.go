// Package resolve locates the build artifacts declared by a manifest on the
// build-output tree and defines the installed directory layout shared by the
// installer and the runner.
package resolve

import "path/filepath"

// Installed layout under the destination root. The installer writes it and
// the executor reads it; neither side may change it alone.
const (
	NativeTestsDir = "native-tests"
	LibcTestDir    = "libc-test"

	// RunScript is the libc-test launcher inside LibcTestDir.
	RunScript = "run"
	// RuntestPath is where the auxiliary runtest binary lands, relative to LibcTestDir.
	RuntestPath = "src/common/runtest.exe"
)

// Layout describes where the build system leaves its outputs.
type Layout struct {
	SourceRoot string
	TargetArch string // e.g. "riscv64gc-unknown-linux-musl"
}

// DepsDir returns the cargo deps directory holding fingerprinted binaries.
func (l Layout) DepsDir() string {
	return filepath.Join(l.SourceRoot, "target", l.TargetArch, "release", "deps")
}

// HarnessRoot returns the libc-test harness source directory.
func (l Layout) HarnessRoot() string {
	return filepath.Join(l.SourceRoot, "tests", "ci", "cases", "libc-test")
}

// NativeTestPath returns the installed path of a native test under root.
func NativeTestPath(root, name string) string {
	return filepath.Join(root, NativeTestsDir, name)
}

// LibcTestRoot returns the installed harness directory under root.
func LibcTestRoot(root string) string {
	return filepath.Join(root, LibcTestDir)
}

// LibcRunScript returns the installed harness launcher under root.
func LibcRunScript(root string) string {
	return filepath.Join(root, LibcTestDir, RunScript)
}
