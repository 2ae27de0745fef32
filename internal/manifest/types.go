// Package manifest provides loading and validation of test manifests.
//
// A manifest declares named test suites. Each suite can be enabled or
// disabled independently and lists the tests that the installer copies into
// the image and the runner executes there.
package manifest

// TestType identifies how a test is resolved, installed and executed.
// The literal values are part of the manifest format and must not change.
type TestType string

const (
	// TypeNative is a precompiled Rust test binary with a build fingerprint
	// in its file name.
	TypeNative TestType = "rust"
	// TypeLibc is an invocation of the shared libc-test harness.
	TypeLibc TestType = "libc"
)

// Defaults for libc harness invocations.
const (
	DefaultLibcModule = "functional"
	DefaultLibcMode   = "dynamic"
)

// Known reports whether t is one of the recognized test types.
func (t TestType) Known() bool {
	return t == TypeNative || t == TypeLibc
}

// Manifest is the typed form of a manifest document.
type Manifest struct {
	Suites []Suite `toml:"test_suite" yaml:"test_suite" json:"test_suite"`

	// Path is the file the manifest was loaded from.
	Path string `toml:"-" yaml:"-" json:"-"`
}

// Suite is a named group of tests.
type Suite struct {
	Name        string     `toml:"name" yaml:"name" json:"name"`
	Description string     `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
	Enabled     *bool      `toml:"enabled,omitempty" yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Tests       []TestCase `toml:"tests,omitempty" yaml:"tests,omitempty" json:"tests,omitempty"`
}

// IsEnabled reports whether the suite is enabled. Suites are enabled unless
// the manifest says otherwise.
func (s *Suite) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// TestsOfType returns the suite's tests of type t, in manifest order.
func (s *Suite) TestsOfType(t TestType) []TestCase {
	var out []TestCase
	for _, tc := range s.Tests {
		if tc.Type == t {
			out = append(out, tc)
		}
	}
	return out
}

// TestCase is a single test declaration. Module and Mode apply to libc
// harness tests only.
type TestCase struct {
	Name   string   `toml:"name" yaml:"name" json:"name"`
	Type   TestType `toml:"type,omitempty" yaml:"type,omitempty" json:"type,omitempty"`
	Module string   `toml:"module,omitempty" yaml:"module,omitempty" json:"module,omitempty"`
	Mode   string   `toml:"mode,omitempty" yaml:"mode,omitempty" json:"mode,omitempty"`
}

// ModuleOrDefault returns the libc-test module directory name.
func (tc TestCase) ModuleOrDefault() string {
	if tc.Module == "" {
		return DefaultLibcModule
	}
	return tc.Module
}

// ModeOrDefault returns the libc-test linking mode.
func (tc TestCase) ModeOrDefault() string {
	if tc.Mode == "" {
		return DefaultLibcMode
	}
	return tc.Mode
}
