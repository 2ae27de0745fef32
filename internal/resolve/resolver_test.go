package resolve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starry-os/starry-test-harness/internal/errors"
)

const arch = "riscv64gc-unknown-linux-musl"

func writeFile(t *testing.T, path string, mode os.FileMode, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	r := NewResolver(Layout{SourceRoot: root, TargetArch: arch}, nil)
	if err := os.MkdirAll(r.Layout().DepsDir(), 0755); err != nil {
		t.Fatal(err)
	}
	return r, r.Layout().DepsDir()
}

func TestLayout(t *testing.T) {
	t.Parallel()
	l := Layout{SourceRoot: "/src", TargetArch: arch}

	if got, want := l.DepsDir(), "/src/target/"+arch+"/release/deps"; got != want {
		t.Errorf("DepsDir() = %q, want %q", got, want)
	}
	if got, want := l.HarnessRoot(), "/src/tests/ci/cases/libc-test"; got != want {
		t.Errorf("HarnessRoot() = %q, want %q", got, want)
	}
	if got, want := NativeTestPath("/usr/lib/starry-tests", "process_spawn"), "/usr/lib/starry-tests/native-tests/process_spawn"; got != want {
		t.Errorf("NativeTestPath() = %q, want %q", got, want)
	}
	if got, want := LibcRunScript("/usr/lib/starry-tests"), "/usr/lib/starry-tests/libc-test/run"; got != want {
		t.Errorf("LibcRunScript() = %q, want %q", got, want)
	}
}

func TestResolveNative_SingleMatch(t *testing.T) {
	t.Parallel()
	r, deps := newTestResolver(t)

	want := filepath.Join(deps, "file_io_basic-0123456789abcdef")
	writeFile(t, want, 0755, time.Time{})
	// Neighbours that must not match.
	writeFile(t, filepath.Join(deps, "file_io_basic-0123456789abcdef.d"), 0644, time.Time{})
	writeFile(t, filepath.Join(deps, "file_io_basic_ext-0123456789abcdef"), 0755, time.Time{})
	writeFile(t, filepath.Join(deps, "file_io_basic-0123456789ABCDEF"), 0755, time.Time{})
	writeFile(t, filepath.Join(deps, "libfile_io_basic-0123456789abcdef.rlib"), 0644, time.Time{})

	a, err := r.ResolveNative("file_io_basic")
	if err != nil {
		t.Fatalf("ResolveNative() error = %v", err)
	}
	if a.SourcePath != want {
		t.Errorf("SourcePath = %q, want %q", a.SourcePath, want)
	}
	if a.Kind != KindNative || a.TestName != "file_io_basic" {
		t.Errorf("Artifact = %+v", a)
	}
}

func TestResolveNative_ZeroMatches(t *testing.T) {
	t.Parallel()
	r, deps := newTestResolver(t)
	writeFile(t, filepath.Join(deps, "process_spawn-0123456789abcdef"), 0755, time.Time{})
	// Right name, not executable.
	writeFile(t, filepath.Join(deps, "file_io_basic-0123456789abcdef"), 0644, time.Time{})
	// Right name, directory.
	if err := os.Mkdir(filepath.Join(deps, "file_io_basic-fedcba9876543210"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := r.ResolveNative("file_io_basic")
	if err == nil {
		t.Fatal("ResolveNative() expected error")
	}
	if !errors.IsResolution(err) {
		t.Errorf("error kind is not ResolutionError: %v", err)
	}
}

func TestResolveNative_MissingDepsDir(t *testing.T) {
	t.Parallel()
	r := NewResolver(Layout{SourceRoot: t.TempDir(), TargetArch: arch}, nil)

	_, err := r.ResolveNative("file_io_basic")
	if !errors.IsResolution(err) {
		t.Errorf("ResolveNative() error = %v, want ResolutionError", err)
	}
}

func TestResolveNative_DepsPathIsFile(t *testing.T) {
	t.Parallel()
	r := NewResolver(Layout{SourceRoot: t.TempDir(), TargetArch: arch}, nil)
	writeFile(t, r.Layout().DepsDir(), 0644, time.Time{})

	_, err := r.ResolveNative("file_io_basic")
	if !errors.IsResolution(err) {
		t.Fatalf("ResolveNative() error = %v, want ResolutionError", err)
	}
	if !strings.Contains(err.Error(), r.Layout().DepsDir()) {
		t.Errorf("error %q does not name the deps path", err)
	}
}

func TestResolveNative_NameIsLiteral(t *testing.T) {
	t.Parallel()
	r, deps := newTestResolver(t)
	writeFile(t, filepath.Join(deps, "axbx-0123456789abcdef"), 0755, time.Time{})

	if _, err := r.ResolveNative("a.b."); err == nil {
		t.Error("ResolveNative(a.b.) matched a binary through regexp metacharacters")
	}
}

func TestResolveNative_MostRecentWins(t *testing.T) {
	t.Parallel()
	r, deps := newTestResolver(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(deps, "multi_processors-ffffffffffffffff"), 0755, base)
	writeFile(t, filepath.Join(deps, "multi_processors-0000000000000001"), 0755, base.Add(time.Hour))
	writeFile(t, filepath.Join(deps, "multi_processors-aaaaaaaaaaaaaaaa"), 0755, base.Add(-time.Hour))

	a, err := r.ResolveNative("multi_processors")
	if err != nil {
		t.Fatalf("ResolveNative() error = %v", err)
	}
	if got := filepath.Base(a.SourcePath); got != "multi_processors-0000000000000001" {
		t.Errorf("chose %q, want the most recently modified binary", got)
	}
}

func TestResolveNative_TieBreakByName(t *testing.T) {
	t.Parallel()
	r, deps := newTestResolver(t)

	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(deps, "t-1111111111111111"), 0755, mtime)
	writeFile(t, filepath.Join(deps, "t-9999999999999999"), 0755, mtime)
	writeFile(t, filepath.Join(deps, "t-5555555555555555"), 0755, mtime)

	for i := 0; i < 3; i++ {
		a, err := r.ResolveNative("t")
		if err != nil {
			t.Fatalf("ResolveNative() error = %v", err)
		}
		if got := filepath.Base(a.SourcePath); got != "t-9999999999999999" {
			t.Errorf("chose %q, want t-9999999999999999", got)
		}
	}
}

func makeHarness(t *testing.T, root string, withRun, withBins, withRuntest bool) {
	t.Helper()
	h := filepath.Join(root, "tests", "ci", "cases", "libc-test")
	if err := os.MkdirAll(h, 0755); err != nil {
		t.Fatal(err)
	}
	if withRun {
		writeFile(t, filepath.Join(h, "run"), 0755, time.Time{})
	}
	if withBins {
		writeFile(t, filepath.Join(h, "libc-test-bins", "src", "functional", "argv.exe"), 0644, time.Time{})
	}
	if withRuntest {
		writeFile(t, filepath.Join(h, "libc-test-bins", "runtest.exe"), 0644, time.Time{})
	}
}

func TestResolveHarness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		noRoot      bool
		withRun     bool
		withBins    bool
		withRuntest bool
		wantErr     bool
		wantRuntest bool
	}{
		{name: "complete", withRun: true, withBins: true, withRuntest: true, wantRuntest: true},
		{name: "no runtest binary", withRun: true, withBins: true},
		{name: "missing run script", withBins: true, withRuntest: true, wantErr: true},
		{name: "missing binaries", withRun: true, wantErr: true},
		{name: "missing root", noRoot: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			if !tt.noRoot {
				makeHarness(t, root, tt.withRun, tt.withBins, tt.withRuntest)
			}
			r := NewResolver(Layout{SourceRoot: root, TargetArch: arch}, nil)

			h, err := r.ResolveHarness()
			if tt.wantErr {
				if !errors.IsResolution(err) {
					t.Errorf("ResolveHarness() error = %v, want ResolutionError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveHarness() error = %v", err)
			}
			if h.RunScript != filepath.Join(h.Root, "run") {
				t.Errorf("RunScript = %q", h.RunScript)
			}
			if (h.RuntestBinary != "") != tt.wantRuntest {
				t.Errorf("RuntestBinary = %q, want present=%v", h.RuntestBinary, tt.wantRuntest)
			}
		})
	}
}
