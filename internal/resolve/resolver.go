package resolve

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/starry-os/starry-test-harness/internal/errors"
)

// Kind identifies how an artifact is installed and run.
type Kind string

const (
	KindNative  Kind = "native"
	KindHarness Kind = "libc-harness"
)

// Artifact is a test resolved to a file on the build-output tree.
// InstalledPath is filled in by the installer.
type Artifact struct {
	TestName      string
	Kind          Kind
	SourcePath    string
	InstalledPath string
}

// Harness is the resolved libc-test tree. All libc tests of a suite share it.
type Harness struct {
	Root          string
	RunScript     string
	BinDir        string
	RuntestBinary string // empty when the build did not produce it
}

// Resolver maps manifest tests to build artifacts.
type Resolver struct {
	layout Layout
	logger *slog.Logger
}

// NewResolver creates a resolver over layout. A nil logger uses slog.Default().
func NewResolver(layout Layout, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{layout: layout, logger: logger}
}

// Layout returns the build-output layout the resolver searches.
func (r *Resolver) Layout() Layout {
	return r.layout
}

type candidate struct {
	path    string
	name    string
	modTime time.Time
}

// ResolveNative finds the binary cargo built for the test called name.
// Cargo appends a 16 hex digit fingerprint to every binary it places in the
// deps directory, so stale builds of the same test can coexist. The most
// recently modified candidate wins; equal times fall back to the greatest name.
func (r *Resolver) ResolveNative(name string) (Artifact, error) {
	depsDir := r.layout.DepsDir()

	entries, err := os.ReadDir(depsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, errors.Resolution(name, "deps directory not found", depsDir)
		}
		return Artifact{}, errors.ResolutionWrap(err, name, "cannot read deps directory", depsDir)
	}

	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `-[0-9a-f]{16}$`)

	var candidates []candidate
	for _, entry := range entries {
		if !pattern.MatchString(entry.Name()) {
			continue
		}
		// Follow symlinks: cargo sometimes links the final binary.
		path := filepath.Join(depsDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			continue
		}
		candidates = append(candidates, candidate{path: path, name: entry.Name(), modTime: info.ModTime()})
	}

	if len(candidates) == 0 {
		return Artifact{}, errors.Resolution(name, "no matching binary", depsDir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].modTime.After(candidates[j].modTime)
		}
		return candidates[i].name > candidates[j].name
	})

	chosen := candidates[0]
	if len(candidates) > 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.name
		}
		r.logger.Warn("multiple binaries match test, using newest",
			"test", name, "chosen", chosen.name, "candidates", names)
	}

	return Artifact{TestName: name, Kind: KindNative, SourcePath: chosen.path}, nil
}

// ResolveHarness locates the libc-test harness tree.
func (r *Resolver) ResolveHarness() (Harness, error) {
	root := r.layout.HarnessRoot()
	h := Harness{
		Root:      root,
		RunScript: filepath.Join(root, RunScript),
		BinDir:    filepath.Join(root, "libc-test-bins", "src"),
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return Harness{}, errors.Resolution("", "libc-test harness not found", root)
	}
	if info, err := os.Stat(h.RunScript); err != nil || !info.Mode().IsRegular() {
		return Harness{}, errors.Resolution("", "libc-test run script not found", h.RunScript)
	}
	if info, err := os.Stat(h.BinDir); err != nil || !info.IsDir() {
		return Harness{}, errors.Resolution("", "libc-test binaries not found", h.BinDir)
	}

	runtest := filepath.Join(root, "libc-test-bins", "runtest.exe")
	if info, err := os.Stat(runtest); err == nil && info.Mode().IsRegular() {
		h.RuntestBinary = runtest
	}

	return h, nil
}
