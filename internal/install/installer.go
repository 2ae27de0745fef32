// Package install copies resolved test artifacts into the image staging tree.
package install

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starry-os/starry-test-harness/internal/errors"
	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/resolve"
)

// ErrNothingInstalled is returned when an install run produced no usable test.
var ErrNothingInstalled = stderrors.New("no tests installed")

// binaryPattern selects the libc-test binaries that must be executable.
const binaryPattern = "**/*.exe"

const execMode os.FileMode = 0755

// Failure records one test (or the libc harness) that could not be installed.
type Failure struct {
	Test string
	Err  error
}

// Result summarizes an install run.
type Result struct {
	// Count is the number of installed units. Every native test is one
	// unit and the whole libc harness is one unit.
	Count     int
	Artifacts []resolve.Artifact
	Failures  []Failure
}

// Installer copies artifacts from the build-output tree into a destination
// root laid out as described by the resolve package.
type Installer struct {
	resolver *resolve.Resolver
	dest     string
	logger   *slog.Logger
}

// New creates an installer writing under dest. A nil logger uses slog.Default().
func New(resolver *resolve.Resolver, dest string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{resolver: resolver, dest: dest, logger: logger}
}

// Install installs every test of suite. Failing tests are recorded in the
// result and do not stop the batch. The returned error wraps
// ErrNothingInstalled when the count is zero, which includes an empty suite.
func (in *Installer) Install(suite *manifest.Suite) (*Result, error) {
	res := &Result{}

	for _, tc := range suite.TestsOfType(manifest.TypeNative) {
		a, err := in.installNative(tc.Name)
		if err != nil {
			in.logger.Error("failed to install test", "test", tc.Name, "error", err)
			res.Failures = append(res.Failures, Failure{Test: tc.Name, Err: err})
			continue
		}
		in.logger.Info("installed test", "test", tc.Name, "path", a.InstalledPath)
		res.Artifacts = append(res.Artifacts, a)
		res.Count++
	}

	if libc := suite.TestsOfType(manifest.TypeLibc); len(libc) > 0 {
		a, err := in.installHarness()
		if err != nil {
			in.logger.Error("failed to install libc-test harness", "tests", len(libc), "error", err)
			res.Failures = append(res.Failures, Failure{Test: resolve.LibcTestDir, Err: err})
		} else {
			in.logger.Info("installed libc-test harness", "tests", len(libc), "path", a.InstalledPath)
			res.Artifacts = append(res.Artifacts, a)
			res.Count++
		}
	}

	for _, tc := range suite.Tests {
		if !tc.Type.Known() {
			in.logger.Warn("ignoring test of unknown type", "test", tc.Name, "type", string(tc.Type))
		}
	}

	if res.Count == 0 {
		return res, fmt.Errorf("suite %q: %w", suite.Name, ErrNothingInstalled)
	}
	return res, nil
}

func (in *Installer) installNative(name string) (resolve.Artifact, error) {
	a, err := in.resolver.ResolveNative(name)
	if err != nil {
		return resolve.Artifact{}, err
	}

	dst := resolve.NativeTestPath(in.dest, name)
	if err := copyFile(a.SourcePath, dst, execMode); err != nil {
		return resolve.Artifact{}, errors.Wrap(err, "copy "+a.SourcePath)
	}
	a.InstalledPath = dst
	return a, nil
}

// installHarness installs the libc-test tree as a single unit. Any failed
// step fails the whole unit.
func (in *Installer) installHarness() (resolve.Artifact, error) {
	h, err := in.resolver.ResolveHarness()
	if err != nil {
		return resolve.Artifact{}, err
	}

	root := resolve.LibcTestRoot(in.dest)
	if err := os.MkdirAll(root, 0755); err != nil {
		return resolve.Artifact{}, errors.Wrap(err, "create "+root)
	}

	if err := copyFile(h.RunScript, resolve.LibcRunScript(in.dest), execMode); err != nil {
		return resolve.Artifact{}, errors.Wrap(err, "copy run script")
	}

	// Replace, never merge: binaries dropped from the build must disappear.
	srcDst := filepath.Join(root, "src")
	if err := os.RemoveAll(srcDst); err != nil {
		return resolve.Artifact{}, errors.Wrap(err, "remove "+srcDst)
	}
	if err := copyTree(h.BinDir, srcDst); err != nil {
		return resolve.Artifact{}, errors.Wrap(err, "copy libc-test binaries")
	}

	n, err := chmodMatching(srcDst, binaryPattern, execMode)
	if err != nil {
		return resolve.Artifact{}, errors.Wrap(err, "mark libc-test binaries executable")
	}
	in.logger.Debug("marked libc-test binaries executable", "count", n)

	if h.RuntestBinary != "" {
		if err := copyFile(h.RuntestBinary, filepath.Join(root, resolve.RuntestPath), execMode); err != nil {
			return resolve.Artifact{}, errors.Wrap(err, "copy runtest.exe")
		}
	} else {
		in.logger.Warn("runtest.exe not found in libc-test build, skipping", "harness", h.Root)
	}

	return resolve.Artifact{
		TestName:      resolve.LibcTestDir,
		Kind:          resolve.KindHarness,
		SourcePath:    h.Root,
		InstalledPath: root,
	}, nil
}

// chmodMatching sets mode on every regular file under dir matching pattern.
func chmodMatching(dir, pattern string, mode os.FileMode) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, err
	}
	for _, m := range matches {
		if err := os.Chmod(filepath.Join(dir, filepath.FromSlash(m)), mode); err != nil {
			return 0, err
		}
	}
	return len(matches), nil
}
