package install

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starry-os/starry-test-harness/internal/manifest"
	"github.com/starry-os/starry-test-harness/internal/resolve"
)

const arch = "x86_64-unknown-linux-musl"

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
}

type buildTree struct {
	root   string
	layout resolve.Layout
}

func newBuildTree(t *testing.T) *buildTree {
	t.Helper()
	root := t.TempDir()
	return &buildTree{root: root, layout: resolve.Layout{SourceRoot: root, TargetArch: arch}}
}

func (b *buildTree) addNative(t *testing.T, name string) {
	t.Helper()
	writeFile(t, filepath.Join(b.layout.DepsDir(), name+"-0123456789abcdef"), "bin:"+name, 0755)
}

func (b *buildTree) addHarness(t *testing.T, withRun, withRuntest bool) {
	t.Helper()
	h := b.layout.HarnessRoot()
	if withRun {
		writeFile(t, filepath.Join(h, "run"), "#!/bin/sh\n", 0644)
	}
	writeFile(t, filepath.Join(h, "libc-test-bins", "src", "functional", "argv.exe"), "argv", 0644)
	writeFile(t, filepath.Join(h, "libc-test-bins", "src", "regression", "malloc-oom.exe"), "oom", 0644)
	writeFile(t, filepath.Join(h, "libc-test-bins", "src", "functional", "README"), "docs", 0644)
	if withRuntest {
		writeFile(t, filepath.Join(h, "libc-test-bins", "runtest.exe"), "runtest", 0644)
	}
}

func (b *buildTree) installer(dest string) *Installer {
	return New(resolve.NewResolver(b.layout, nil), dest, nil)
}

func suite(tests ...manifest.TestCase) *manifest.Suite {
	return &manifest.Suite{Name: "ci", Tests: tests}
}

func native(name string) manifest.TestCase {
	return manifest.TestCase{Name: name, Type: manifest.TypeNative}
}

func libc(name string) manifest.TestCase {
	return manifest.TestCase{Name: name, Type: manifest.TypeLibc}
}

func mode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info.Mode().Perm()
}

// snapshot maps every file under root to its content and mode.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[rel] = mode(t, path).String() + " " + string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestInstall_Native(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)
	b.addNative(t, "file_io_basic")
	b.addNative(t, "process_spawn")
	dest := t.TempDir()

	res, err := b.installer(dest).Install(suite(native("file_io_basic"), native("process_spawn"), native("missing")))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.Count != 2 {
		t.Errorf("Count = %d, want 2", res.Count)
	}
	if len(res.Failures) != 1 || res.Failures[0].Test != "missing" {
		t.Errorf("Failures = %+v, want one for missing", res.Failures)
	}

	path := filepath.Join(dest, "native-tests", "file_io_basic")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "bin:file_io_basic" {
		t.Errorf("content = %q", data)
	}
	if got := mode(t, path); got != 0755 {
		t.Errorf("mode = %v, want 0755", got)
	}
	if res.Artifacts[0].InstalledPath != path {
		t.Errorf("InstalledPath = %q, want %q", res.Artifacts[0].InstalledPath, path)
	}
}

func TestInstall_Harness(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)
	b.addHarness(t, true, true)
	dest := t.TempDir()

	// Stale file from a previous install must not survive.
	writeFile(t, filepath.Join(dest, "libc-test", "src", "functional", "stale.exe"), "old", 0755)

	res, err := b.installer(dest).Install(suite(libc("libc-functional"), libc("libc-regression")))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1 for the whole harness", res.Count)
	}

	want := map[string]string{
		"libc-test/run":                           "-rwxr-xr-x #!/bin/sh\n",
		"libc-test/src/functional/argv.exe":       "-rwxr-xr-x argv",
		"libc-test/src/functional/README":         "-rw-r--r-- docs",
		"libc-test/src/regression/malloc-oom.exe": "-rwxr-xr-x oom",
		"libc-test/src/common/runtest.exe":        "-rwxr-xr-x runtest",
	}
	if diff := cmp.Diff(want, snapshot(t, dest)); diff != "" {
		t.Errorf("installed tree mismatch (-want +got):\n%s", diff)
	}
}

func TestInstall_HarnessWithoutRuntest(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)
	b.addHarness(t, true, false)
	dest := t.TempDir()

	res, err := b.installer(dest).Install(suite(libc("libc-functional")))
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1", res.Count)
	}
	if _, err := os.Stat(filepath.Join(dest, "libc-test", "src", "common", "runtest.exe")); !os.IsNotExist(err) {
		t.Errorf("runtest.exe stat error = %v, want not exist", err)
	}
}

func TestInstall_HarnessMissingRun(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)
	b.addHarness(t, false, true)

	res, err := b.installer(t.TempDir()).Install(suite(libc("libc-functional")))
	if !stderrors.Is(err, ErrNothingInstalled) {
		t.Fatalf("Install() error = %v, want ErrNothingInstalled", err)
	}
	if res.Count != 0 {
		t.Errorf("Count = %d, want 0", res.Count)
	}
	if len(res.Failures) != 1 || res.Failures[0].Test != "libc-test" {
		t.Errorf("Failures = %+v", res.Failures)
	}
}

func TestInstall_Mixed(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)
	b.addNative(t, "file_io_basic")
	b.addHarness(t, false, false)

	unknown := manifest.TestCase{Name: "bench", Type: "python"}
	res, err := b.installer(t.TempDir()).Install(suite(native("file_io_basic"), libc("libc"), unknown))
	if err != nil {
		t.Fatalf("Install() error = %v; one native test installed", err)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1 (broken harness contributes nothing)", res.Count)
	}
}

func TestInstall_EmptySuite(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)

	res, err := b.installer(t.TempDir()).Install(suite())
	if !stderrors.Is(err, ErrNothingInstalled) {
		t.Errorf("Install() error = %v, want ErrNothingInstalled", err)
	}
	if res == nil || res.Count != 0 {
		t.Errorf("Result = %+v", res)
	}
}

func TestInstall_Idempotent(t *testing.T) {
	t.Parallel()
	b := newBuildTree(t)
	b.addNative(t, "file_io_basic")
	b.addHarness(t, true, true)
	dest := t.TempDir()
	s := suite(native("file_io_basic"), libc("libc"))

	first, err := b.installer(dest).Install(s)
	if err != nil {
		t.Fatalf("first Install() error = %v", err)
	}
	before := snapshot(t, dest)

	second, err := b.installer(dest).Install(s)
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if first.Count != second.Count {
		t.Errorf("Count changed: %d then %d", first.Count, second.Count)
	}
	if diff := cmp.Diff(before, snapshot(t, dest)); diff != "" {
		t.Errorf("tree changed on reinstall (-first +second):\n%s", diff)
	}
}
