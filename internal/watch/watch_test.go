package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "net"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"w\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "lib.rs"), []byte("// lib\n"), 0o600))
	return dir
}

func newWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func expectEvent(t *testing.T, w *Watcher, want uint32) {
	t.Helper()
	select {
	case got := <-w.Events():
		assert.Equal(t, want, got)
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for project %d", want)
	}
}

func expectNoEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case got := <-w.Events():
		t.Fatalf("unexpected event for project %d", got)
	case <-time.After(4 * testDebounce):
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestSourceChangeEmitsProjectID(t *testing.T) {
	dir := newProject(t)
	w := newWatcher(t)
	require.NoError(t, w.Add(4, dir))
	assert.True(t, w.Watching(4))

	write(t, filepath.Join(dir, "src", "net", "mod.rs"), "// nested\n")
	expectEvent(t, w, 4)
}

func TestBurstIsDebounced(t *testing.T) {
	dir := newProject(t)
	w := newWatcher(t)
	require.NoError(t, w.Add(1, dir))

	for i := range 5 {
		write(t, filepath.Join(dir, "src", "lib.rs"), string(rune('a'+i)))
	}
	expectEvent(t, w, 1)
	expectNoEvent(t, w)
}

func TestManifestChangeEmits(t *testing.T) {
	dir := newProject(t)
	w := newWatcher(t)
	require.NoError(t, w.Add(2, dir))

	write(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"w2\"\n")
	expectEvent(t, w, 2)
}

func TestNewSourceDirIsWatched(t *testing.T) {
	dir := newProject(t)
	w := newWatcher(t)
	require.NoError(t, w.Add(3, dir))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "tests"), 0o750))
	expectEvent(t, w, 3)

	write(t, filepath.Join(dir, "tests", "api.rs"), "// api\n")
	expectEvent(t, w, 3)
}

func TestUnrelatedFilesAreIgnored(t *testing.T) {
	dir := newProject(t)
	w := newWatcher(t)
	require.NoError(t, w.Add(1, dir))

	write(t, filepath.Join(dir, "README.md"), "# readme\n")
	write(t, filepath.Join(dir, "src", ".lib.rs.swp"), "x")
	expectNoEvent(t, w)
}

func TestRemoveStopsEvents(t *testing.T) {
	dir := newProject(t)
	w := newWatcher(t)
	require.NoError(t, w.Add(1, dir))
	w.Remove(1)
	assert.False(t, w.Watching(1))

	write(t, filepath.Join(dir, "src", "lib.rs"), "// changed\n")
	expectNoEvent(t, w)
}

func TestAddErrors(t *testing.T) {
	w := newWatcher(t)
	assert.Error(t, w.Add(1, filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "file")
	write(t, file, "x")
	assert.Error(t, w.Add(1, file))

	require.NoError(t, w.Close())
	assert.Error(t, w.Add(1, t.TempDir()))
	assert.NoError(t, w.Close(), "closing twice is fine")
}

func TestRelevant(t *testing.T) {
	root := filepath.FromSlash("/p")
	cases := map[string]bool{
		"/p/Cargo.toml":        true,
		"/p/src/lib.rs":        true,
		"/p/tests/it.rs":       true,
		"/p/benches/b.rs":      true,
		"/p/src/lib.rs~":       false,
		"/p/src/.#lib.rs":      false,
		"/p/target/debug/x":    false,
		"/p/Cargo.lock":        false,
		"/p":                   false,
		"/p/sub/Cargo.toml":    false,
		"/p/src/deep/a/b/c.rs": true,
	}
	for path, want := range cases {
		assert.Equal(t, want, relevant(root, filepath.FromSlash(path)), path)
	}
}

func TestOwnerPrefersNestedRoot(t *testing.T) {
	w := newWatcher(t)
	w.roots[1] = filepath.FromSlash("/ws")
	w.roots[2] = filepath.FromSlash("/ws/crates/core")

	id, _, ok := w.ownerLocked(filepath.FromSlash("/ws/crates/core/src/lib.rs"))
	require.True(t, ok)
	assert.Equal(t, uint32(2), id)

	id, _, ok = w.ownerLocked(filepath.FromSlash("/ws/src/main.rs"))
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)

	_, _, ok = w.ownerLocked(filepath.FromSlash("/wsx/src/main.rs"))
	assert.False(t, ok)
}
