package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTree is a real directory tree rooted in a test temp dir
type TestTree struct {
	Root string // Absolute, symlink-resolved root directory
}

// NewTestTree creates an empty tree. The root is resolved so that paths
// returned by the enumerator compare equal to the ones built here.
func NewTestTree(t *testing.T) *TestTree {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return &TestTree{Root: root}
}

// Path returns the absolute path of rel inside the tree
func (tt *TestTree) Path(rel string) string {
	return filepath.Join(tt.Root, rel)
}

// Paths returns the absolute paths of several relative paths
func (tt *TestTree) Paths(rels ...string) []string {
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = tt.Path(rel)
	}
	return out
}

// AddFile writes a regular file, creating parent directories
func (tt *TestTree) AddFile(t *testing.T, rel, content string) string {
	t.Helper()
	return tt.AddFileMode(t, rel, content, 0644)
}

// AddExecutable writes an executable file, creating parent directories
func (tt *TestTree) AddExecutable(t *testing.T, rel, content string) string {
	t.Helper()
	return tt.AddFileMode(t, rel, content, 0755)
}

// AddFileMode writes a regular file with the given permissions
func (tt *TestTree) AddFileMode(t *testing.T, rel, content string, perm os.FileMode) string {
	t.Helper()

	path := tt.Path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

// AddDir creates a directory
func (tt *TestTree) AddDir(t *testing.T, rel string) string {
	t.Helper()

	path := tt.Path(rel)
	require.NoError(t, os.MkdirAll(path, 0755))
	return path
}

// AddSymlink creates rel as a symlink whose content is target, verbatim
func (tt *TestTree) AddSymlink(t *testing.T, rel, target string) string {
	t.Helper()

	path := tt.Path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.Symlink(target, path))
	return path
}

// ReadFile returns the content of rel
func (tt *TestTree) ReadFile(t *testing.T, rel string) string {
	t.Helper()

	data, err := os.ReadFile(tt.Path(rel))
	require.NoError(t, err)
	return string(data)
}

// AssertRegularFile fails unless rel is a regular file (not a symlink)
func (tt *TestTree) AssertRegularFile(t *testing.T, rel string) {
	t.Helper()

	info, err := os.Lstat(tt.Path(rel))
	require.NoError(t, err, "expected %s to exist", rel)
	require.True(t, info.Mode().IsRegular(), "expected %s to be a regular file, got %s", rel, info.Mode())
}

// AssertSymlink fails unless rel is a symlink with the given content
func (tt *TestTree) AssertSymlink(t *testing.T, rel, target string) {
	t.Helper()

	info, err := os.Lstat(tt.Path(rel))
	require.NoError(t, err, "expected %s to exist", rel)
	require.True(t, info.Mode()&os.ModeSymlink != 0, "expected %s to be a symlink, got %s", rel, info.Mode())

	got, err := os.Readlink(tt.Path(rel))
	require.NoError(t, err)
	require.Equal(t, target, got, "symlink target of %s", rel)
}

// AssertMissing fails if rel exists
func (tt *TestTree) AssertMissing(t *testing.T, rel string) {
	t.Helper()

	_, err := os.Lstat(tt.Path(rel))
	require.True(t, os.IsNotExist(err), "expected %s to be absent", rel)
}
