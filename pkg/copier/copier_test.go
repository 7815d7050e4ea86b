package copier_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kegpack/pkg/copier"
	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/fileset"
	"github.com/arthur-debert/kegpack/pkg/testutil"
)

func copyAll(t *testing.T, c *copier.Copier, src, dst *testutil.TestTree, rels ...string) (*copier.Result, error) {
	t.Helper()
	return c.Copy(src.Root, dst.Root, fileset.New(src.Paths(rels...)...))
}

func TestCopy_SiblingSymlinks(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "lib/libfoo.1.dylib", "foo")
	src.AddSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")
	src.AddSymlink(t, "lib/libfoo.2.dylib", "libfoo.1.dylib")

	result, err := copyAll(t, copier.New(), src, dst,
		"lib/libfoo.1.dylib", "lib/libfoo.dylib", "lib/libfoo.2.dylib")
	require.NoError(t, err)

	dst.AssertRegularFile(t, "lib/libfoo.1.dylib")
	dst.AssertSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")
	dst.AssertSymlink(t, "lib/libfoo.2.dylib", "libfoo.1.dylib")
	assert.Equal(t, "foo", dst.ReadFile(t, "lib/libfoo.dylib"))

	assert.Equal(t, dst.Paths("lib/libfoo.1.dylib"), result.Copied)
	assert.Len(t, result.Linked, 2)
	assert.Empty(t, result.Dangling)
	assert.ElementsMatch(t,
		dst.Paths("lib/libfoo.dylib", "lib/libfoo.2.dylib"),
		result.Groups[src.Path("lib/libfoo.1.dylib")])
}

func TestCopy_ChainedLinksPointAtCanonicalTarget(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "lib/libbar.1.2.dylib", "bar")
	src.AddSymlink(t, "lib/libbar.1.dylib", "libbar.1.2.dylib")
	src.AddSymlink(t, "lib/libbar.dylib", "libbar.1.dylib")

	_, err := copyAll(t, copier.New(), src, dst,
		"lib/libbar.1.2.dylib", "lib/libbar.1.dylib", "lib/libbar.dylib")
	require.NoError(t, err)

	dst.AssertRegularFile(t, "lib/libbar.1.2.dylib")
	dst.AssertSymlink(t, "lib/libbar.1.dylib", "libbar.1.2.dylib")
	dst.AssertSymlink(t, "lib/libbar.dylib", "libbar.1.2.dylib")
}

func TestCopy_OnePhysicalCopyPerTarget(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "lib/real/libbaz.dylib", "baz")
	src.AddSymlink(t, "lib/alias", "real")

	// Both paths resolve to the same file through a directory link
	result, err := copyAll(t, copier.New(), src, dst,
		"lib/alias/libbaz.dylib", "lib/real/libbaz.dylib")
	require.NoError(t, err)

	dst.AssertRegularFile(t, "lib/alias/libbaz.dylib")
	dst.AssertSymlink(t, "lib/real/libbaz.dylib", "../alias/libbaz.dylib")
	assert.Len(t, result.Copied, 1)
	assert.Equal(t, "baz", dst.ReadFile(t, "lib/real/libbaz.dylib"))
}

func TestCopy_ReportsDanglingLinks(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "lib/libfoo.1.dylib", "foo")
	src.AddSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")

	// The link is selected but its target is not
	result, err := copyAll(t, copier.New(), src, dst, "lib/libfoo.dylib")
	require.NoError(t, err)

	dst.AssertSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")
	dst.AssertMissing(t, "lib/libfoo.1.dylib")
	assert.Equal(t, dst.Paths("lib/libfoo.dylib"), result.Dangling)
}

func TestCopy_PreservesModeAndTimes(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	path := src.AddFileMode(t, "bin/gpg2", "#!/bin/sh\n", 0750)
	stamp := time.Date(2020, 5, 17, 10, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	result, err := copyAll(t, copier.New(), src, dst, "bin/gpg2")
	require.NoError(t, err)

	info, err := os.Stat(dst.Path("bin/gpg2"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0750), info.Mode().Perm())
	assert.True(t, stamp.Equal(info.ModTime()), "mtime %s", info.ModTime())
	assert.Equal(t, "#!/bin/sh\n", dst.ReadFile(t, "bin/gpg2"))
	assert.Contains(t, result.Metadata, dst.Path("bin/gpg2"))
}

func TestCopy_OwnershipFailureIsAWarning(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "share/gnupg/help.txt", "help")

	fsys := testutil.NewFailingFS(testutil.FailOp("Lchown"))
	result, err := copyAll(t, copier.New(copier.WithFS(fsys)), src, dst, "share/gnupg/help.txt")
	require.NoError(t, err)

	dst.AssertRegularFile(t, "share/gnupg/help.txt")
	meta := result.Metadata[dst.Path("share/gnupg/help.txt")]
	assert.False(t, meta.Applied)
	require.NotEmpty(t, meta.Warnings)
	assert.Contains(t, meta.Warnings[0], "owner not preserved")
	assert.NotEmpty(t, result.Warnings())
}

func TestCopy_WriteFailureAborts(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "bin/a", "a")
	src.AddFile(t, "bin/b", "b")
	src.AddFile(t, "bin/c", "c")

	failing := dst.Path("bin/b")
	fsys := testutil.NewFailingFS(func(op, path string) error {
		if op == "Create" && path == failing {
			return os.ErrPermission
		}
		return nil
	})

	result, err := copyAll(t, copier.New(copier.WithFS(fsys)), src, dst, "bin/a", "bin/b", "bin/c")
	require.Error(t, err)
	assert.True(t, errors.IsCopyFailure(err))
	assert.Equal(t, errors.ExitFailure, errors.ExitCode(err))
	assert.Equal(t, failing, errors.GetErrorDetails(err)["path"])
	assert.NotEmpty(t, errors.GetErrorDetails(err)[errors.DetailStack])

	// Partial state is left in place
	dst.AssertRegularFile(t, "bin/a")
	dst.AssertMissing(t, "bin/c")
	assert.Equal(t, dst.Paths("bin/a"), result.Copied)
}

func TestCopy_SymlinkFailureAborts(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "lib/libfoo.1.dylib", "foo")
	src.AddSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")

	fsys := testutil.NewFailingFS(testutil.FailOp("Symlink"))
	_, err := copyAll(t, copier.New(copier.WithFS(fsys)), src, dst, "lib/libfoo.1.dylib", "lib/libfoo.dylib")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkCreate))
	assert.True(t, errors.IsCopyFailure(err))

	dst.AssertRegularFile(t, "lib/libfoo.1.dylib")
	dst.AssertMissing(t, "lib/libfoo.dylib")
}

func TestCopy_DanglingSourceLinkIsRecreated(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddFile(t, "lib/libfoo.1.dylib", "foo")
	src.AddSymlink(t, "lib/libold.dylib", "libold.3.dylib")

	result, err := copyAll(t, copier.New(), src, dst, "lib/libfoo.1.dylib", "lib/libold.dylib")
	require.NoError(t, err)

	dst.AssertRegularFile(t, "lib/libfoo.1.dylib")
	dst.AssertSymlink(t, "lib/libold.dylib", "libold.3.dylib")
	assert.Equal(t, dst.Paths("lib/libold.dylib"), result.Dangling)
	assert.Equal(t, dst.Paths("lib/libold.dylib"), result.Groups[src.Path("lib/libold.3.dylib")])
}

func TestCopy_DanglingLinkChainUsesLastTarget(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddSymlink(t, "lib/libintl.dylib", "libintl.8.dylib")
	src.AddSymlink(t, "lib/libintl.8.dylib", "../opt/gettext/lib/libintl.8.dylib")

	result, err := copyAll(t, copier.New(), src, dst, "lib/libintl.dylib", "lib/libintl.8.dylib")
	require.NoError(t, err)

	dst.AssertSymlink(t, "lib/libintl.dylib", "libintl.8.dylib")
	dst.AssertSymlink(t, "lib/libintl.8.dylib", "../opt/gettext/lib/libintl.8.dylib")
	assert.ElementsMatch(t, dst.Paths("lib/libintl.dylib", "lib/libintl.8.dylib"), result.Dangling)
}

func TestCopy_MissingSourceAborts(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	src.AddDir(t, "lib")

	_, err := copyAll(t, copier.New(), src, dst, "lib/libgone.dylib")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCopyFailed))
	assert.Equal(t, src.Path("lib/libgone.dylib"), errors.GetErrorDetails(err)["path"])
}

func TestCopy_PathOutsideSource(t *testing.T) {
	src := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	other := testutil.NewTestTree(t)
	stray := other.AddFile(t, "stray", "x")

	_, err := copier.New().Copy(src.Root, dst.Root, fileset.New(stray))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCopyFailed))
}

func TestRelativeSymlink(t *testing.T) {
	tree := testutil.NewTestTree(t)
	tree.AddFile(t, "lib/real/libfoo.dylib", "foo")
	tree.AddDir(t, "lib/links")

	wd, err := os.Getwd()
	require.NoError(t, err)

	fsys := testutil.NewFailingFS(nil)
	text, err := copier.RelativeSymlink(fsys, tree.Path("lib/real/libfoo.dylib"), tree.Path("lib/links/libfoo.dylib"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("..", "real", "libfoo.dylib"), text)
	tree.AssertSymlink(t, "lib/links/libfoo.dylib", "../real/libfoo.dylib")
	assert.Equal(t, "foo", tree.ReadFile(t, "lib/links/libfoo.dylib"))

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, after)
}

func TestCopyTree(t *testing.T) {
	payload := testutil.NewTestTree(t)
	dst := testutil.NewTestTree(t)
	payload.AddExecutable(t, "libexec/fixGpgHome", "#!/bin/sh\n")
	payload.AddFile(t, "share/gnupg/sks-keyservers.netCA.pem", "ca")
	payload.AddFile(t, "shared/notes.txt", "notes")
	payload.AddSymlink(t, "share/gnupg/notes.txt", "../../shared/notes.txt")
	dst.AddFile(t, "share/gnupg/sks-keyservers.netCA.pem", "old")

	result, err := copier.New().CopyTree(payload.Path("share"), dst.Path("share"))
	require.NoError(t, err)

	assert.Equal(t, "ca", dst.ReadFile(t, "share/gnupg/sks-keyservers.netCA.pem"))
	// Links are followed
	dst.AssertRegularFile(t, "share/gnupg/notes.txt")
	assert.Equal(t, "notes", dst.ReadFile(t, "share/gnupg/notes.txt"))
	assert.Len(t, result.Copied, 2)

	_, err = copier.New().CopyTree(payload.Path("libexec"), dst.Path("libexec"))
	require.NoError(t, err)
	info, err := os.Stat(dst.Path("libexec/fixGpgHome"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCopyTree_MissingSource(t *testing.T) {
	dst := testutil.NewTestTree(t)

	_, err := copier.New().CopyTree(filepath.Join(dst.Root, "nope"), dst.Path("share"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPayloadNotFound))
}

func TestResultWarnings(t *testing.T) {
	result := &copier.Result{Metadata: map[string]copier.MetadataResult{
		"/b": {Warnings: []string{"second"}},
		"/a": {Warnings: []string{"first"}},
		"/c": {Applied: true},
	}}

	got := result.Warnings()
	assert.Equal(t, []string{"/a: first", "/b: second"}, got)
	assert.True(t, strings.HasPrefix(got[0], "/a"))
}
