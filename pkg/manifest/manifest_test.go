package manifest_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/manifest"
	"github.com/arthur-debert/kegpack/pkg/testutil"
)

func buildSample(t *testing.T) *testutil.TestTree {
	t.Helper()

	tree := testutil.NewTestTree(t)
	tree.AddExecutable(t, "bin/gpg2", "gpg")
	tree.AddFile(t, "lib/libfoo.1.dylib", "foo")
	tree.AddSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")
	tree.AddDir(t, "share/empty")
	return tree
}

func TestBuild(t *testing.T) {
	tree := buildSample(t)

	m, err := manifest.Build(filesystem.NewOS(), tree.Root)
	require.NoError(t, err)

	paths := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{
		"bin", "bin/gpg2", "lib", "lib/libfoo.1.dylib", "lib/libfoo.dylib", "share", "share/empty",
	}, paths)

	assert.Equal(t, []string{"bin/gpg2", "lib/libfoo.1.dylib"}, m.Files())
	assert.Equal(t, map[string]string{"lib/libfoo.dylib": "libfoo.1.dylib"}, m.Symlinks())

	gpg := m.Entries[1]
	assert.Equal(t, manifest.KindFile, gpg.Kind)
	assert.Equal(t, "-rwxr-xr-x", gpg.Mode)
	assert.Equal(t, int64(3), gpg.Size)
	assert.Len(t, gpg.Digest, 16)
	assert.Len(t, m.Digest, 16)
}

func TestDigest(t *testing.T) {
	a := buildSample(t)
	b := buildSample(t)

	ma, err := manifest.Build(filesystem.NewOS(), a.Root)
	require.NoError(t, err)
	mb, err := manifest.Build(filesystem.NewOS(), b.Root)
	require.NoError(t, err)
	assert.True(t, ma.Equal(mb), "identical trees at different roots")

	t.Run("content_change", func(t *testing.T) {
		c := buildSample(t)
		c.AddFile(t, "bin/gpg2", "GPG")
		mc, err := manifest.Build(filesystem.NewOS(), c.Root)
		require.NoError(t, err)
		assert.False(t, ma.Equal(mc))
	})

	t.Run("link_target_change", func(t *testing.T) {
		c := buildSample(t)
		require.NoError(t, os.Remove(c.Path("lib/libfoo.dylib")))
		c.AddSymlink(t, "lib/libfoo.dylib", "./libfoo.1.dylib")
		mc, err := manifest.Build(filesystem.NewOS(), c.Root)
		require.NoError(t, err)
		assert.False(t, ma.Equal(mc))
	})

	t.Run("mode_change", func(t *testing.T) {
		c := buildSample(t)
		require.NoError(t, os.Chmod(c.Path("bin/gpg2"), 0700))
		mc, err := manifest.Build(filesystem.NewOS(), c.Root)
		require.NoError(t, err)
		assert.False(t, ma.Equal(mc))
	})
}

func TestEncodeDecode(t *testing.T) {
	tree := buildSample(t)
	m, err := manifest.Build(filesystem.NewOS(), tree.Root)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	assert.Contains(t, buf.String(), "target: libfoo.1.dylib")

	decoded, err := manifest.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m, decoded)
}

func TestWrite(t *testing.T) {
	tree := buildSample(t)
	out := testutil.NewTestTree(t)
	m, err := manifest.Build(filesystem.NewOS(), tree.Root)
	require.NoError(t, err)

	require.NoError(t, m.Write(filesystem.NewOS(), out.Path("manifest.yaml")))
	assert.Contains(t, out.ReadFile(t, "manifest.yaml"), "digest: "+m.Digest)

	err = m.Write(testutil.NewFailingFS(testutil.FailOp("Create")), out.Path("other.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}

func TestBuild_MissingRoot(t *testing.T) {
	tree := testutil.NewTestTree(t)

	_, err := manifest.Build(filesystem.NewOS(), tree.Path("missing"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))
}
