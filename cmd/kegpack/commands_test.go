package kegpack_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/kegpack/cmd/kegpack"
	"github.com/arthur-debert/kegpack/internal/version"
	"github.com/arthur-debert/kegpack/pkg/testutil"
)

// isolate points the XDG directories at a temp dir so no user configuration
// or log file leaks into the test
func isolate(t *testing.T) {
	t.Helper()
	home := testutil.NewTestTree(t)
	t.Setenv("XDG_CONFIG_HOME", home.Path("config"))
	t.Setenv("XDG_STATE_HOME", home.Path("state"))
	t.Setenv("NO_COLOR", "1")
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = kegpack.Execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func newSource(t *testing.T) *testutil.TestTree {
	src := testutil.NewTestTree(t)
	src.AddExecutable(t, "bin/gpg2", "gpg2")
	src.AddExecutable(t, "bin/gpgsm", "gpgsm")
	src.AddFile(t, "lib/libfoo.1.dylib", "foo")
	src.AddSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")
	src.AddFile(t, "share/gnupg/gpg-conf.skel", "skel")
	src.AddFile(t, "share/gnupg/help.txt", "help")
	return src
}

func TestRun_Success(t *testing.T) {
	isolate(t)
	src := newSource(t)
	out := testutil.NewTestTree(t)
	dest := &testutil.TestTree{Root: out.Path("MacGPG2")}

	code, stdout, stderr := execute(t, "run", src.Root, dest.Root)
	require.Equal(t, 0, code, stderr)

	dest.AssertRegularFile(t, "bin/gpg2")
	dest.AssertMissing(t, "bin/gpgsm")
	dest.AssertRegularFile(t, "lib/libfoo.1.dylib")
	dest.AssertSymlink(t, "lib/libfoo.dylib", "libfoo.1.dylib")
	dest.AssertRegularFile(t, "share/gnupg/gpg-conf.skel")
	dest.AssertMissing(t, "share/gnupg/help.txt")

	assert.Contains(t, stdout, "==> Collect files to exclude")
	assert.Contains(t, stdout, "==> Prepare files for the installer")
	assert.Contains(t, stdout, "Copied 3 files and 1 symlinks")
}

func TestRun_WritesManifest(t *testing.T) {
	isolate(t)
	src := newSource(t)
	out := testutil.NewTestTree(t)

	code, stdout, stderr := execute(t, "run", "--manifest", out.Path("manifest.yaml"),
		src.Root, out.Path("MacGPG2"))
	require.Equal(t, 0, code, stderr)

	assert.Contains(t, stdout, "Manifest written to")
	assert.Contains(t, out.ReadFile(t, "manifest.yaml"), "lib/libfoo.dylib")
}

func TestRun_DestinationExists(t *testing.T) {
	isolate(t)
	src := newSource(t)
	out := testutil.NewTestTree(t)
	out.AddFile(t, "MacGPG2/keep", "keep")

	code, _, stderr := execute(t, "run", src.Root, out.Path("MacGPG2"))
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Target directory already exists")
	assert.Contains(t, stderr, "use --prune to force removal")
	out.AssertRegularFile(t, "MacGPG2/keep")

	code, _, stderr = execute(t, "run", "--prune", src.Root, out.Path("MacGPG2"))
	require.Equal(t, 0, code, stderr)
	out.AssertMissing(t, "MacGPG2/keep")
	out.AssertRegularFile(t, "MacGPG2/bin/gpg2")
}

func TestRun_MissingSource(t *testing.T) {
	isolate(t)
	out := testutil.NewTestTree(t)

	code, _, stderr := execute(t, "run", out.Path("nope"), out.Path("MacGPG2"))
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Source directory doesn't exist")
	out.AssertMissing(t, "MacGPG2")
}

func TestRun_RequiredVersionFile(t *testing.T) {
	isolate(t)
	src := newSource(t)
	out := testutil.NewTestTree(t)

	code, _, _ := execute(t, "run", "--version-file", out.Path("Version.config"),
		src.Root, out.Path("MacGPG2"))
	assert.Equal(t, 2, code)
	out.AssertMissing(t, "MacGPG2")
}

func TestUsageErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", []string{"run"}, "run expects 2 argument(s), got 0"},
		{"too many arguments", []string{"run", "a", "b", "c"}, "run expects 2 argument(s), got 3"},
		{"unknown flag", []string{"run", "--bogus", "a", "b"}, "invalid flags"},
		{"unknown command", []string{"pack"}, "unknown command"},
		{"bad format", []string{"--format", "html", "rules"}, "unknown format: html"},
		{"no command", []string{}, "no command specified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestPlan(t *testing.T) {
	isolate(t)
	src := newSource(t)

	code, stdout, stderr := execute(t, "plan", src.Root)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "gpg2")
	assert.Contains(t, stdout, "gpg-conf.skel")
	assert.NotContains(t, stdout, "gpgsm")
	assert.Contains(t, stdout, "4 files selected, 2 excluded")

	code, stdout, stderr = execute(t, "plan", "--excluded", src.Root)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "gpgsm")
	assert.Contains(t, stdout, "help.txt")
	assert.NotContains(t, stdout, "gpg2\n")
}

func TestManifest(t *testing.T) {
	isolate(t)
	src := newSource(t)

	code, stdout, stderr := execute(t, "manifest", src.Root)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "lib/libfoo.dylib")
	assert.Contains(t, stdout, "symlink")

	code, digest, stderr := execute(t, "manifest", "--digest", src.Root)
	require.Equal(t, 0, code, stderr)
	assert.Len(t, digest, 17)
	assert.Contains(t, stdout, digest[:16])
}

func TestConfig(t *testing.T) {
	isolate(t)

	code, stdout, stderr := execute(t, "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "categories")
	assert.Contains(t, stdout, "gpg-conf")

	code, stdout, stderr = execute(t, "config", "--template")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "# ")
}

func TestConfig_FlagOverrides(t *testing.T) {
	isolate(t)

	code, stdout, stderr := execute(t, "--payload", "/opt/payload", "--no-cycle-detection", "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "/opt/payload")
	assert.Contains(t, stdout, "detect_cycles = false")
}

func TestRules(t *testing.T) {
	isolate(t)

	code, stdout, stderr := execute(t, "rules")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "share/gnupg")
	assert.Contains(t, stdout, "gpgsm")
}

func TestVersion(t *testing.T) {
	isolate(t)

	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "kegpack "+version.Version)
}

func TestCompletion(t *testing.T) {
	isolate(t)

	code, stdout, stderr := execute(t, "completion", "bash")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "kegpack")

	code, _, _ = execute(t, "completion", "tcsh")
	assert.Equal(t, 1, code)
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
