package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureParentDir_CreatesNestedDirectories(t *testing.T) {
	tmp := t.TempDir()

	got, err := EnsureParentDir(filepath.Join(tmp, "data", "db", "wellkeeper.db"))
	require.NoError(t, err)

	want := filepath.Join(tmp, "data", "db")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureParentDir_RelativeToWorkingDir(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureParentDir("wellkeeper.db")
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(first)
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(tmp)
	require.NoError(t, err)
	require.Equal(t, expected, resolved)

	second, err := EnsureParentDir("wellkeeper.db")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o660))

	_, err := EnsureParentDir(filepath.Join(blocker, "wellkeeper.db"))
	require.Error(t, err, "should fail when a file sits where the directory should be")
}
