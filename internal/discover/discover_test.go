package discover

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ret42.c")
	writeFile(t, src, "int main(){return 42;}")

	got, err := Discover([]string{src}, ".c")
	require.NoError(t, err)
	assert.Equal(t, []string{src}, got)
}

func TestDiscover_CleansPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	writeFile(t, src, "")

	got, err := Discover([]string{dir + "//./a.c"}, ".c")
	require.NoError(t, err)
	assert.Equal(t, []string{src}, got)
}

func TestDiscover_BadSuffix(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	writeFile(t, src, "hello")

	_, err := Discover([]string{src}, ".c")
	require.ErrorIs(t, err, ErrBadInputSuffix)
	assert.Contains(t, err.Error(), src)
}

func TestDiscover_MissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := Discover([]string{missing}, ".c")
	require.ErrorIs(t, err, ErrUnreadablePath)
	assert.Contains(t, err.Error(), missing)
}

func TestDiscover_WalksDirectoryRecursively(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.c"), "")
	writeFile(t, filepath.Join(dir, "sub", "b.c"), "")
	writeFile(t, filepath.Join(dir, "sub", "deeper", "c.c"), "")
	writeFile(t, filepath.Join(dir, "sub", "README.md"), "")
	writeFile(t, filepath.Join(dir, "sub", "d.h"), "")

	got, err := Discover([]string{dir}, ".c")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.c"),
		filepath.Join(dir, "sub", "b.c"),
		filepath.Join(dir, "sub", "deeper", "c.c"),
	}, got)
}

func TestDiscover_SkipsOutputTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.c"), "")
	writeFile(t, filepath.Join(dir, "ifcc-test-output", "a", "input.c"), "")
	writeFile(t, filepath.Join(dir, "sub", "ifcc-test-output", "b", "input.c"), "")

	got, err := Discover([]string{dir}, ".c", "ifcc-test-output")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.c")}, got)
}

func TestDiscover_SkipNeverAppliesToTheArgumentItself(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ifcc-test-output")
	writeFile(t, filepath.Join(dir, "a", "input.c"), "")

	got, err := Discover([]string{dir}, ".c", "ifcc-test-output")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a", "input.c")}, got)
}

func TestDiscover_KeepsArgumentOrderAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.c")
	b := filepath.Join(dir, "b.c")
	writeFile(t, a, "")
	writeFile(t, b, "")

	got, err := Discover([]string{b, a, b}, ".c")
	require.NoError(t, err)
	assert.Equal(t, []string{b, a, b}, got)
}

func TestDiscover_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "only.txt"), "")

	_, err := Discover([]string{dir}, ".c")
	require.ErrorIs(t, err, ErrNoTestCases)
	assert.Contains(t, err.Error(), dir)
}

func TestDiscover_DefaultSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.c"), "")

	got, err := Discover([]string{dir}, "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.c")
	writeFile(t, ok, "")

	require.NoError(t, Probe([]string{ok}))

	missing := filepath.Join(dir, "gone.c")
	err := Probe([]string{ok, missing})
	require.ErrorIs(t, err, ErrUnreadableSource)
	assert.Contains(t, err.Error(), missing)
}

func TestProbe_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked.c")
	writeFile(t, locked, "")
	require.NoError(t, os.Chmod(locked, 0o000))

	err := Probe([]string{locked})
	require.ErrorIs(t, err, ErrUnreadableSource)
	assert.Contains(t, err.Error(), "permission denied")
}
