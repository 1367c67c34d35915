package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func jobIDs(ws *Workspace) []string {
	ids := make([]string, 0, len(ws.Jobs))
	for _, j := range ws.Jobs {
		ids = append(ids, j.ID)
	}
	return ids
}

func TestJobID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"../somedir/subdir/file.c", "somedir-subdir-file"},
		{"./tests/ret42.c", "tests-ret42"},
		{"tests/ret42.c", "tests-ret42"},
		{"ret42.c", "ret42"},
		{"/abs/path/x.c", "abs-path-x"},
		{"tests/v1.2/case.c", "tests-v1.2-case"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, JobID(tt.path, ".c"))
		})
	}
}

func TestJobID_Deterministic(t *testing.T) {
	assert.Equal(t, JobID("a/b/c.c", ".c"), JobID("a/b/c.c", ".c"))
}

func TestCheckWorkingDir(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, DefaultRoot, "tests-ret42")
	require.NoError(t, os.MkdirAll(inside, 0o755))

	require.ErrorIs(t, CheckWorkingDir(inside, ""), ErrInsideOutputRoot)
	require.ErrorIs(t, CheckWorkingDir(filepath.Join(base, DefaultRoot), DefaultRoot), ErrInsideOutputRoot)
	require.NoError(t, CheckWorkingDir(base, ""))
	require.NoError(t, CheckWorkingDir(filepath.Join(base, "ifcc-test-output-old"), ""))
}

func TestPrepare_CreatesJobsWithSourceCopies(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "tests", "a.c")
	b := filepath.Join(src, "tests", "sub", "b.c")
	writeSource(t, a, "int main(){return 0;}")
	writeSource(t, b, "int main(){return 1;}")

	root := filepath.Join(t.TempDir(), "out")
	ws, err := Prepare([]string{b, a}, Options{Root: root, Suffix: ".c"})
	require.NoError(t, err)

	require.Len(t, ws.Jobs, 2)
	assert.Equal(t, root, ws.Root)
	assert.Less(t, ws.Jobs[0].ID, ws.Jobs[1].ID, "jobs are sorted by id")

	for _, job := range ws.Jobs {
		assert.Equal(t, filepath.Join(root, job.ID), job.Dir)
		assert.Equal(t, filepath.Join(job.Dir, SourceName), job.Source)
		want, err := os.ReadFile(job.Origin)
		require.NoError(t, err)
		got, err := os.ReadFile(job.Source)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPrepare_DestroysPreviousRoot(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.c")
	writeSource(t, src, "")

	root := filepath.Join(t.TempDir(), "out")
	stale := filepath.Join(root, "stale-job", "asm-gcc.s")
	writeSource(t, stale, "old")

	_, err := Prepare([]string{src}, Options{Root: root, Suffix: ".c"})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale job directory must be removed")
}

func TestPrepare_DeduplicatesSameFile(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "a.c")
	writeSource(t, a, "int main(){}")

	chdirForTest(t, src)
	root := filepath.Join(t.TempDir(), "out")

	ws, err := Prepare([]string{"a.c", a}, Options{Root: root, Suffix: ".c"})
	require.NoError(t, err)
	require.Len(t, ws.Jobs, 1)
	assert.Equal(t, "a", ws.Jobs[0].ID, "the first spelling wins")
}

func TestPrepare_DeduplicatesSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := t.TempDir()
	a := filepath.Join(src, "real.c")
	link := filepath.Join(src, "alias.c")
	writeSource(t, a, "int main(){}")
	require.NoError(t, os.Symlink(a, link))

	root := filepath.Join(t.TempDir(), "out")
	ws, err := Prepare([]string{a, link}, Options{Root: root, Suffix: ".c"})
	require.NoError(t, err)
	require.Len(t, ws.Jobs, 1)
	assert.Equal(t, a, ws.Jobs[0].Origin)
}

func TestPrepare_DistinctFilesSameContentAreKept(t *testing.T) {
	src := t.TempDir()
	a := filepath.Join(src, "a.c")
	b := filepath.Join(src, "b.c")
	writeSource(t, a, "same")
	writeSource(t, b, "same")

	root := filepath.Join(t.TempDir(), "out")
	ws, err := Prepare([]string{a, b}, Options{Root: root, Suffix: ".c"})
	require.NoError(t, err)
	assert.Len(t, ws.Jobs, 2)
}

func TestPrepare_IncludeFilter(t *testing.T) {
	src := t.TempDir()
	writeSource(t, filepath.Join(src, "foo", "bar.c"), "")
	writeSource(t, filepath.Join(src, "baz.c"), "")
	chdirForTest(t, src)

	only := map[string]bool{"foo-bar": true}
	root := filepath.Join(t.TempDir(), "out")
	ws, err := Prepare([]string{"foo/bar.c", "baz.c"}, Options{
		Root:    root,
		Suffix:  ".c",
		Include: func(id string) bool { return only[id] },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo-bar"}, jobIDs(ws))

	_, err = os.Stat(filepath.Join(root, "baz"))
	assert.True(t, os.IsNotExist(err), "filtered jobs get no directory")
}

func TestPrepare_RejectsInputInsideOutputRoot(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "old", DefaultRoot, "x", "input.c")
	writeSource(t, inside, "")

	_, err := Prepare([]string{inside}, Options{Root: filepath.Join(base, DefaultRoot), Suffix: ".c"})
	require.ErrorIs(t, err, ErrInputInsideOutputRoot)
}

func TestPrepare_RejectsInputInsideRealRootBeforeReset(t *testing.T) {
	root := filepath.Join(t.TempDir(), DefaultRoot)
	stale := filepath.Join(root, "tests-pass", SourceName)
	writeSource(t, stale, "echo 42\n")

	_, err := Prepare([]string{stale}, Options{Root: root, Suffix: ".c"})
	require.ErrorIs(t, err, ErrInputInsideOutputRoot)

	_, statErr := os.Stat(stale)
	assert.NoError(t, statErr, "a rejected run leaves the previous tree alone")
}

func TestPrepare_IDCollision(t *testing.T) {
	src := t.TempDir()
	writeSource(t, filepath.Join(src, "a", "b.c"), "one")
	writeSource(t, filepath.Join(src, "a-b.c"), "two")
	chdirForTest(t, src)

	_, err := Prepare([]string{"a/b.c", "a-b.c"}, Options{Root: filepath.Join(t.TempDir(), "out"), Suffix: ".c"})
	require.ErrorIs(t, err, ErrJobCollision)
}

func TestPrepare_MissingSourceIsSetupError(t *testing.T) {
	_, err := Prepare([]string{filepath.Join(t.TempDir(), "gone.c")}, Options{Root: filepath.Join(t.TempDir(), "out")})
	require.ErrorIs(t, err, ErrSetup)
}
