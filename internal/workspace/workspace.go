// Package workspace builds the per-run output tree: one fresh root, and one
// job directory per test-case holding a private copy of its source.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dkoosis/difftest/internal/console"
)

const (
	// DefaultRoot is the output directory name used when none is configured.
	DefaultRoot = "ifcc-test-output"

	// SourceName is the canonical name of the source copy inside a job directory.
	SourceName = "input.c"
)

var (
	// ErrInsideOutputRoot is returned when the harness is started from within an output tree.
	ErrInsideOutputRoot = errors.New("cannot run from within the output directory")
	// ErrInputInsideOutputRoot is returned for a test-case that lives in an output tree.
	ErrInputInsideOutputRoot = errors.New("input filename is within output directory")
	// ErrJobCollision is returned when two different files flatten to the same job id.
	ErrJobCollision = errors.New("job identifier collision")
	// ErrSetup wraps filesystem failures while building the tree.
	ErrSetup = errors.New("cannot prepare workspace")
)

// Job is one test-case's unit of work.
type Job struct {
	ID     string // flattened, directory-safe identifier
	Dir    string // absolute job directory
	Source string // absolute path of the source copy
	Origin string // path as discovered
}

// Workspace is the prepared output tree.
type Workspace struct {
	Root string
	Jobs []Job
}

// Options controls Prepare.
type Options struct {
	// Root is the output directory; relative paths resolve against the current directory.
	Root string
	// Suffix is stripped from file names when computing job ids.
	Suffix string
	// Include, when non-nil, limits job creation to ids it accepts.
	Include func(id string) bool
	Console *console.Console
}

// JobID flattens a source path into a single directory name:
// "../somedir/subdir/file.c" becomes "somedir-subdir-file".
func JobID(path, suffix string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimLeft(p, "./")
	p = strings.TrimSuffix(p, suffix)
	return strings.ReplaceAll(p, "/", "-")
}

// CheckWorkingDir refuses a working directory that sits inside an output
// tree named rootName, so a run can never test its own output.
func CheckWorkingDir(cwd, rootName string) error {
	if rootName == "" {
		rootName = DefaultRoot
	}
	if resolved, err := filepath.EvalSymlinks(cwd); err == nil {
		cwd = resolved
	}
	if hasComponent(cwd, filepath.Base(rootName)) {
		return ErrInsideOutputRoot
	}
	return nil
}

func hasComponent(path, name string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == name {
			return true
		}
	}
	return false
}

// Prepare destroys any previous output root, creates a fresh one, and makes a
// job for every file. Files resolving to the same underlying file collapse into
// the first job. Jobs come back sorted by id.
func Prepare(files []string, opts Options) (*Workspace, error) {
	rootName := opts.Root
	if rootName == "" {
		rootName = DefaultRoot
	}
	root, err := filepath.Abs(rootName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	// Inputs are checked while they still exist: reset may remove a stale tree
	// they point into.
	keys := make([]fileKey, len(files))
	for i, file := range files {
		key, err := keyOf(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSetup, err)
		}
		resolved, err := resolve(file)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSetup, err)
		}
		if hasComponent(resolved, filepath.Base(rootName)) {
			return nil, fmt.Errorf("%w: %s", ErrInputInsideOutputRoot, file)
		}
		keys[i] = key
	}

	if err := reset(root); err != nil {
		return nil, err
	}

	ws := &Workspace{Root: root}
	seen := make(map[fileKey]string)
	byID := make(map[string]string)

	for i, file := range files {
		opts.Console.Debugf(2, "PREPARING %s", file)
		key := keys[i]

		id := JobID(file, opts.Suffix)
		if opts.Include != nil && !opts.Include(id) {
			continue
		}
		if first, dup := seen[key]; dup {
			opts.Console.Debugf(1, "skipping %s: same file as %s", file, first)
			continue
		}
		if first, taken := byID[id]; taken {
			return nil, fmt.Errorf("%w: %s and %s both map to %q", ErrJobCollision, first, file, id)
		}

		job, err := createJob(root, id, file)
		if err != nil {
			return nil, err
		}
		seen[key] = file
		byID[id] = file
		ws.Jobs = append(ws.Jobs, job)
	}

	sort.Slice(ws.Jobs, func(i, j int) bool { return ws.Jobs[i].ID < ws.Jobs[j].ID })

	if opts.Console != nil && opts.Console.Debug > 0 {
		ids := make([]string, len(ws.Jobs))
		for i, j := range ws.Jobs {
			ids[i] = j.ID
		}
		opts.Console.Debugf(1, "list of test-cases after deduplication: %s", strings.Join(ids, " "))
	}
	return ws, nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func reset(root string) error {
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("%w: removing %s: %w", ErrSetup, root, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSetup, err)
	}
	return nil
}

func createJob(root, id, origin string) (Job, error) {
	dir := filepath.Join(root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return Job{}, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	dst := filepath.Join(dir, SourceName)
	if err := copyFile(origin, dst); err != nil {
		return Job{}, fmt.Errorf("%w: copying %s: %w", ErrSetup, origin, err)
	}
	return Job{ID: id, Dir: dir, Source: dst, Origin: origin}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
