// Package discover turns user-supplied paths into the flat list of source
// files a run will test.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultSuffix is the recognized source-file suffix.
const DefaultSuffix = ".c"

var (
	// ErrBadInputSuffix is returned when a file argument lacks the source suffix.
	ErrBadInputSuffix = errors.New("incorrect filename suffix")
	// ErrUnreadablePath is returned for arguments that are neither a file nor a directory.
	ErrUnreadablePath = errors.New("cannot read input path")
	// ErrNoTestCases is returned when discovery matches nothing.
	ErrNoTestCases = errors.New("found no test-case")
	// ErrUnreadableSource is returned when a matched file fails the read probe.
	ErrUnreadableSource = errors.New("cannot open test-case")
)

// Discover resolves paths into source files carrying suffix. Directories are
// walked recursively, except subdirectories named in skip (a stale output
// tree). Order follows the arguments, then walk order; the same file may
// appear more than once.
func Discover(paths []string, suffix string, skip ...string) ([]string, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}

	var found []string
	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w `%s'", ErrUnreadablePath, p)
		}

		switch {
		case info.Mode().IsRegular():
			if !strings.HasSuffix(p, suffix) {
				return nil, fmt.Errorf("%w (should be '%s'): %s", ErrBadInputSuffix, suffix, p)
			}
			found = append(found, p)
		case info.IsDir():
			matches, err := walk(p, suffix, skip)
			if err != nil {
				return nil, fmt.Errorf("%w `%s': %w", ErrUnreadablePath, p, err)
			}
			found = append(found, matches...)
		default:
			return nil, fmt.Errorf("%w `%s'", ErrUnreadablePath, p)
		}
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w in: %s", ErrNoTestCases, strings.Join(paths, " "))
	}
	return found, nil
}

func walk(root, suffix string, skip []string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && slices.Contains(skip, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches, err
}

// Probe opens every file once for reading so a bad argument fails the run
// before any workspace exists.
func Probe(files []string) error {
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = pathErr.Err
			}
			return fmt.Errorf("%w: %v: %s", ErrUnreadableSource, err, name)
		}
		_ = f.Close()
	}
	return nil
}
