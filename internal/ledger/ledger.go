// Package ledger persists the identifiers of the jobs that failed on the
// previous run, so a later run can be restricted to them.
//
// The file is private state between runs of the same tool. It is written as
// RFC 8785 canonical JSON, which makes equal failure sets byte-identical on disk.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	jcs "github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// DefaultName is the ledger file name, placed next to the harness executable.
const DefaultName = "test-failed.json"

const formatVersion = 1

// Set is a set of job identifiers.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id.
func (s Set) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is present. A nil set contains nothing.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type document struct {
	Version int      `json:"version"`
	Failed  []string `json:"failed"`
}

// DefaultPath places the ledger next to the running executable, falling back
// to the current directory when the executable cannot be located.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultName)
}

// Load reads the ledger at path. A missing, unreadable or corrupt ledger
// yields an empty set; it is never an error.
func Load(path string) Set {
	// #nosec G304 -- path is the harness's own ledger location.
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version != formatVersion {
		return Set{}
	}
	return NewSet(doc.Failed...)
}

// Save replaces the ledger at path with exactly ids. The write goes to a
// temporary file in the same directory and is renamed into place.
func Save(path string, ids Set) error {
	doc := document{Version: formatVersion, Failed: ids.Sorted()}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return fmt.Errorf("canonicalizing ledger: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(canon, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing ledger %s: %w", path, err)
	}
	return nil
}
