//go:build unix

package workspace

import (
	"fmt"
	"os"
	"syscall"
)

// fileKey names an underlying file independently of the path used to reach it.
type fileKey struct {
	dev, ino uint64
}

// keyOf keys a file by device and inode, so symlinks, hard links and
// relative/absolute spellings of one file compare equal.
func keyOf(path string) (fileKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileKey{}, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, fmt.Errorf("no inode information for %s", path)
	}
	return fileKey{dev: uint64(st.Dev), ino: st.Ino}, nil //nolint:unconvert // Dev is int32 on darwin
}
