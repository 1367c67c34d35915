package magetasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrToolMissing marks an optional tool that is not installed.
var ErrToolMissing = errors.New("tool not installed")

// IsCommandNotFound reports whether err means the program could not be
// started because it is not installed or not on PATH.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	return strings.Contains(err.Error(), "executable file not found")
}

// RunOptional runs a tool that contributors may not have installed. A missing
// binary prints the install hint and returns ErrToolMissing.
func RunOptional(name, install, command string, args ...string) error {
	err := Run(name, command, args...)
	switch {
	case err == nil:
		return nil
	case IsCommandNotFound(err):
		PrintWarning(fmt.Sprintf("%s not found (install: %s)", name, install))
		return fmt.Errorf("%w: %s", ErrToolMissing, command)
	default:
		return fmt.Errorf("%s failed: %w", command, err)
	}
}
