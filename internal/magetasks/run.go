package magetasks

import (
	"fmt"
	"os/exec"
	"strings"
)

// Run executes a named step, streaming its output, and reports the result.
func Run(name, command string, args ...string) error {
	PrintInfo(fmt.Sprintf("%s: %s %s", name, command, strings.Join(args, " ")))
	cmd := exec.Command(command, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		PrintError(fmt.Sprintf("%s failed", name))
		return err
	}
	PrintSuccess(name)
	return nil
}
