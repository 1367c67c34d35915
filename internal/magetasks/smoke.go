package magetasks

import (
	"fmt"
	"os"
)

// Smoke builds the harness and runs it over a directory of test-cases with
// the given wrapper, the way a student would.
func Smoke(dir, wrapper string) error {
	PrintH2Header("Smoke")
	if _, err := os.Stat(dir); err != nil {
		PrintWarning(fmt.Sprintf("no test-cases at %s; skipping", dir))
		return nil
	}
	if err := BuildAll(); err != nil {
		return err
	}
	args := []string{"--format", "llm"}
	if wrapper != "" {
		args = append(args, "-w", wrapper)
	}
	return Run("Difftest", BinPath, append(args, dir)...)
}
