package magetasks

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BuildAll builds the harness with version information linked in.
func BuildAll() error {
	PrintH2Header("Build")
	if err := Run("Go Build", "go", "build", "-ldflags", ldflags(getGitVersion(), getGitCommit(), time.Now().UTC()), "-o", BinPath, MainPackage); err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Built: %s", BinPath))
	return nil
}

func ldflags(version, commit string, built time.Time) string {
	pkg := ModulePath + "/internal/version"
	return fmt.Sprintf("-s -w -X '%s.Version=%s' -X '%s.CommitHash=%s' -X '%s.BuildDate=%s'",
		pkg, version, pkg, commit, pkg, built.Format(time.RFC3339))
}

// Clean removes build artifacts and the harness's output tree.
func Clean() error {
	PrintH2Header("Clean")

	for _, path := range []string{"./bin", "./ifcc-test-output", "coverage.out"} {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	_ = exec.Command("go", "clean", "-cache").Run()

	PrintSuccess("Cleaned build artifacts")
	return nil
}

func getGitVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty", "--match=v*").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(out))
}

func getGitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
