package magetasks

import "fmt"

// QualityCheck runs linters, tests and the build.
func QualityCheck() error {
	PrintH1Header("difftest Quality Assurance")

	if err := LintAll(); err != nil {
		PrintWarning("Linting issues found")
	}
	if err := TestAll(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	PrintSuccess("Quality checks complete")
	return nil
}
