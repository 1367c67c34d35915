package magetasks

import "errors"

// LintAll runs all linters.
func LintAll() error {
	var errs []error

	// Go format
	if err := LintFormat(); err != nil {
		errs = append(errs, err)
	}

	// Go vet
	if err := LintVet(); err != nil {
		errs = append(errs, err)
	}

	// Staticcheck (optional)
	if err := LintStaticcheck(); err != nil && !errors.Is(err, ErrToolMissing) {
		errs = append(errs, err)
	}

	// Golangci-lint (optional)
	if err := LintGolangci(); err != nil && !errors.Is(err, ErrToolMissing) {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	PrintSuccess("All linters passed")
	return nil
}

// LintFormat checks code formatting.
func LintFormat() error {
	return Run("Go Format", "gofmt", "-l", ".")
}

// LintVet runs go vet.
func LintVet() error {
	return Run("Go Vet", "go", "vet", "./...")
}

const (
	staticcheckInstall = "go install honnef.co/go/tools/cmd/staticcheck@latest"
	golangciInstall    = "go install github.com/golangci/golangci-lint/cmd/golangci-lint@latest"
	golangciDisabled   = "--disable=exhaustruct,varnamelen,ireturn,wrapcheck,nlreturn,gochecknoglobals,mnd,depguard,tagalign,tenv"
)

// LintStaticcheck runs staticcheck.
func LintStaticcheck() error {
	return RunOptional("Staticcheck", staticcheckInstall, "staticcheck", "./...")
}

// LintGolangci runs golangci-lint.
func LintGolangci() error {
	return RunOptional("Golangci-lint", golangciInstall, "golangci-lint", "run", golangciDisabled, "--timeout=5m", "./...")
}

// LintGolangciFix runs golangci-lint with auto-fixes.
func LintGolangciFix() error {
	return RunOptional("Golangci-lint Fix", golangciInstall, "golangci-lint", "run", "--fix", golangciDisabled, "--timeout=5m", "./...")
}
