package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks a resolved configuration that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// CliFlags holds command-line values. The *Set fields record whether the flag
// was given explicitly, so zero values can still override lower layers.
type CliFlags struct {
	Wrapper    string
	WrapperSet bool

	Timeout    time.Duration
	TimeoutSet bool

	Format    string
	FormatSet bool

	Theme    string
	ThemeSet bool

	NoColor    bool
	NoColorSet bool

	OutputDir    string
	OutputDirSet bool

	Ledger    string
	LedgerSet bool

	Verbose int
	Debug   int
}

// Resolved is the final configuration after applying all priority rules.
type Resolved struct {
	Reference Reference     `yaml:"reference"`
	Suffix    string        `yaml:"suffix"`
	OutputDir string        `yaml:"output_dir"`
	Ledger    string        `yaml:"ledger"`  // empty means next to the executable
	Wrapper   string        `yaml:"wrapper"` // empty means next to the executable
	Timeout   time.Duration `yaml:"timeout"`
	Format    string        `yaml:"format"`
	Theme     string        `yaml:"theme"`
	NoColor   bool          `yaml:"no_color"`
	Verbose   int           `yaml:"verbose"`
	Debug     int           `yaml:"debug"`

	// Resolution metadata, shown at debug level 1.
	WrapperSource string `yaml:"wrapper_source"` // "cli", "env", "file", "default"
	TimeoutSource string `yaml:"timeout_source"`
}

// String renders the resolved values as YAML for debug output.
func (r *Resolved) String() string {
	out, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Sprintf("%+v", *r)
	}
	return string(out)
}

// Resolve merges flags, environment, and file configuration, highest
// priority first. getenv is os.Getenv outside of tests.
func Resolve(file *AppConfig, flags CliFlags, getenv func(string) string) (*Resolved, error) {
	if file == nil {
		file = Defaults()
	}
	r := &Resolved{
		Reference:     file.Reference,
		Suffix:        file.Suffix,
		OutputDir:     file.OutputDir,
		Ledger:        file.Ledger,
		Wrapper:       file.Wrapper,
		Timeout:       file.Timeout,
		Format:        file.Format,
		Theme:         file.Theme,
		NoColor:       file.NoColor,
		Verbose:       flags.Verbose,
		Debug:         flags.Debug,
		WrapperSource: "file",
		TimeoutSource: "file",
	}
	if r.Wrapper == "" {
		r.WrapperSource = "default"
	}

	if cc := getenv("DIFFTEST_CC"); cc != "" {
		r.Reference.Compiler = cc
	}

	switch {
	case flags.WrapperSet:
		r.Wrapper, r.WrapperSource = flags.Wrapper, "cli"
	case getenv("DIFFTEST_WRAPPER") != "":
		r.Wrapper, r.WrapperSource = getenv("DIFFTEST_WRAPPER"), "env"
	}

	if flags.TimeoutSet {
		r.Timeout, r.TimeoutSource = flags.Timeout, "cli"
	} else if v := getenv("DIFFTEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: DIFFTEST_TIMEOUT=%q: %v", ErrInvalidConfig, v, err)
		}
		r.Timeout, r.TimeoutSource = d, "env"
	}

	if flags.NoColorSet {
		r.NoColor = flags.NoColor
	} else if b := getEnvBool(getenv, "DIFFTEST_NO_COLOR", "NO_COLOR"); b != nil {
		r.NoColor = *b
	}

	if flags.FormatSet {
		r.Format = flags.Format
	}
	if flags.ThemeSet {
		r.Theme = flags.Theme
	}
	if flags.OutputDirSet {
		r.OutputDir = flags.OutputDir
	}
	if flags.LedgerSet {
		r.Ledger = flags.Ledger
	}

	if r.Debug == 0 && getenv("DIFFTEST_DEBUG") != "" {
		r.Debug = 1
	}

	if err := validateResolved(r); err != nil {
		return nil, err
	}
	return r, nil
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(getenv func(string) string, keys ...string) *bool {
	for _, key := range keys {
		if val := getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

var (
	validFormats = map[string]bool{"auto": true, "terminal": true, "llm": true, "json": true}
	validThemes  = map[string]bool{"default": true, "orca": true, "mono": true}
)

func validateResolved(r *Resolved) error {
	if r.Reference.Compiler == "" {
		return fmt.Errorf("%w: reference compiler cannot be empty", ErrInvalidConfig)
	}
	if r.Suffix == "" {
		return fmt.Errorf("%w: suffix cannot be empty", ErrInvalidConfig)
	}
	if r.OutputDir == "" {
		return fmt.Errorf("%w: output_dir cannot be empty", ErrInvalidConfig)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got: %s", ErrInvalidConfig, r.Timeout)
	}
	if !validFormats[r.Format] {
		return fmt.Errorf("%w: invalid format: %s (must be: auto, terminal, llm, json)", ErrInvalidConfig, r.Format)
	}
	if !validThemes[r.Theme] {
		return fmt.Errorf("%w: invalid theme: %s (must be: default, orca, mono)", ErrInvalidConfig, r.Theme)
	}
	return nil
}
