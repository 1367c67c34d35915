package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up locally and under the user config dir.
const FileName = ".difftest.yaml"

// Constants for default values.
const (
	DefaultCompiler  = "gcc"
	DefaultSuffix    = ".c"
	DefaultOutputDir = "ifcc-test-output"
	DefaultWrapper   = "ifcc-wrapper.sh"
	DefaultTimeout   = 10 * time.Second
	DefaultFormat    = "auto"
	DefaultTheme     = "default"
)

// Reference describes the trusted compiler.
type Reference struct {
	Compiler    string   `yaml:"compiler"`
	CompileArgs []string `yaml:"compile_args"`
	LinkArgs    []string `yaml:"link_args"`
	ExtraArgs   []string `yaml:"extra_args"`
}

// AppConfig represents .difftest.yaml.
type AppConfig struct {
	Reference Reference     `yaml:"reference"`
	Suffix    string        `yaml:"suffix"`
	OutputDir string        `yaml:"output_dir"`
	Ledger    string        `yaml:"ledger"`
	Wrapper   string        `yaml:"wrapper"`
	Timeout   time.Duration `yaml:"timeout"`
	Format    string        `yaml:"format"`
	Theme     string        `yaml:"theme"`
	NoColor   bool          `yaml:"no_color"`
}

// Defaults returns the built-in configuration for the host platform.
func Defaults() *AppConfig {
	return &AppConfig{
		Reference: Reference{
			Compiler:    DefaultCompiler,
			CompileArgs: []string{"-S", "-O0", "-Wall"},
			ExtraArgs:   hostExtraArgs(runtime.GOOS, runtime.GOARCH),
		},
		Suffix:    DefaultSuffix,
		OutputDir: DefaultOutputDir,
		Timeout:   DefaultTimeout,
		Format:    DefaultFormat,
		Theme:     DefaultTheme,
	}
}

// hostExtraArgs makes the reference target x86-64 on Apple Silicon.
func hostExtraArgs(goos, goarch string) []string {
	if goos == "darwin" && goarch == "arm64" {
		return []string{"-arch", "x86_64"}
	}
	return nil
}

// LoadConfig returns the defaults overlaid with the config file, if any, and
// the path it was read from. A bad file produces a warning, never a failure.
func LoadConfig(warn func(format string, args ...any)) (*AppConfig, string) {
	cfg := Defaults()

	path := getConfigPath()
	if path == "" {
		return cfg, ""
	}

	// #nosec G304 -- path is the local or XDG config location.
	data, err := os.ReadFile(path)
	if err != nil {
		if warn != nil {
			warn("error reading config file %s: %v; using defaults", path, err)
		}
		return cfg, ""
	}

	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		if warn != nil {
			warn("error parsing config file %s: %v; using defaults", path, err)
		}
		return cfg, ""
	}

	merge(cfg, &fileCfg)
	return cfg, path
}

// merge overlays the set fields of src onto dst.
func merge(dst, src *AppConfig) {
	if src.Reference.Compiler != "" {
		dst.Reference.Compiler = src.Reference.Compiler
	}
	if src.Reference.CompileArgs != nil {
		dst.Reference.CompileArgs = src.Reference.CompileArgs
	}
	if src.Reference.LinkArgs != nil {
		dst.Reference.LinkArgs = src.Reference.LinkArgs
	}
	if src.Reference.ExtraArgs != nil {
		dst.Reference.ExtraArgs = src.Reference.ExtraArgs
	}
	if src.Suffix != "" {
		dst.Suffix = src.Suffix
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.Ledger != "" {
		dst.Ledger = src.Ledger
	}
	if src.Wrapper != "" {
		dst.Wrapper = src.Wrapper
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Theme != "" {
		dst.Theme = src.Theme
	}
	dst.NoColor = dst.NoColor || src.NoColor
}

// getConfigPath checks the current directory first, then the user config dir.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "difftest", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}

// String renders the config as YAML for debug output.
func (c *AppConfig) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(out)
}
