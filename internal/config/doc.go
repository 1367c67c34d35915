// Package config handles configuration loading and merging for difftest.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--wrapper, --timeout, --format, --theme, --no-color, ...)
//  2. Environment variables (DIFFTEST_WRAPPER, DIFFTEST_TIMEOUT, DIFFTEST_CC, ...)
//  3. YAML config file (.difftest.yaml in the current directory or
//     $XDG_CONFIG_HOME/difftest/.difftest.yaml)
//  4. Hardcoded defaults
//
// # Reference Toolchain
//
// The reference compiler defaults to gcc with -S -O0 -Wall. On Apple Silicon
// hosts every reference step also gets -arch x86_64, since candidate
// compilers in this setting emit x86-64 assembly.
//
// # Environment Variables
//
//   - DIFFTEST_CC: reference compiler driver
//   - DIFFTEST_WRAPPER: candidate wrapper script
//   - DIFFTEST_TIMEOUT: per-invocation limit, as a Go duration ("0" disables)
//   - DIFFTEST_NO_COLOR or NO_COLOR: "true" or "1" disables colors
//   - DIFFTEST_DEBUG: any non-empty value raises the debug level to 1
package config
