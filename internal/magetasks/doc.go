// Package magetasks provides the build, test, lint and smoke tasks used by
// the Magefile.
package magetasks
