// Package console carries difftest's leveled diagnostics. There is no log
// framework: messages are prefixed lines on stderr, gated by the -v and -d
// counts given on the command line.
package console

import (
	"fmt"
	"io"
	"os"
)

// Console writes user-facing output to Out and diagnostics to Err.
// A nil *Console discards everything, so packages can accept one optionally.
type Console struct {
	Out     io.Writer
	Err     io.Writer
	Verbose int
	Debug   int
}

// New returns a console bound to the process's standard streams.
func New(verbose, debug int) *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr, Verbose: verbose, Debug: debug}
}

// Debugf prints "debug: ..." when the debug count is at least level.
func (c *Console) Debugf(level int, format string, args ...any) {
	if c == nil || c.Debug < level {
		return
	}
	fmt.Fprintf(c.Err, "debug: "+format+"\n", args...)
}

// Verbosef prints to Out when the verbose count is at least level.
func (c *Console) Verbosef(level int, format string, args ...any) {
	if c == nil || c.Verbose < level {
		return
	}
	fmt.Fprintf(c.Out, format+"\n", args...)
}

// Warnf prints a non-fatal warning.
func (c *Console) Warnf(format string, args ...any) {
	if c == nil {
		return
	}
	fmt.Fprintf(c.Err, "warning: "+format+"\n", args...)
}

// Errorf prints a fatal setup error in the form the harness has always used.
func (c *Console) Errorf(err error) {
	if c == nil {
		return
	}
	fmt.Fprintf(c.Err, "error: %v\n", err)
}

// Dump copies r to Out verbatim when the verbose count is at least level.
func (c *Console) Dump(level int, r io.Reader) {
	if c == nil || c.Verbose < level || r == nil {
		return
	}
	_, _ = io.Copy(c.Out, r)
}
