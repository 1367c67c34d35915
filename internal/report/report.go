// Package report prints job verdicts as they arrive and builds the end-of-run
// summary patterns.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dkoosis/difftest/internal/console"
	"github.com/dkoosis/difftest/internal/runner"
	"github.com/dkoosis/difftest/pkg/render"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Reporter writes one line per verdict, plus log dumps when verbose.
type Reporter struct {
	Out     io.Writer
	Theme   render.Theme
	Console *console.Console
}

// New returns a reporter writing to out.
func New(out io.Writer, theme render.Theme, c *console.Console) *Reporter {
	return &Reporter{Out: out, Theme: theme, Console: c}
}

func (r *Reporter) verbose() int {
	if r.Console == nil {
		return 0
	}
	return r.Console.Verbose
}

// Line is the one-line report for v, without a trailing newline.
func (r *Reporter) Line(v runner.Verdict) string {
	if !v.Outcome.Failed() {
		return fmt.Sprintf("%s %s (%s)",
			r.Theme.Success.Render(r.Theme.Icons.Pass+" TEST OK"), v.Job.ID, v.Outcome)
	}
	return fmt.Sprintf("%s %s (%s)",
		r.Theme.Error.Render(r.Theme.Icons.Fail+" TEST FAIL"), v.Job.ID, v.Outcome.Reason())
}

// Job reports a verdict immediately. Passing jobs are only listed when verbose.
func (r *Reporter) Job(v runner.Verdict) {
	if !v.Outcome.Failed() {
		if r.verbose() >= 1 {
			fmt.Fprintln(r.Out, r.Line(v))
		}
		return
	}
	fmt.Fprintln(r.Out, r.Line(v))

	if r.verbose() < 1 {
		return
	}
	switch v.Outcome {
	case runner.ExecutionMismatch:
		fmt.Fprintln(r.Out, "GCC:")
		_, _ = r.Out.Write(v.ReferenceRun)
		fmt.Fprintln(r.Out, "you:")
		_, _ = r.Out.Write(v.CandidateRun)
		if d := UnifiedDiff(v.ReferenceRun, v.CandidateRun); d != "" {
			fmt.Fprintln(r.Out, r.Theme.Muted.Render("--- gcc"))
			fmt.Fprintln(r.Out, r.Theme.Muted.Render("+++ you"))
			fmt.Fprint(r.Out, d)
		}
	case runner.CandidateFalseReject, runner.LinkFailure, runner.Timeout:
		r.dumpLog(v.Log)
	}
}

func (r *Reporter) dumpLog(path string) {
	if path == "" {
		return
	}
	// #nosec G304 -- path is a log inside the job directory.
	data, err := os.ReadFile(path)
	if err != nil {
		r.Console.Warnf("cannot read %s: %v", path, err)
		return
	}
	_, _ = r.Out.Write(data)
}

// UnifiedDiff renders a line diff of want and got, one "-", "+" or " "
// prefixed line per input line. Equal inputs give "".
func UnifiedDiff(want, got []byte) string {
	if bytes.Equal(want, got) {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(want), string(got))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n\\ No newline at end of output\n")
			}
		}
	}
	return sb.String()
}
