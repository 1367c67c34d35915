package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkoosis/difftest/internal/console"
	"github.com/dkoosis/difftest/internal/runner"
	"github.com/dkoosis/difftest/internal/workspace"
	"github.com/dkoosis/difftest/pkg/pattern"
	"github.com/dkoosis/difftest/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReporter(verbose int) (*Reporter, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	c := &console.Console{Out: &out, Err: &errBuf, Verbose: verbose}
	return New(&out, render.MonoTheme(), c), &out
}

func verdict(id string, o runner.Outcome) runner.Verdict {
	return runner.Verdict{Job: workspace.Job{ID: id}, Outcome: o}
}

func TestReporter_Job_FailureLine(t *testing.T) {
	r, out := newReporter(0)
	r.Job(verdict("tests-bad", runner.CandidateFalseAccept))

	assert.Equal(t, "x TEST FAIL tests-bad (your compiler accepts an invalid program)\n", out.String())
}

func TestReporter_Job_PassQuietUnlessVerbose(t *testing.T) {
	r, out := newReporter(0)
	r.Job(verdict("ok", runner.Pass))
	r.Job(verdict("rej", runner.BothReject))
	assert.Empty(t, out.String())

	r, out = newReporter(1)
	r.Job(verdict("ok", runner.Pass))
	assert.Equal(t, "+ TEST OK ok (pass)\n", out.String())
}

func TestReporter_Job_DumpsLogWhenVerbose(t *testing.T) {
	log := filepath.Join(t.TempDir(), runner.CandCompileLog)
	require.NoError(t, os.WriteFile(log, []byte("syntax error\n\nreturn code: 1\n"), 0o644))
	v := verdict("j", runner.CandidateFalseReject)
	v.Log = log

	r, out := newReporter(0)
	r.Job(v)
	assert.NotContains(t, out.String(), "syntax error")

	r, out = newReporter(1)
	r.Job(v)
	assert.Contains(t, out.String(), "syntax error\n\nreturn code: 1\n")
}

func TestReporter_Job_MismatchShowsBothRunsAndDiff(t *testing.T) {
	v := verdict("j", runner.ExecutionMismatch)
	v.ReferenceRun = []byte("42\n\nreturn code: 0\n")
	v.CandidateRun = []byte("41\n\nreturn code: 0\n")

	r, out := newReporter(1)
	r.Job(v)

	s := out.String()
	assert.Contains(t, s, "GCC:\n42\n")
	assert.Contains(t, s, "you:\n41\n")
	assert.Contains(t, s, "-42\n")
	assert.Contains(t, s, "+41\n")
	assert.Less(t, strings.Index(s, "GCC:"), strings.Index(s, "you:"))
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, UnifiedDiff([]byte("same\n"), []byte("same\n")))

	d := UnifiedDiff([]byte("a\nb\nc\n"), []byte("a\nB\nc\n"))
	assert.Equal(t, " a\n-b\n+B\n c\n", d)

	d = UnifiedDiff([]byte("x"), []byte("y"))
	assert.Contains(t, d, "-x\n\\ No newline at end of output\n")
}

func TestPatterns_Counts(t *testing.T) {
	run := Run{
		Verdicts: []runner.Verdict{
			verdict("a", runner.Pass),
			verdict("b", runner.BothReject),
			verdict("c", runner.ExecutionMismatch),
		},
		Planned: 3,
	}
	ps := Patterns(run)
	require.GreaterOrEqual(t, len(ps), 3)

	head := ps[0].(*pattern.Summary)
	assert.Equal(t, pattern.SummaryKindRun, head.Kind)
	assert.Equal(t, "3 jobs: 1 failed", head.Label)

	outcomes := ps[1].(*pattern.Summary)
	require.Len(t, outcomes.Metrics, 3)
	assert.Equal(t, "pass", strings.ToLower(outcomes.Metrics[0].Label))
	assert.Equal(t, "error", outcomes.Metrics[2].Kind)

	table := ps[2].(*pattern.TestTable)
	require.Len(t, table.Results, 1)
	assert.Equal(t, "c", table.Results[0].Name)
	assert.Equal(t, "execution-mismatch", table.Results[0].Outcome)
}

func TestPatterns_AllPassHasNoFailureTable(t *testing.T) {
	ps := Patterns(Run{Verdicts: []runner.Verdict{verdict("a", runner.Pass)}, Planned: 1})
	assert.Equal(t, "1 jobs: all pass", ps[0].(*pattern.Summary).Label)
	for _, p := range ps {
		assert.NotEqual(t, pattern.PatternTypeTestTable, p.Type())
	}
}

func TestPatterns_Interrupted(t *testing.T) {
	ps := Patterns(Run{Verdicts: []runner.Verdict{verdict("a", runner.Pass)}, Planned: 4})
	assert.Contains(t, ps[0].(*pattern.Summary).Label, "interrupted, 3 not run")
}

func TestPatterns_ComparesWithPreviousLedger(t *testing.T) {
	ps := Patterns(Run{
		Verdicts:    []runner.Verdict{verdict("a", runner.Timeout)},
		Planned:     1,
		Previous:    []string{"a", "b", "c"},
		HasPrevious: true,
	})
	last := ps[len(ps)-1].(*pattern.Comparison)
	require.Len(t, last.Changes, 1)
	assert.Equal(t, "3", last.Changes[0].Before)
	assert.Equal(t, "1", last.Changes[0].After)
	assert.InDelta(t, -2.0, last.Changes[0].Change, 0)
}

func TestPatterns_SlowestJobs(t *testing.T) {
	var vs []runner.Verdict
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		v := verdict(id, runner.Pass)
		v.Elapsed = time.Duration(i+1) * time.Millisecond
		vs = append(vs, v)
	}
	var lb *pattern.Leaderboard
	for _, p := range Patterns(Run{Verdicts: vs, Planned: len(vs)}) {
		if l, ok := p.(*pattern.Leaderboard); ok {
			lb = l
		}
	}
	require.NotNil(t, lb)
	require.Len(t, lb.Items, slowestShown)
	assert.Equal(t, "g", lb.Items[0].Name)
	assert.Equal(t, "7ms", lb.Items[0].Metric)
	assert.Equal(t, 7, lb.TotalCount)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
}
