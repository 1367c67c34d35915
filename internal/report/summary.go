package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/dkoosis/difftest/internal/runner"
	"github.com/dkoosis/difftest/pkg/pattern"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// slowestShown caps the slowest-jobs leaderboard.
const slowestShown = 5

// Run is everything the end-of-run summary needs.
type Run struct {
	Verdicts []runner.Verdict
	// Planned is the number of prepared jobs; it exceeds len(Verdicts) when
	// the run was interrupted.
	Planned int
	Elapsed time.Duration
	// Previous holds the prior ledger's failures, when one was loaded.
	Previous    []string
	HasPrevious bool
}

// Patterns expresses the run as render patterns: a headline summary, the
// per-outcome counts, a table of failing jobs, the slowest jobs, and the
// change in failures since the previous ledger.
func Patterns(run Run) []pattern.Pattern {
	counts := make(map[runner.Outcome]int)
	failed := 0
	for _, v := range run.Verdicts {
		counts[v.Outcome]++
		if v.Outcome.Failed() {
			failed++
		}
	}

	label := fmt.Sprintf("%d jobs: %d failed", len(run.Verdicts), failed)
	if failed == 0 {
		label = fmt.Sprintf("%d jobs: all pass", len(run.Verdicts))
	}
	if run.Planned > len(run.Verdicts) {
		label += fmt.Sprintf(" (interrupted, %d not run)", run.Planned-len(run.Verdicts))
	}
	if run.Elapsed > 0 {
		label += fmt.Sprintf(" in %s", formatDuration(run.Elapsed))
	}

	caser := cases.Title(language.English)
	outcomes := &pattern.Summary{Label: caser.String("outcomes"), Kind: pattern.SummaryKindOutcomes}
	for _, o := range runner.Outcomes {
		n := counts[o]
		if n == 0 {
			continue
		}
		kind := "success"
		if o.Failed() {
			kind = "error"
		}
		outcomes.Metrics = append(outcomes.Metrics, pattern.SummaryItem{
			Label: caser.String(o.String()),
			Value: fmt.Sprintf("%d", n),
			Kind:  kind,
		})
	}

	patterns := []pattern.Pattern{
		&pattern.Summary{Label: label, Kind: pattern.SummaryKindRun},
		outcomes,
	}

	table := &pattern.TestTable{Label: "Failures"}
	for _, v := range run.Verdicts {
		if !v.Outcome.Failed() {
			continue
		}
		details := v.Outcome.Reason()
		if v.Log != "" {
			details += "\n" + v.Log
		}
		table.Results = append(table.Results, pattern.TestTableItem{
			Name:     v.Job.ID,
			Status:   pattern.StatusFail,
			Outcome:  v.Outcome.String(),
			Duration: formatDuration(v.Elapsed),
			Details:  details,
		})
	}
	if len(table.Results) > 0 {
		patterns = append(patterns, table)
	}

	if lb := slowest(run.Verdicts); lb != nil {
		patterns = append(patterns, lb)
	}

	if run.HasPrevious {
		before, after := len(run.Previous), failed
		patterns = append(patterns, &pattern.Comparison{
			Label: "Since last run",
			Changes: []pattern.ComparisonItem{{
				Label:  "failures",
				Before: fmt.Sprintf("%d", before),
				After:  fmt.Sprintf("%d", after),
				Change: float64(after - before),
			}},
		})
	}
	return patterns
}

func slowest(verdicts []runner.Verdict) *pattern.Leaderboard {
	if len(verdicts) < 2 {
		return nil
	}
	sorted := make([]runner.Verdict, len(verdicts))
	copy(sorted, verdicts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Elapsed > sorted[j].Elapsed })

	lb := &pattern.Leaderboard{
		Label:      "Slowest jobs",
		MetricName: "Duration",
		TotalCount: len(sorted),
		ShowRank:   true,
	}
	for i, v := range sorted[:min(len(sorted), slowestShown)] {
		lb.Items = append(lb.Items, pattern.LeaderboardItem{
			Name:   v.Job.ID,
			Metric: formatDuration(v.Elapsed),
			Value:  v.Elapsed.Seconds(),
			Rank:   i + 1,
		})
	}
	return lb
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
