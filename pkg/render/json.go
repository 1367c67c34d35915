package render

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dkoosis/difftest/pkg/pattern"
)

// JSON renders a run as one document for scripts and CI: the headline,
// outcome counts, failing jobs, slowest jobs, and the ledger delta.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

type jsonRun struct {
	Version  string        `json:"version"`
	Scope    string        `json:"scope,omitempty"`
	Outcomes []jsonMetric  `json:"outcomes,omitempty"`
	Failures []jsonFailure `json:"failures"`
	Slowest  []jsonRanked  `json:"slowest,omitempty"`
	Ledger   *jsonLedger   `json:"ledger,omitempty"`
}

type jsonMetric struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Kind  string `json:"kind,omitempty"`
}

type jsonFailure struct {
	ID       string `json:"id"`
	Outcome  string `json:"outcome"`
	Duration string `json:"duration,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Log      string `json:"log,omitempty"`
}

type jsonRanked struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id"`
	Duration string  `json:"duration"`
	Seconds  float64 `json:"seconds"`
}

// jsonLedger compares failures with the previous run's ledger.
type jsonLedger struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Change int `json:"change"`
}

// Render folds the patterns into a single run document.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	out := jsonRun{Version: "1", Failures: []jsonFailure{}}

	for _, p := range patterns {
		switch v := p.(type) {
		case *pattern.Summary:
			if v.Kind == pattern.SummaryKindRun {
				out.Scope = v.Label
			}
			for _, m := range v.Metrics {
				n, _ := strconv.Atoi(m.Value)
				out.Outcomes = append(out.Outcomes, jsonMetric{Label: m.Label, Count: n, Kind: m.Kind})
			}
		case *pattern.TestTable:
			for _, r := range v.Results {
				if r.Status != pattern.StatusFail {
					continue
				}
				reason, log, _ := strings.Cut(r.Details, "\n")
				out.Failures = append(out.Failures, jsonFailure{
					ID:       r.Name,
					Outcome:  r.Outcome,
					Duration: r.Duration,
					Reason:   reason,
					Log:      log,
				})
			}
		case *pattern.Leaderboard:
			for _, item := range v.Items {
				out.Slowest = append(out.Slowest, jsonRanked{
					Rank:     item.Rank,
					ID:       item.Name,
					Duration: item.Metric,
					Seconds:  item.Value,
				})
			}
		case *pattern.Comparison:
			for _, c := range v.Changes {
				if c.Label != "failures" {
					continue
				}
				before, _ := strconv.Atoi(c.Before)
				after, _ := strconv.Atoi(c.After)
				out.Ledger = &jsonLedger{Before: before, After: after, Change: after - before}
			}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}
