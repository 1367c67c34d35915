package pattern

// SummaryKind identifies the summary for renderer dispatch.
type SummaryKind string

const (
	// SummaryKindRun is the headline of a differential run.
	SummaryKindRun SummaryKind = "run"
	// SummaryKindOutcomes breaks the run down by outcome.
	SummaryKindOutcomes SummaryKind = "outcomes"
)

// Summary represents high-level metrics and counts.
type Summary struct {
	Label   string
	Kind    SummaryKind
	Metrics []SummaryItem
}

// SummaryItem is a single metric in a summary.
type SummaryItem struct {
	Label string // e.g., "pass", "false-accept"
	Value string // formatted value
	Kind  string // "success", "error", "warning", "info"; affects coloring
}

func (s *Summary) Type() PatternType { return PatternTypeSummary }
