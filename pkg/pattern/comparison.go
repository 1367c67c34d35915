package pattern

// Comparison represents before/after counts, such as failures against the
// previous run's ledger.
type Comparison struct {
	Label   string
	Changes []ComparisonItem
}

// ComparisonItem is a single before/after delta.
type ComparisonItem struct {
	Label  string
	Before string
	After  string
	Change float64 // positive or negative
	Unit   string
}

func (c *Comparison) Type() PatternType { return PatternTypeComparison }
