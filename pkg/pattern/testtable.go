package pattern

// TestTable lists job verdicts.
type TestTable struct {
	Label   string
	Results []TestTableItem
}

// TestTableItem is a single job verdict.
type TestTableItem struct {
	Name     string // job id
	Status   string // StatusPass, StatusFail, StatusSkip
	Outcome  string // outcome name, e.g. "false-reject"
	Duration string // formatted duration
	Details  string // failure reason and log path
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
