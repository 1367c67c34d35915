package runner

import "fmt"

// Outcome classifies one job. Exactly one is produced per job.
type Outcome int

const (
	// Pass: both binaries ran and produced identical transcripts.
	Pass Outcome = iota
	// BothReject: both compilers refused the program.
	BothReject
	// CandidateFalseAccept: the candidate compiled a program the reference rejects.
	CandidateFalseAccept
	// CandidateFalseReject: the candidate refused a program the reference accepts.
	CandidateFalseReject
	// LinkFailure: the candidate's assembly does not assemble or link.
	LinkFailure
	// ExecutionMismatch: the two binaries behaved differently.
	ExecutionMismatch
	// Timeout: some invocation exceeded the per-invocation limit.
	Timeout
)

var outcomeNames = map[Outcome]string{
	Pass:                 "pass",
	BothReject:           "both-reject",
	CandidateFalseAccept: "false-accept",
	CandidateFalseReject: "false-reject",
	LinkFailure:          "link-failure",
	ExecutionMismatch:    "execution-mismatch",
	Timeout:              "timeout",
}

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{Pass, BothReject, CandidateFalseAccept, CandidateFalseReject, LinkFailure, ExecutionMismatch, Timeout}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText renders the outcome name for JSON output.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Failed reports whether the outcome counts against the candidate.
func (o Outcome) Failed() bool {
	return o != Pass && o != BothReject
}

// Reason is the one-line explanation printed for a failing job.
func (o Outcome) Reason() string {
	switch o {
	case CandidateFalseAccept:
		return "your compiler accepts an invalid program"
	case CandidateFalseReject:
		return "your compiler rejects a valid program"
	case LinkFailure:
		return "your compiler produces incorrect assembly"
	case ExecutionMismatch:
		return "different results at execution"
	case Timeout:
		return "an invocation exceeded the time limit"
	case BothReject:
		return "both compilers reject the program"
	default:
		return "ok"
	}
}
