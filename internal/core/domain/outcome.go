package domain

// Outcome classifies one worker invocation.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBlocked
	OutcomeTransient
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "transient"
	}
}

// Worker exit codes forming the subprocess contract.
const (
	ExitSuccess = 0
	ExitBlocked = 2
)

// ClassifyExitCode maps a worker exit code onto an outcome. Every code maps
// to exactly one outcome: 0 success, 2 blocked, anything else transient.
func ClassifyExitCode(code int) Outcome {
	switch code {
	case ExitSuccess:
		return OutcomeSuccess
	case ExitBlocked:
		return OutcomeBlocked
	default:
		return OutcomeTransient
	}
}
