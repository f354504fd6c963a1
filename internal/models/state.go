package models

// State is the application's only state: either no result (show the upload
// form) or a result (show the dashboard). The zero value is NoResult.
type State struct {
	result *AnalysisResult
}

// NoResult returns the empty state.
func NoResult() State { return State{} }

// HasResult returns a state holding r.
func HasResult(r AnalysisResult) State { return State{result: &r} }

// Result returns the held result and whether there is one.
func (s State) Result() (AnalysisResult, bool) {
	if s.result == nil {
		return AnalysisResult{}, false
	}
	return *s.result, true
}

// Empty reports whether the state is NoResult.
func (s State) Empty() bool { return s.result == nil }

// OutcomeKind tells which variant an Outcome holds.
type OutcomeKind int

const (
	// OutcomeNoop means nothing was sent (no file held).
	OutcomeNoop OutcomeKind = iota
	OutcomeSuccess
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "noop"
	}
}

// Outcome is the result of one analysis request.
type Outcome struct {
	Kind    OutcomeKind
	Result  AnalysisResult // set for OutcomeSuccess
	Message string         // set for OutcomeFailure
	Status  int            // HTTP status for OutcomeFailure, 0 on transport errors
}

// Success builds a successful outcome.
func Success(r AnalysisResult) Outcome {
	return Outcome{Kind: OutcomeSuccess, Result: r}
}

// Failure builds a failed outcome carrying a user-facing message.
func Failure(status int, msg string) Outcome {
	return Outcome{Kind: OutcomeFailure, Status: status, Message: msg}
}
