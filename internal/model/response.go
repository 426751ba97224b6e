package model

// Outcome is the terminal result of one dialogue turn.
type Outcome string

// Turn outcome constants.
const (
	OutcomeCommitted    Outcome = "committed"
	OutcomeClarifying   Outcome = "clarifying"
	OutcomeAcknowledged Outcome = "acknowledged"
	OutcomeRoutedOther  Outcome = "routed_other"
)

// Response is the structured result of handling one message. Exactly one
// field is non-nil; the transport layer renders whichever is set and relies
// on the exclusivity.
type Response struct {
	Confirmation  *string `json:"confirmation,omitempty"`
	Clarification *string `json:"clarification,omitempty"`
	QueryResult   *string `json:"query_result,omitempty"`
	Summary       *string `json:"summary,omitempty"`
	Message       *string `json:"message,omitempty"`
}

// Text returns the populated field's text regardless of which one it is.
func (r Response) Text() string {
	for _, f := range []*string{r.Confirmation, r.Clarification, r.QueryResult, r.Summary, r.Message} {
		if f != nil {
			return *f
		}
	}
	return ""
}

// Kind names the populated field, for logging and metrics.
func (r Response) Kind() string {
	switch {
	case r.Confirmation != nil:
		return "confirmation"
	case r.Clarification != nil:
		return "clarification"
	case r.QueryResult != nil:
		return "query_result"
	case r.Summary != nil:
		return "summary"
	case r.Message != nil:
		return "message"
	default:
		return "empty"
	}
}
