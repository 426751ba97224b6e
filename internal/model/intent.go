// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Intent is the classifier's guess at what a message is asking for.
type Intent string

// Intent constants.
const (
	IntentLogExpense     Intent = "log_expense"
	IntentQuery          Intent = "query"
	IntentSummary        Intent = "summary"
	IntentAcknowledgment Intent = "acknowledgment"
	IntentGreeting       Intent = "greeting"
	IntentUnknown        Intent = "unknown"
)

// ParseIntent maps a raw classifier string to a known Intent.
// Unrecognized values collapse to IntentUnknown; classifier output is
// untrusted and must never widen the intent set.
func ParseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentLogExpense:
		return IntentLogExpense
	case IntentQuery:
		return IntentQuery
	case IntentSummary:
		return IntentSummary
	case IntentAcknowledgment:
		return IntentAcknowledgment
	case IntentGreeting:
		return IntentGreeting
	default:
		return IntentUnknown
	}
}
