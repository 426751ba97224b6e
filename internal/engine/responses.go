package engine

import (
	"fmt"
	"strings"

	"expensebot/internal/model"
)

// Fixed conversational replies. The wording matches what users of the
// WhatsApp bot already see, so transports can rely on stable phrasing.
const (
	greetingReply = "Hello! How can I help with your expenses today?"
	ackReply      = "You're welcome! 😊 Let me know if you need anything else."
	unknownReply  = "I'm not sure what you meant. You can:\n" +
		"• Log expenses: '500 for groceries'\n" +
		"• Ask queries: 'How much did I spend this week?'\n" +
		"• Get breakdowns: 'Show me my spending breakdown'"
	needBothReply       = "I need both the amount and what you bought. Could you please provide both?"
	classifierDownReply = "Sorry, I'm having trouble understanding messages right now. Please try again in a moment."
	commitFailedReply   = "Failed to log expense. Please try again."
	queryFailedReply    = "Sorry, I couldn't retrieve your expense data right now."
	summaryFailedReply  = "Sorry, I couldn't retrieve your expenses right now."
)

// greetingWords cover the short greetings worth answering without a
// classifier round trip.
var greetingWords = map[string]struct{}{
	"hi": {}, "yo": {},
}

// shortReply picks the fixed reply for a very short message.
func shortReply(text string) string {
	if _, ok := greetingWords[strings.ToLower(text)]; ok {
		return greetingReply
	}
	return ackReply
}

// confirmCommits renders the confirmation for the candidates committed in
// one turn.
func confirmCommits(commits []model.ExpenseCandidate) string {
	if len(commits) == 1 {
		c := commits[0]
		return fmt.Sprintf("✅ Got it! Logged %s PKR for %s.",
			model.FormatAmount(*c.Amount), *c.Category)
	}

	var total float64
	for _, c := range commits {
		total += *c.Amount
	}
	return fmt.Sprintf("✅ Perfect! Logged %d expenses totaling %s PKR.",
		len(commits), model.FormatAmount(total))
}

// askFor builds the clarification question naming exactly the missing
// fields of an incomplete candidate.
func askFor(cand model.ExpenseCandidate) string {
	missing := cand.MissingFields()
	switch {
	case len(missing) == 2:
		return needBothReply
	case missing[0] == "amount":
		return fmt.Sprintf("What was the cost of %s?", *cand.Item)
	default:
		return fmt.Sprintf("What did you buy for %s PKR?", model.FormatAmount(*cand.Amount))
	}
}
