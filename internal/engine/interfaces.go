package engine

import (
	"context"

	"expensebot/internal/model"
)

// Classifier defines the contract for intent and field extraction from one
// inbound message. Its output is untrusted: any field may be missing,
// malformed, or wrong, and the engine must cope with every combination.
type Classifier interface {
	Classify(ctx context.Context, text string, history []model.ConversationTurn) (model.ClassifierResult, error)
}

// ExpenseCommitter persists a completed candidate. Idempotency across turns
// is the committer's responsibility; the engine calls it at most once per
// completed candidate per turn.
type ExpenseCommitter interface {
	CommitExpense(ctx context.Context, userID string, cand model.ExpenseCandidate) error
}

// Querier answers free-form questions about recorded expenses.
type Querier interface {
	RunQuery(ctx context.Context, userID, text string) (string, error)
}

// Summarizer renders a period summary of recorded expenses.
type Summarizer interface {
	RunSummary(ctx context.Context, userID string, period model.SummaryPeriod) (string, error)
}
