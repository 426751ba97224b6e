package bankfeed

import (
	"context"
	"time"

	"expensebot/internal/model"
)

// Fetcher is the contract for pulling expenses from a bank feed. It exists
// so commands and importers can be tested without a live Plaid connection.
type Fetcher interface {
	FetchExpenses(ctx context.Context, userID string, start, end time.Time) ([]model.Expense, error)
	Accounts(ctx context.Context) ([]Account, error)
}

var _ Fetcher = (*Client)(nil)
