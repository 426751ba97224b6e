package bankfeed

import (
	"context"
	"time"

	"expensebot/internal/model"
)

// MockFetcher is a test double for Fetcher.
type MockFetcher struct {
	FetchExpensesFn func(ctx context.Context, userID string, start, end time.Time) ([]model.Expense, error)
	AccountsFn      func(ctx context.Context) ([]Account, error)

	FetchExpensesCalls []FetchExpensesCall
	AccountsCalls      int
}

// FetchExpensesCall records the parameters of a FetchExpenses call.
type FetchExpensesCall struct {
	Start  time.Time
	End    time.Time
	UserID string
}

// NewMockFetcher creates a mock bank feed.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		FetchExpensesCalls: []FetchExpensesCall{},
	}
}

// FetchExpenses implements Fetcher.
func (m *MockFetcher) FetchExpenses(ctx context.Context, userID string, start, end time.Time) ([]model.Expense, error) {
	m.FetchExpensesCalls = append(m.FetchExpensesCalls, FetchExpensesCall{
		UserID: userID,
		Start:  start,
		End:    end,
	})
	if m.FetchExpensesFn != nil {
		return m.FetchExpensesFn(ctx, userID, start, end)
	}
	return []model.Expense{}, nil
}

// Accounts implements Fetcher.
func (m *MockFetcher) Accounts(ctx context.Context) ([]Account, error) {
	m.AccountsCalls++
	if m.AccountsFn != nil {
		return m.AccountsFn(ctx)
	}
	return []Account{}, nil
}

// Reset clears all call tracking.
func (m *MockFetcher) Reset() {
	m.FetchExpensesCalls = []FetchExpensesCall{}
	m.AccountsCalls = 0
}

var _ Fetcher = (*MockFetcher)(nil)
