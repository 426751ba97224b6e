package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/bankfeed"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

func feedExpense(id, item, cat string, amount float64, spentAt time.Time) model.Expense {
	expense := model.Expense{
		ID:       id,
		UserID:   "user-1",
		Item:     item,
		Category: cat,
		Amount:   amount,
		Currency: model.DefaultCurrency,
		Source:   model.SourcePlaid,
		SpentAt:  spentAt,
	}
	expense.Hash = expense.GenerateHash()
	return expense
}

func TestImportFeed(t *testing.T) {
	im, store := newTestImporter(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock := bankfeed.NewMockFetcher()
	mock.FetchExpensesFn = func(_ context.Context, _ string, _, _ time.Time) ([]model.Expense, error) {
		return []model.Expense{
			feedExpense("plaid-tx-1", "Careem", "transportation", 450, start.AddDate(0, 0, 4)),
			feedExpense("plaid-tx-2", "Foodpanda Order", "food", 1200, start.AddDate(0, 0, 9)),
		}, nil
	}

	result, err := im.ImportFeed(ctx, "user-1", mock, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Parsed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, mock.FetchExpensesCalls, 1)
	assert.Equal(t, "user-1", mock.FetchExpensesCalls[0].UserID)
	assert.Equal(t, start, mock.FetchExpensesCalls[0].Start)
	assert.Equal(t, end, mock.FetchExpensesCalls[0].End)

	expenses, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	for _, e := range expenses {
		assert.Equal(t, model.SourcePlaid, e.Source)
	}
}

func TestImportFeedIsIdempotent(t *testing.T) {
	im, _ := newTestImporter(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	mock := bankfeed.NewMockFetcher()
	mock.FetchExpensesFn = func(_ context.Context, _ string, _, _ time.Time) ([]model.Expense, error) {
		return []model.Expense{
			feedExpense("plaid-tx-1", "Careem", "transportation", 450, start.AddDate(0, 0, 4)),
			feedExpense("plaid-tx-2", "Foodpanda Order", "food", 1200, start.AddDate(0, 0, 9)),
		}, nil
	}

	_, err := im.ImportFeed(ctx, "user-1", mock, start, end)
	require.NoError(t, err)

	result, err := im.ImportFeed(ctx, "user-1", mock, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Parsed)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Duplicates)
}

func TestImportFeedFetchError(t *testing.T) {
	im, _ := newTestImporter(t)

	mock := bankfeed.NewMockFetcher()
	mock.FetchExpensesFn = func(_ context.Context, _ string, _, _ time.Time) ([]model.Expense, error) {
		return nil, errors.New("plaid API error: RATE_LIMIT_EXCEEDED - too many requests")
	}

	_, err := im.ImportFeed(context.Background(), "user-1", mock, time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch bank transactions")
}
