package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/category"
	"expensebot/internal/model"
	"expensebot/internal/service"
	"expensebot/internal/storage"
)

// testNow keeps query windows stable across test runs.
var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	resolver, err := category.NewResolver()
	require.NoError(t, err)

	svc := NewService(store, resolver)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func seedExpense(t *testing.T, store *storage.SQLiteStorage, userID, item, cat string, amount float64, spentAt time.Time) {
	t.Helper()

	expense := model.Expense{
		ID:       uuid.NewString(),
		UserID:   userID,
		Amount:   amount,
		Item:     item,
		Category: cat,
		Currency: model.DefaultCurrency,
		Source:   model.SourceChat,
		SpentAt:  spentAt,
	}
	expense.Hash = expense.GenerateHash()

	require.NoError(t, store.EnsureUser(context.Background(), userID))
	require.NoError(t, store.SaveExpense(context.Background(), &expense))
}

func amountPtr(v float64) *float64 { return &v }
func strPtr(s string) *string      { return &s }

func TestCommitExpense(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	cand := model.ExpenseCandidate{
		Amount:   amountPtr(1400),
		Item:     strPtr("sweets"),
		Category: strPtr("food"),
	}
	require.NoError(t, svc.CommitExpense(ctx, "user-1", cand))

	expenses, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)

	saved := expenses[0]
	assert.Equal(t, 1400.0, saved.Amount)
	assert.Equal(t, "sweets", saved.Item)
	assert.Equal(t, "food", saved.Category)
	assert.Equal(t, model.DefaultCurrency, saved.Currency)
	assert.Equal(t, model.SourceChat, saved.Source)
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.Hash)
	assert.WithinDuration(t, testNow, saved.SpentAt, time.Second)
}

func TestCommitExpenseDefaultsCategory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	cand := model.ExpenseCandidate{
		Amount: amountPtr(300),
		Item:   strPtr("mystery box"),
	}
	require.NoError(t, svc.CommitExpense(ctx, "user-1", cand))

	expenses, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, category.Fallback, expenses[0].Category)
}

func TestCommitExpenseCreatesCategory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	cand := model.ExpenseCandidate{
		Amount:   amountPtr(50),
		Item:     strPtr("espresso"),
		Category: strPtr("coffee"),
	}
	require.NoError(t, svc.CommitExpense(ctx, "user-1", cand))

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "coffee")
}

func TestCommitExpenseRejectsIncomplete(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		cand model.ExpenseCandidate
	}{
		{name: "missing amount", cand: model.ExpenseCandidate{Item: strPtr("sunglasses")}},
		{name: "missing item", cand: model.ExpenseCandidate{Amount: amountPtr(2000)}},
		{name: "empty candidate", cand: model.ExpenseCandidate{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CommitExpense(context.Background(), "user-1", tt.cand)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "incomplete")
		})
	}
}

func TestCommitExpenseRepeatedPurchases(t *testing.T) {
	// Logging the same thing twice in chat is two real purchases, not a
	// duplicate.
	svc, store := newTestService(t)
	ctx := context.Background()

	cand := model.ExpenseCandidate{
		Amount:   amountPtr(500),
		Item:     strPtr("fuel"),
		Category: strPtr("transportation"),
	}
	require.NoError(t, svc.CommitExpense(ctx, "user-1", cand))
	require.NoError(t, svc.CommitExpense(ctx, "user-1", cand))

	expenses, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	require.NoError(t, err)
	assert.Len(t, expenses, 2)
}
