// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"expensebot/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  string
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Expense operations
	SaveExpense(ctx context.Context, expense *model.Expense) error
	SaveExpenses(ctx context.Context, expenses []model.Expense) (int, error)
	ListExpenses(ctx context.Context, userID string, filter ExpenseFilter) ([]model.Expense, error)
	CountExpenses(ctx context.Context, userID string) (int, error)
	SumByCategory(ctx context.Context, userID string, start, end time.Time) (map[string]float64, error)
	BiggestExpense(ctx context.Context, userID string, start, end time.Time) (*model.Expense, error)

	// User operations
	EnsureUser(ctx context.Context, userID string) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
