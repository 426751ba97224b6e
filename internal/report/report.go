// Package report turns stored expenses into chat answers. It persists
// completed candidates for the engine and renders query results and period
// summaries in the bot's message formats.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"expensebot/internal/category"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

// Service implements the engine's ExpenseCommitter, Querier, and Summarizer
// over a Storage backend.
type Service struct {
	store    service.Storage
	resolver *category.Resolver
	now      func() time.Time
}

// NewService creates a report service.
func NewService(store service.Storage, resolver *category.Resolver) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		now:      time.Now,
	}
}

// CommitExpense persists one completed candidate as a chat expense.
func (s *Service) CommitExpense(ctx context.Context, userID string, cand model.ExpenseCandidate) error {
	if !cand.Complete() {
		return fmt.Errorf("cannot commit incomplete candidate (missing %v)", cand.MissingFields())
	}

	cat := category.Fallback
	if cand.Category != nil && *cand.Category != "" {
		cat = *cand.Category
	}

	if err := s.store.EnsureUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	if _, err := s.store.CreateCategory(ctx, cat); err != nil {
		return fmt.Errorf("failed to ensure category: %w", err)
	}

	expense := model.Expense{
		ID:       uuid.NewString(),
		UserID:   userID,
		Amount:   *cand.Amount,
		Item:     *cand.Item,
		Category: cat,
		Currency: model.DefaultCurrency,
		Source:   model.SourceChat,
		SpentAt:  s.now(),
	}
	expense.Hash = expense.GenerateHash()

	if err := s.store.SaveExpense(ctx, &expense); err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}

	slog.Info("Committed expense",
		"user_id", userID,
		"amount", expense.Amount,
		"category", expense.Category)
	return nil
}
