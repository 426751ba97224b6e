package report

import (
	"context"
	"fmt"
	"time"

	"expensebot/internal/model"
	"expensebot/internal/service"
)

// RunSummary renders the periodic spending summary as chat text.
func (s *Service) RunSummary(ctx context.Context, userID string, period model.SummaryPeriod) (string, error) {
	report, err := s.Summarize(ctx, userID, period)
	if err != nil {
		return "", err
	}
	return report.Format(), nil
}

// Summarize aggregates a user's expenses over the summary window. Weekly
// covers the last seven days; monthly covers the current calendar month so
// far.
func (s *Service) Summarize(ctx context.Context, userID string, period model.SummaryPeriod) (*model.SummaryReport, error) {
	now := s.now()

	var start time.Time
	var days int
	switch period {
	case model.PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		days = now.Day()
	case model.PeriodWeekly:
		start = now.AddDate(0, 0, -7)
		days = 7
	default:
		return nil, fmt.Errorf("unknown summary period: %q", period)
	}

	byCategory, err := s.store.SumByCategory(ctx, userID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}

	expenses, err := s.store.ListExpenses(ctx, userID, service.ExpenseFilter{
		StartDate: &start,
		EndDate:   &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	report := &model.SummaryReport{
		Period:     period,
		Start:      start,
		End:        now,
		ByCategory: byCategory,
		Count:      len(expenses),
	}
	for _, amount := range byCategory {
		report.Total += amount
	}
	if report.Count == 0 {
		return report, nil
	}

	report.AveragePerDay = report.Total / float64(days)

	biggest, err := s.store.BiggestExpense(ctx, userID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find biggest expense: %w", err)
	}
	report.Biggest = biggest

	return report, nil
}
