package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"expensebot/internal/model"
	"expensebot/internal/service"
)

// Empty-result replies, one per query kind.
const (
	noRecordsReply   = "I couldn't find any expenses in your records."
	noBreakdownReply = "I couldn't find any expenses to create a breakdown for."
	noTopReply       = "I couldn't find any expenses to show you."
)

// breakdownEmoji decorates breakdown rows. Unlisted categories get the money
// bag.
var breakdownEmoji = map[string]string{
	"transportation": "🚗",
	"electronics":    "💻",
	"food":           "🍕",
	"groceries":      "🛍️",
	"shopping":       "🛍️",
	"entertainment":  "🎬",
	"health":         "💊",
	"coffee":         "☕",
	"clothing":       "👕",
	"housing":        "🏠",
	"sports":         "⚽",
}

// RunQuery answers a free-form question about recorded expenses. The query
// kind is read from the question itself; anything unrecognized falls back to
// a category breakdown.
func (s *Service) RunQuery(ctx context.Context, userID, text string) (string, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "most expensive") || strings.Contains(lower, "highest"):
		return s.maxExpenseAnswer(ctx, userID)
	case strings.Contains(lower, "breakdown") || strings.Contains(lower, "category"):
		return s.breakdownAnswer(ctx, userID, noBreakdownReply)
	case strings.Contains(lower, "top"):
		limit := 5
		if strings.Contains(lower, "3") || strings.Contains(lower, "three") {
			limit = 3
		}
		return s.topExpensesAnswer(ctx, userID, limit)
	case strings.Contains(lower, "how much") || strings.Contains(lower, "spent") || strings.Contains(lower, "spend"):
		return s.totalAnswer(ctx, userID, lower)
	default:
		return s.breakdownAnswer(ctx, userID, noRecordsReply)
	}
}

func (s *Service) maxExpenseAnswer(ctx context.Context, userID string) (string, error) {
	biggest, err := s.store.BiggestExpense(ctx, userID, time.Time{}, s.now())
	if err != nil {
		return "", err
	}
	if biggest == nil {
		return noRecordsReply, nil
	}
	return fmt.Sprintf("Your most expensive purchase was %s PKR for %s.",
		model.FormatAmount(biggest.Amount), biggest.Category), nil
}

func (s *Service) breakdownAnswer(ctx context.Context, userID, emptyReply string) (string, error) {
	expenses, err := s.store.ListExpenses(ctx, userID, service.ExpenseFilter{})
	if err != nil {
		return "", err
	}
	if len(expenses) == 0 {
		return emptyReply, nil
	}

	type row struct {
		category string
		total    float64
		count    int
	}
	byCategory := make(map[string]*row)
	var total float64
	for _, e := range expenses {
		r, ok := byCategory[e.Category]
		if !ok {
			r = &row{category: e.Category}
			byCategory[e.Category] = r
		}
		r.total += e.Amount
		r.count++
		total += e.Amount
	}

	rows := make([]*row, 0, len(byCategory))
	for _, r := range byCategory {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].category < rows[j].category
	})

	var b strings.Builder
	b.WriteString("📊 Your spending breakdown:\n\n")
	fmt.Fprintf(&b, "Total: %s PKR\n\n", model.FormatAmount(total))
	for _, r := range rows {
		emoji, ok := breakdownEmoji[strings.ToLower(r.category)]
		if !ok {
			emoji = "💰"
		}
		fmt.Fprintf(&b, "%s %s: %s PKR (%d transactions)\n",
			emoji, model.TitleCase(r.category), model.FormatAmount(r.total), r.count)
	}
	return b.String(), nil
}

func (s *Service) topExpensesAnswer(ctx context.Context, userID string, limit int) (string, error) {
	expenses, err := s.store.ListExpenses(ctx, userID, service.ExpenseFilter{})
	if err != nil {
		return "", err
	}
	if len(expenses) == 0 {
		return noTopReply, nil
	}

	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Amount > expenses[j].Amount
	})
	if len(expenses) > limit {
		expenses = expenses[:limit]
	}

	var b strings.Builder
	b.WriteString("Here are your top expenses:\n")
	for i, e := range expenses {
		fmt.Fprintf(&b, "%d. %s PKR - %s\n", i+1, model.FormatAmount(e.Amount), e.Category)
	}
	return b.String(), nil
}

func (s *Service) totalAnswer(ctx context.Context, userID, lower string) (string, error) {
	start, end, period := s.queryWindow(lower)

	scope := ""
	filter := service.ExpenseFilter{StartDate: &start, EndDate: &end}
	if cat := s.mentionedCategory(lower); cat != "" {
		filter.Category = cat
		scope = " on " + cat
	}

	expenses, err := s.store.ListExpenses(ctx, userID, filter)
	if err != nil {
		return "", err
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}

	if total <= 0 {
		return fmt.Sprintf("You haven't logged any expenses%s %s.", scope, period), nil
	}
	return fmt.Sprintf("You have spent a total of %s PKR%s %s.",
		model.FormatAmount(total), scope, period), nil
}

// queryWindow maps period words in a question to a date range. The default
// period is today, matching how people ask without qualifiers.
func (s *Service) queryWindow(lower string) (start, end time.Time, period string) {
	now := s.now()
	startOfToday := startOfDay(now)

	switch {
	case strings.Contains(lower, "yesterday"):
		return startOfToday.AddDate(0, 0, -1), startOfToday.Add(-time.Nanosecond), "yesterday"
	case strings.Contains(lower, "week"):
		return now.AddDate(0, 0, -7), now, "this week"
	case strings.Contains(lower, "month"):
		return now.AddDate(0, -1, 0), now, "this month"
	default:
		return startOfToday, now, "today"
	}
}

// mentionedCategory returns the first known category named in the question,
// or "".
func (s *Service) mentionedCategory(lower string) string {
	for _, cat := range s.resolver.Categories() {
		if strings.Contains(lower, cat) {
			return cat
		}
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
