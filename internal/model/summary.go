package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryPeriod selects the reporting window for a summary.
type SummaryPeriod string

// Summary period constants.
const (
	PeriodWeekly  SummaryPeriod = "weekly"
	PeriodMonthly SummaryPeriod = "monthly"
)

// Label returns the period's display name.
func (p SummaryPeriod) Label() string {
	if p == PeriodMonthly {
		return "Monthly"
	}
	return "Weekly"
}

// CategoryTotal pairs a category with its spend over the window.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// SummaryReport aggregates a user's expenses over a period.
type SummaryReport struct {
	Start         time.Time
	End           time.Time
	Biggest       *Expense
	Period        SummaryPeriod
	ByCategory    map[string]float64
	Total         float64
	AveragePerDay float64
	Count         int
}

// categoryEmoji decorates the top-category bullets in chat summaries.
var categoryEmoji = map[string]string{
	"transportation": "🚗",
	"electronics":    "💻",
	"food":           "🍔",
	"groceries":      "🛍️",
	"entertainment":  "🎬",
	"health":         "💊",
	"clothing":       "👕",
	"sports":         "⚽",
}

// TopCategories returns up to n categories by descending spend.
func (s *SummaryReport) TopCategories(n int) []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(s.ByCategory))
	for cat, amt := range s.ByCategory {
		totals = append(totals, CategoryTotal{Category: cat, Amount: amt})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// Format renders the chat-friendly summary text.
func (s *SummaryReport) Format() string {
	if s.Count == 0 {
		return fmt.Sprintf("No expenses found for the %s period.", strings.ToLower(string(s.Period)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Expense Summary:\n", s.Period.Label())
	fmt.Fprintf(&b, "Total: PKR %s\n", FormatAmount(s.Total))
	b.WriteString("Top Categories:\n")
	for _, ct := range s.TopCategories(3) {
		emoji, ok := categoryEmoji[strings.ToLower(ct.Category)]
		if !ok {
			emoji = "•"
		}
		fmt.Fprintf(&b, "%s %s: PKR %s\n", emoji, TitleCase(ct.Category), FormatAmount(ct.Amount))
	}
	if s.Biggest != nil {
		fmt.Fprintf(&b, "Biggest single expense: PKR %s (%s)\n", FormatAmount(s.Biggest.Amount), TitleCase(s.Biggest.Category))
	}
	fmt.Fprintf(&b, "Average per day: PKR %s", FormatAmount(s.AveragePerDay))
	return b.String()
}

// FormatAmount renders a base-currency amount with thousands separators and
// no decimal places, matching chat conventions ("25,000").
func FormatAmount(amount float64) string {
	whole := fmt.Sprintf("%.0f", amount)
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// TitleCase upper-cases the first letter of each word without pulling in the
// deprecated strings.Title.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		if len(runes) > 0 && runes[0] >= 'a' && runes[0] <= 'z' {
			runes[0] -= 32
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
