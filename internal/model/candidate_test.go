package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(f float64) *float64 { return &f }
func sptr(s string) *string   { return &s }

func TestExpenseCandidateComplete(t *testing.T) {
	tests := []struct {
		name      string
		candidate *ExpenseCandidate
		want      bool
	}{
		{
			name:      "amount and item present",
			candidate: &ExpenseCandidate{Amount: fptr(500), Item: sptr("popcorn")},
			want:      true,
		},
		{
			name:      "missing amount",
			candidate: &ExpenseCandidate{Item: sptr("sweets")},
			want:      false,
		},
		{
			name:      "missing item",
			candidate: &ExpenseCandidate{Amount: fptr(1400)},
			want:      false,
		},
		{
			name:      "category never required",
			candidate: &ExpenseCandidate{Amount: fptr(500), Item: sptr("popcorn"), Category: nil},
			want:      true,
		},
		{
			name:      "nil candidate",
			candidate: nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.candidate.Complete())
		})
	}
}

func TestExpenseCandidateMergeMonotonic(t *testing.T) {
	tests := []struct {
		name         string
		old          ExpenseCandidate
		in           ExpenseCandidate
		wantAmount   *float64
		wantItem     *string
		wantCategory *string
	}{
		{
			name:         "nil incoming never erases",
			old:          ExpenseCandidate{Amount: fptr(500), Item: sptr("sweets"), Category: sptr("food")},
			in:           ExpenseCandidate{},
			wantAmount:   fptr(500),
			wantItem:     sptr("sweets"),
			wantCategory: sptr("food"),
		},
		{
			name:       "non-nil incoming overwrites",
			old:        ExpenseCandidate{Amount: fptr(500)},
			in:         ExpenseCandidate{Amount: fptr(1400), Item: sptr("sweets")},
			wantAmount: fptr(1400),
			wantItem:   sptr("sweets"),
		},
		{
			name:       "amount fills empty slot",
			old:        ExpenseCandidate{Item: sptr("sweets")},
			in:         ExpenseCandidate{Amount: fptr(1400)},
			wantAmount: fptr(1400),
			wantItem:   sptr("sweets"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.old
			got.Merge(tt.in)
			assert.Equal(t, tt.wantAmount, got.Amount)
			assert.Equal(t, tt.wantItem, got.Item)
			assert.Equal(t, tt.wantCategory, got.Category)
		})
	}
}

func TestExpenseCandidateMergeAccumulatesFragments(t *testing.T) {
	c := ExpenseCandidate{RawFragments: []string{"bought sweets"}}
	c.Merge(ExpenseCandidate{RawFragments: []string{"1400"}})
	assert.Equal(t, []string{"bought sweets", "1400"}, c.RawFragments)
}

func TestMissingFields(t *testing.T) {
	assert.Equal(t, []string{"amount", "item"}, (&ExpenseCandidate{}).MissingFields())
	assert.Equal(t, []string{"amount"}, (&ExpenseCandidate{Item: sptr("sweets")}).MissingFields())
	assert.Equal(t, []string{"item"}, (&ExpenseCandidate{Amount: fptr(500)}).MissingFields())
	assert.Empty(t, (&ExpenseCandidate{Amount: fptr(500), Item: sptr("popcorn")}).MissingFields())
}

func TestParseIntent(t *testing.T) {
	assert.Equal(t, IntentLogExpense, ParseIntent("log_expense"))
	assert.Equal(t, IntentQuery, ParseIntent(" Query "))
	assert.Equal(t, IntentSummary, ParseIntent("SUMMARY"))
	assert.Equal(t, IntentUnknown, ParseIntent("buy_groceries"))
	assert.Equal(t, IntentUnknown, ParseIntent(""))
}

func TestResponseText(t *testing.T) {
	msg := "Hello! How can I help with your expenses today?"
	r := Response{Message: &msg}
	assert.Equal(t, msg, r.Text())
	assert.Equal(t, "message", r.Kind())

	assert.Equal(t, "", Response{}.Text())
	assert.Equal(t, "empty", Response{}.Kind())
}
