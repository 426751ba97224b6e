package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// ExpenseSource records where a committed expense came from.
type ExpenseSource string

// Expense source constants.
const (
	SourceChat      ExpenseSource = "chat"
	SourceCSV       ExpenseSource = "csv"
	SourceOFX       ExpenseSource = "ofx"
	SourcePlaid     ExpenseSource = "plaid"
	SourceSimpleFIN ExpenseSource = "simplefin"
)

// DefaultCurrency is the base currency for all amounts.
const DefaultCurrency = "PKR"

// Expense is a committed expense record.
type Expense struct {
	SpentAt   time.Time     `json:"spent_at"`
	CreatedAt time.Time     `json:"created_at"`
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Item      string        `json:"item"`
	Category  string        `json:"category"`
	Currency  string        `json:"currency"`
	Source    ExpenseSource `json:"source"`
	Hash      string        `json:"hash"`
	Amount    float64       `json:"amount"`
}

// GenerateHash creates a stable hash for duplicate detection. Two imports of
// the same statement line must collide; two distinct chat commits of the same
// item on the same day must not, so chat expenses salt with the record ID.
func (e *Expense) GenerateHash() string {
	salt := ""
	if e.Source == SourceChat {
		salt = e.ID
	}
	data := fmt.Sprintf("%s:%s:%.2f:%s:%s",
		e.UserID,
		e.SpentAt.Format("2006-01-02"),
		e.Amount,
		e.Item,
		salt)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Category is a named expense category known to storage.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int
	IsActive  bool
}

// User is a chat participant keyed by external identifier (phone number or
// demo handle).
type User struct {
	CreatedAt time.Time
	ID        string
	Phone     string
}
