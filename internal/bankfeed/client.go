// Package bankfeed pulls spending data from linked bank accounts through
// the Plaid API and turns it into expense records.
package bankfeed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"expensebot/internal/category"
	"expensebot/internal/common"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

const plaidDateFormat = "2006-01-02"

// Config holds Plaid API credentials. The access token is supplied directly
// through configuration; there is no Link flow.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("plaid client ID is required")
	}
	if c.Secret == "" {
		return fmt.Errorf("plaid secret is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("plaid access token is required")
	}
	if c.Environment == "" {
		return fmt.Errorf("plaid environment is required")
	}
	if c.Environment != "sandbox" && c.Environment != "production" {
		return fmt.Errorf("invalid Plaid environment %q: must be sandbox or production", c.Environment)
	}
	return nil
}

// Account describes a linked bank account.
type Account struct {
	ID   string
	Name string
	Mask string
	Type string
}

// Client fetches transactions from Plaid and maps them to expenses.
type Client struct {
	api         *plaid.APIClient
	resolver    *category.Resolver
	logger      *slog.Logger
	retryOpts   *service.RetryOptions
	accessToken string
	environment string
}

// NewClient creates a Plaid-backed bank feed client.
func NewClient(cfg Config, resolver *category.Resolver) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, fmt.Errorf("category resolver is required")
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)

	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &Client{
		api:         plaid.NewAPIClient(configuration),
		resolver:    resolver,
		accessToken: cfg.AccessToken,
		environment: cfg.Environment,
		logger:      slog.Default().With("component", "bankfeed"),
		retryOpts: &service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// FetchExpenses fetches transactions in the date range and returns the ones
// that represent spending, mapped to expense records for userID. Plaid
// reports money out as positive amounts; credits and zero-amount entries are
// skipped.
func (c *Client) FetchExpenses(ctx context.Context, userID string, start, end time.Time) ([]model.Expense, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if userID == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}
	if start.After(end) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", start.Format(plaidDateFormat),
		"end_date", end.Format(plaidDateFormat))

	var all []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500) // Plaid's max page size

	for {
		var page []plaid.Transaction

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				start.Format(plaidDateFormat),
				end.Format(plaidDateFormat),
			)
			options := plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			}
			request.SetOptions(options)

			resp, _, err := c.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				if plaidErr := extractPlaidError(err); plaidErr != nil {
					if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
						c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
						return &common.RetryableError{Err: err, Retryable: true}
					}
					return fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
				}
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			page = resp.GetTransactions()
			c.logger.Debug("Fetched transaction batch",
				"count", len(page),
				"offset", offset,
				"total", resp.GetTotalTransactions())
			return nil
		}, *c.retryOpts)
		if retryErr != nil {
			return nil, retryErr
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	expenses := make([]model.Expense, 0, len(all))
	skipped := 0
	for _, pt := range all {
		expense, ok := c.mapTransaction(userID, pt)
		if !ok {
			skipped++
			continue
		}
		expenses = append(expenses, expense)
	}

	c.logger.Info("Fetched transactions from Plaid",
		"count", len(all),
		"expenses", len(expenses),
		"skipped", skipped)

	return expenses, nil
}

// Accounts fetches the linked bank accounts.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	c.logger.Info("Fetching accounts from Plaid")

	var raw []plaid.AccountBase
	retryErr := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			if plaidErr := extractPlaidError(err); plaidErr != nil {
				if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
					c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
					return &common.RetryableError{Err: err, Retryable: true}
				}
				return fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
			}
			return fmt.Errorf("failed to fetch accounts: %w", err)
		}
		raw = resp.GetAccounts()
		return nil
	}, *c.retryOpts)
	if retryErr != nil {
		return nil, retryErr
	}

	accounts := make([]Account, 0, len(raw))
	for _, a := range raw {
		accounts = append(accounts, Account{
			ID:   a.GetAccountId(),
			Name: a.GetName(),
			Mask: a.GetMask(),
			Type: string(a.GetType()),
		})
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))
	return accounts, nil
}

// mapTransaction converts a Plaid transaction into an expense record. The
// second return value is false for transactions that are not spending.
func (c *Client) mapTransaction(userID string, pt plaid.Transaction) (model.Expense, bool) {
	amount := pt.GetAmount()
	if amount <= 0 {
		return model.Expense{}, false
	}

	spentAt, err := time.Parse(plaidDateFormat, pt.GetDate())
	if err != nil {
		c.logger.Error("Failed to parse transaction date", "date", pt.GetDate(), "error", err)
		spentAt = time.Now()
	}

	merchant := pt.GetMerchantName()
	if merchant == "" {
		merchant = pt.GetName()
	}
	merchant = CleanMerchantName(merchant)

	expense := model.Expense{
		ID:       pt.GetTransactionId(),
		UserID:   userID,
		Item:     merchant,
		Category: c.categorize(pt, merchant),
		Amount:   amount,
		Currency: model.DefaultCurrency,
		Source:   model.SourcePlaid,
		SpentAt:  spentAt,
	}
	expense.Hash = expense.GenerateHash()
	return expense, true
}

// categorize maps a transaction onto one of the configured categories. The
// most specific entry of Plaid's own category hierarchy is tried first, then
// the merchant name.
func (c *Client) categorize(pt plaid.Transaction, merchant string) string {
	hierarchy := pt.GetCategory()
	for i := len(hierarchy) - 1; i >= 0; i-- {
		if resolved := c.resolver.Resolve(hierarchy[i]); resolved != category.Fallback {
			return resolved
		}
	}
	return c.resolver.Resolve(merchant)
}

// CleanMerchantName normalizes bank merchant strings: title case, trailing
// transaction IDs dropped, corporate suffixes stripped.
func CleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !isLetter(runes[j-1]) {
				runes[j] = toUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	// A trailing run of more than five digits is a transaction ID, not part
	// of the merchant name.
	if len(words) > 1 {
		last := words[len(words)-1]
		if len(last) > 5 && isAllDigits(last) {
			words = words[:len(words)-1]
		}
	}
	name = strings.Join(words, " ")

	suffixes := []string{" Llc", " Inc", " Corp", " Corporation", " Company", " Co", " Ltd", " Limited"}
	for changed := true; changed; {
		changed = false
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 32
	}
	return r
}

func extractPlaidError(err error) *plaid.PlaidError {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return nil
	}
	return &plaidErr
}
