// Package simplefin pulls spending data over the SimpleFIN bridge protocol.
// It is the no-aggregator alternative to the Plaid feed: one claim token,
// plain HTTP, no API keys.
package simplefin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensebot/internal/bankfeed"
	"expensebot/internal/category"
	"expensebot/internal/model"
)

// Client fetches accounts and transactions from a claimed SimpleFIN access
// URL and maps spending to expense records.
type Client struct {
	httpClient *http.Client
	resolver   *category.Resolver
	logger     *slog.Logger
	accessURL  string
}

var _ bankfeed.Fetcher = (*Client)(nil)

// NewClient creates a SimpleFIN client, claiming the token on first use and
// reusing the saved access URL afterwards.
func NewClient(token string, resolver *category.Resolver) (*Client, error) {
	if token == "" {
		return nil, errors.New("simplefin token is required")
	}
	if resolver == nil {
		return nil, errors.New("category resolver is required")
	}

	auth, err := LoadOrClaimAuth(token)
	if err != nil {
		return nil, fmt.Errorf("failed to load/claim auth: %w", err)
	}

	return &Client{
		accessURL:  auth.AccessURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		resolver:   resolver,
		logger:     slog.Default().With("component", "simplefin"),
	}, nil
}

// SimpleFIN API response types.
type accountSet struct {
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// FetchExpenses pulls transactions in [start, end] and maps debits to
// expense records. Credits, pending transactions, and rows outside the
// window are skipped.
func (c *Client) FetchExpenses(ctx context.Context, userID string, start, end time.Time) ([]model.Expense, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	if userID == "" {
		return nil, errors.New("user id cannot be empty")
	}
	if start.After(end) {
		return nil, errors.New("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from SimpleFIN",
		"start_date", start.Format("2006-01-02"),
		"end_date", end.Format("2006-01-02"))

	set, err := c.fetchAccounts(ctx, &start, &end)
	if err != nil {
		return nil, err
	}

	var expenses []model.Expense
	skipped := 0
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				skipped++
				continue
			}

			date := time.Unix(tx.Posted, 0).UTC()
			if date.Before(start) || date.After(end) {
				skipped++
				continue
			}

			amount, err := parseAmount(tx.Amount)
			if err != nil {
				c.logger.Warn("Skipping transaction with unparseable amount",
					"transaction_id", tx.ID,
					"amount", tx.Amount,
					"error", err)
				skipped++
				continue
			}

			// SimpleFIN debits are negative; anything else is income.
			if amount >= 0 {
				skipped++
				continue
			}

			item := tx.Payee
			if item == "" {
				item = tx.Description
			}
			item = bankfeed.CleanMerchantName(item)

			expense := model.Expense{
				ID:       fmt.Sprintf("%s:%s", acct.ID, tx.ID),
				UserID:   userID,
				Item:     item,
				Category: c.resolver.Resolve(item),
				Amount:   -amount,
				Currency: model.DefaultCurrency,
				Source:   model.SourceSimpleFIN,
				SpentAt:  date,
			}
			expense.Hash = expense.GenerateHash()

			expenses = append(expenses, expense)
		}
	}

	c.logger.Info("Fetched transactions from SimpleFIN",
		"accounts", len(set.Accounts),
		"expenses", len(expenses),
		"skipped", skipped)

	return expenses, nil
}

// Accounts lists the accounts behind the access URL. SimpleFIN exposes no
// mask or account type.
func (c *Client) Accounts(ctx context.Context) ([]bankfeed.Account, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	set, err := c.fetchAccounts(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	accounts := make([]bankfeed.Account, 0, len(set.Accounts))
	for _, acct := range set.Accounts {
		accounts = append(accounts, bankfeed.Account{
			ID:   acct.ID,
			Name: acct.Name,
		})
	}

	return accounts, nil
}

func (c *Client) fetchAccounts(ctx context.Context, start, end *time.Time) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	if start != nil {
		q.Set("start-date", strconv.FormatInt(start.Unix(), 10))
	}
	if end != nil {
		// SimpleFIN's end-date is exclusive.
		q.Set("end-date", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var set accountSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &set, nil
}

// parseAmount parses a SimpleFIN amount, a signed decimal string.
func parseAmount(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}
