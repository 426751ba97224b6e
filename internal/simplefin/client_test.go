package simplefin

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/category"
	"expensebot/internal/model"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	resolver, err := category.NewResolver()
	require.NoError(t, err)

	return &Client{
		accessURL:  srv.URL,
		httpClient: srv.Client(),
		resolver:   resolver,
		logger:     slog.Default().With("component", "simplefin"),
	}
}

func accountsFixture(inRange, outOfRange int64) string {
	return fmt.Sprintf(`{
		"accounts": [
			{
				"id": "act-1",
				"name": "HBL Current",
				"currency": "PKR",
				"balance": "15200.00",
				"transactions": [
					{"id": "t1", "amount": "-450.00", "payee": "PSO Fuel Station", "posted": %[1]d},
					{"id": "t2", "amount": "5000.00", "payee": "Employer", "posted": %[1]d},
					{"id": "t3", "amount": "-900.00", "payee": "Pending Shop", "posted": %[1]d, "pending": true},
					{"id": "t4", "amount": "-120.50", "description": "FOODPANDA ORDER", "posted": %[1]d},
					{"id": "t5", "amount": "-300.00", "payee": "Old Charge", "posted": %[2]d}
				]
			},
			{
				"id": "act-2",
				"name": "HBL Credit Card",
				"currency": "PKR",
				"balance": "-2200.00",
				"transactions": [
					{"id": "t6", "amount": "-2200", "payee": "Daraz.pk Ltd", "posted": %[1]d}
				]
			}
		]
	}`, inRange, outOfRange)
}

func TestFetchExpenses(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	posted := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	old := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start-date"))
		assert.NotEmpty(t, r.URL.Query().Get("end-date"))
		fmt.Fprint(w, accountsFixture(posted.Unix(), old.Unix()))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	expenses, err := client.FetchExpenses(context.Background(), "user-1", start, end)
	require.NoError(t, err)
	require.Len(t, expenses, 3)

	byID := make(map[string]model.Expense, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
	}

	fuel := byID["act-1:t1"]
	assert.Equal(t, "Pso Fuel Station", fuel.Item)
	assert.Equal(t, "transportation", fuel.Category)
	assert.InDelta(t, 450.0, fuel.Amount, 0.001)
	assert.Equal(t, model.SourceSimpleFIN, fuel.Source)
	assert.Equal(t, "PKR", fuel.Currency)
	assert.Equal(t, posted, fuel.SpentAt)
	assert.NotEmpty(t, fuel.Hash)

	food := byID["act-1:t4"]
	assert.Equal(t, "Foodpanda Order", food.Item)
	assert.Equal(t, "food", food.Category)
	assert.InDelta(t, 120.5, food.Amount, 0.001)

	card := byID["act-2:t6"]
	assert.Equal(t, "Daraz.Pk", card.Item)
	assert.Equal(t, "misc", card.Category)
	assert.InDelta(t, 2200.0, card.Amount, 0.001)
}

func TestFetchExpensesValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"accounts": []}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	now := time.Now()

	tests := []struct {
		name    string
		userID  string
		start   time.Time
		end     time.Time
		wantErr string
	}{
		{name: "empty user", userID: "", start: now.AddDate(0, 0, -7), end: now, wantErr: "user id cannot be empty"},
		{name: "inverted range", userID: "user-1", start: now, end: now.AddDate(0, 0, -7), wantErr: "start date must be before end date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.FetchExpenses(context.Background(), tt.userID, tt.start, tt.end)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFetchExpensesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "access revoked", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	_, err := client.FetchExpenses(context.Background(), "user-1", time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SimpleFIN API error: 403")
	assert.Contains(t, err.Error(), "access revoked")
}

func TestAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("start-date"))
		fmt.Fprint(w, accountsFixture(time.Now().Unix(), time.Now().Unix()))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "act-1", accounts[0].ID)
	assert.Equal(t, "HBL Current", accounts[0].Name)
	assert.Equal(t, "HBL Credit Card", accounts[1].Name)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "debit", raw: "-450.00", want: -450},
		{name: "credit", raw: "5000.00", want: 5000},
		{name: "whitespace", raw: " -120.5 ", want: -120.5},
		{name: "integer", raw: "-2200", want: -2200},
		{name: "empty", raw: "", wantErr: true},
		{name: "thousands separator", raw: "2,500", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestClaimToken(t *testing.T) {
	var calls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, srv.URL+"/access/abc123")
	}))
	defer srv.Close()

	token := base64.URLEncoding.EncodeToString([]byte(srv.URL + "/claim/xyz"))

	accessURL, err := claimToken(token)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/access/abc123", accessURL)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClaimTokenErrors(t *testing.T) {
	t.Run("not base64", func(t *testing.T) {
		_, err := claimToken("!!not-base64!!")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode SimpleFIN token")
	})

	t.Run("not a URL", func(t *testing.T) {
		token := base64.URLEncoding.EncodeToString([]byte("ftp://nope"))
		_, err := claimToken(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid URL")
	})

	t.Run("claim rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "token already claimed", http.StatusForbidden)
		}))
		defer srv.Close()

		token := base64.URLEncoding.EncodeToString([]byte(srv.URL))
		_, err := claimToken(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to claim SimpleFIN access: 403")
	})
}

func TestLoadOrClaimAuth(t *testing.T) {
	var claims atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		claims.Add(1)
		fmt.Fprint(w, srv.URL+"/access/abc123")
	}))
	defer srv.Close()

	t.Setenv("XDG_DATA_HOME", t.TempDir())
	token := base64.URLEncoding.EncodeToString([]byte(srv.URL + "/claim/xyz"))

	auth, err := LoadOrClaimAuth(token)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/access/abc123", auth.AccessURL)
	assert.Equal(t, int32(1), claims.Load())

	stateFile := filepath.Join(os.Getenv("XDG_DATA_HOME"), "expensebot", "simplefin_auth.json")
	_, err = os.Stat(stateFile)
	require.NoError(t, err)

	// Second call reuses the saved access URL without claiming again.
	again, err := LoadOrClaimAuth(token)
	require.NoError(t, err)
	assert.Equal(t, auth.AccessURL, again.AccessURL)
	assert.Equal(t, int32(1), claims.Load())
}
