package classifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"expensebot/internal/common"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

// stubClient is a scripted provider client.
type stubClient struct {
	resp     ExtractionResponse
	prompts  []string
	failures int
	calls    int
	mu       sync.Mutex
}

func (s *stubClient) Classify(_ context.Context, prompt string) (ExtractionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.failures > 0 {
		s.failures--
		return ExtractionResponse{}, errors.New("upstream unavailable")
	}
	return s.resp, nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestClassifier(client Client) *Classifier {
	return &Classifier{
		client:  client,
		cache:   cache.New(time.Minute, time.Minute),
		limiter: rate.NewLimiter(rate.Inf, 0),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
}

func TestNewClassifier(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "openai provider",
			config: Config{Provider: "openai", APIKey: "key"},
		},
		{
			name:   "openrouter alias",
			config: Config{Provider: "openrouter", APIKey: "key", BaseURL: "https://openrouter.ai/api/v1"},
		},
		{
			name:   "anthropic provider",
			config: Config{Provider: "Anthropic", APIKey: "key"},
		},
		{
			name:    "unsupported provider",
			config:  Config{Provider: "groq", APIKey: "key"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			config:  Config{Provider: "openai"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClassifier(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestClassifyValidatesIntent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Intent
	}{
		{name: "known intent", raw: "log_expense", want: model.IntentLogExpense},
		{name: "case folded", raw: "Query", want: model.IntentQuery},
		{name: "invented intent collapses", raw: "banana", want: model.IntentUnknown},
		{name: "empty intent collapses", raw: "", want: model.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(&stubClient{resp: ExtractionResponse{Intent: tt.raw}})

			result, err := c.Classify(context.Background(), tt.name, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Intent)
		})
	}
}

func TestClassifyCachesRepeatedMessages(t *testing.T) {
	stub := &stubClient{resp: ExtractionResponse{Intent: "log_expense", Amount: strPtr("500")}}
	c := newTestClassifier(stub)
	ctx := context.Background()

	first, err := c.Classify(ctx, "500 for fuel", nil)
	require.NoError(t, err)
	second, err := c.Classify(ctx, "500 for fuel", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.callCount())
}

func TestClassifyCacheKeyIncludesHistory(t *testing.T) {
	stub := &stubClient{resp: ExtractionResponse{Intent: "log_expense", Amount: strPtr("1400")}}
	c := newTestClassifier(stub)
	ctx := context.Background()

	history := []model.ConversationTurn{
		{Role: model.RoleUser, Text: "sweets"},
		{Role: model.RoleAssistant, Text: "What was the cost of sweets?"},
	}

	_, err := c.Classify(ctx, "1400", nil)
	require.NoError(t, err)
	_, err = c.Classify(ctx, "1400", history)
	require.NoError(t, err)
	_, err = c.Classify(ctx, "1400", history)
	require.NoError(t, err)

	assert.Equal(t, 2, stub.callCount())
}

func TestClassifyRetriesTransientFailures(t *testing.T) {
	stub := &stubClient{
		resp:     ExtractionResponse{Intent: "log_expense"},
		failures: 1,
	}
	c := newTestClassifier(stub)

	result, err := c.Classify(context.Background(), "500 for fuel", nil)
	require.NoError(t, err)
	assert.Equal(t, model.IntentLogExpense, result.Intent)
	assert.Equal(t, 2, stub.callCount())
}

func TestClassifyFailsAfterMaxAttempts(t *testing.T) {
	stub := &stubClient{failures: 10}
	c := newTestClassifier(stub)
	c.retryOpts.MaxAttempts = 2

	_, err := c.Classify(context.Background(), "500 for fuel", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 2, stub.callCount())
}

func TestClassifyPromptCarriesHistoryWindow(t *testing.T) {
	stub := &stubClient{resp: ExtractionResponse{Intent: "log_expense"}}
	c := newTestClassifier(stub)

	history := []model.ConversationTurn{
		{Role: model.RoleUser, Text: "sweets"},
		{Role: model.RoleAssistant, Text: "What was the cost of sweets?"},
	}

	_, err := c.Classify(context.Background(), "1400", history)
	require.NoError(t, err)

	require.Len(t, stub.prompts, 1)
	prompt := stub.prompts[0]
	assert.Contains(t, prompt, "User: sweets")
	assert.Contains(t, prompt, "Assistant: What was the cost of sweets?")
	assert.Contains(t, prompt, `Latest message: "1400"`)
	assert.Contains(t, prompt, "Today's date is")
}
