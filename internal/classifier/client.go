package classifier

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	Classify(ctx context.Context, prompt string) (ExtractionResponse, error)
}

// ExtractionResponse contains the provider's parsed reply for one message.
// Field values are raw tokens exactly as the model emitted them; nothing here
// has been normalized or validated yet.
type ExtractionResponse struct {
	Amount   *string
	Item     *string
	Category *string
	Intent   string
}

// Config holds configuration for the classifier and its provider client.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}
