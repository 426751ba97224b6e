// Package classifier extracts intent and expense fields from chat messages
// using LLM APIs. Provider clients speak the wire protocols; the Classifier
// wrapper adds caching, rate limiting, retries, and boundary validation so the
// engine only ever sees a well-formed result or an error.
package classifier

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"expensebot/internal/common"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

// Classifier implements the engine.Classifier interface over a provider
// Client.
type Classifier struct {
	client    Client
	cache     *cache.Cache
	limiter   *rate.Limiter
	retryOpts service.RetryOptions
}

// NewClassifier creates a new LLM-backed classifier for the configured
// provider. "openrouter" is an alias for the OpenAI-compatible client with a
// custom BaseURL.
func NewClassifier(cfg Config) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai", "openrouter":
		client, err = newOpenAIClient(cfg)
	case "anthropic":
		client, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create classifier client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	perMinute := cfg.RateLimit
	if perMinute <= 0 {
		perMinute = 60
	}

	return &Classifier{
		client:    client,
		cache:     cache.New(cacheTTL, cacheTTL*2),
		limiter:   rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		retryOpts: retryOpts,
	}, nil
}

// Classify extracts intent and expense fields from one message. Identical
// message-plus-history pairs are served from cache, so a retried webhook
// delivery does not burn a second API call.
func (c *Classifier) Classify(ctx context.Context, text string, history []model.ConversationTurn) (model.ClassifierResult, error) {
	key := cacheKey(text, history)
	if cached, found := c.cache.Get(key); found {
		if result, ok := cached.(model.ClassifierResult); ok {
			slog.Debug("Classifier cache hit", "intent", result.Intent)
			return result, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return model.ClassifierResult{}, fmt.Errorf("classifier rate limit wait: %w", err)
	}

	prompt := buildPrompt(text, history, time.Now())

	var raw ExtractionResponse
	err := common.WithRetry(ctx, func() error {
		resp, err := c.client.Classify(ctx, prompt)
		if err != nil {
			slog.Warn("Classification attempt failed", "error", err)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		raw = resp
		return nil
	}, c.retryOpts)
	if err != nil {
		return model.ClassifierResult{}, fmt.Errorf("classification failed: %w", err)
	}

	result := toResult(raw)
	c.cache.Set(key, result, cache.DefaultExpiration)

	slog.Debug("Message classified",
		"intent", result.Intent,
		"has_amount", result.Amount != nil,
		"has_item", result.Item != nil)

	return result, nil
}

// toResult narrows a provider reply to the engine's result type. Intent
// strings outside the known set collapse to unknown; the provider's output
// shape is never trusted.
func toResult(raw ExtractionResponse) model.ClassifierResult {
	return model.ClassifierResult{
		Intent:   model.ParseIntent(raw.Intent),
		Amount:   raw.Amount,
		Item:     raw.Item,
		Category: raw.Category,
	}
}

// cacheKey hashes the message together with its history window. The same
// text after a different conversation can extract differently, so history is
// part of the key.
func cacheKey(text string, history []model.ConversationTurn) string {
	var sb strings.Builder
	sb.WriteString(text)
	for _, turn := range history {
		sb.WriteString("\x00")
		sb.WriteString(string(turn.Role))
		sb.WriteString("\x1f")
		sb.WriteString(turn.Text)
	}
	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", hash)
}
