package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"expensebot/internal/category"
	"expensebot/internal/classifier"
	"expensebot/internal/common"
	"expensebot/internal/config"
	"expensebot/internal/engine"
	"expensebot/internal/report"
	"expensebot/internal/service"
	"expensebot/internal/session"
	"expensebot/internal/storage"
)

// defaultUserID is the expense owner for local CLI sessions. The server and
// webhook paths carry real per-user ids; the terminal is single-user.
const defaultUserID = "local"

// databasePath resolves the SQLite file location: db.path from config if
// set, else the XDG data directory default.
func databasePath() (string, error) {
	if dbPath := viper.GetString("db.path"); dbPath != "" {
		return config.ExpandPath(dbPath), nil
	}

	dir, err := config.DataDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve database location: %w", err)
	}
	return filepath.Join(dir, "expensebot.db"), nil
}

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newResolver builds the category resolver, preferring an on-disk mapping
// file over the embedded default table.
func newResolver() (*category.Resolver, error) {
	if path := viper.GetString("categories.mapping_file"); path != "" {
		return category.NewResolverFromFile(config.ExpandPath(path))
	}
	return category.NewResolver()
}

// llmConfig assembles the classifier configuration from viper, falling back
// to the provider's conventional environment variable for the API key.
func llmConfig() classifier.Config {
	cfg := classifier.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		BaseURL:     viper.GetString("llm.base_url"),
		Model:       viper.GetString("llm.model"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}

	if cfg.APIKey == "" {
		switch cfg.Provider {
		case "openrouter":
			cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
		case "anthropic":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		default:
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if cfg.Provider == "openrouter" && cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}

	return cfg
}

// app bundles the long-lived collaborators behind the chat and serve
// commands. Close releases them in reverse dependency order.
type app struct {
	store    service.Storage
	resolver *category.Resolver
	sessions *session.Store
	reporter *report.Service
	engine   *engine.Engine
}

// buildApp wires storage, resolver, sessions, reporting, classifier, and
// engine. With mock set the deterministic keyword classifier is used instead
// of an LLM provider, so no API key is needed. Hooks observe turn outcomes;
// pass the zero value when nothing is counting.
func buildApp(ctx context.Context, mock bool, hooks engine.Hooks) (*app, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	resolver, err := newResolver()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load category mapping: %w", err)
	}

	var cls engine.Classifier
	if mock {
		cls = classifier.NewMockClassifier()
	} else {
		cls, err = classifier.NewClassifier(llmConfig())
		if err != nil {
			_ = store.Close()
			return nil, common.NewUserError("failed to create classifier (set llm.api_key or pass --mock)", err)
		}
	}

	sessions := session.NewStore(viper.GetDuration("session.ttl"))
	reporter := report.NewService(store, resolver)

	engineCfg := engine.DefaultConfig()
	engineCfg.Hooks = hooks
	if hw := viper.GetInt("session.history_window"); hw > 0 {
		engineCfg.HistoryWindow = hw
	}

	return &app{
		store:    store,
		resolver: resolver,
		sessions: sessions,
		reporter: reporter,
		engine:   engine.NewWithConfig(sessions, resolver, cls, reporter, reporter, reporter, engineCfg),
	}, nil
}

// Close stops the session janitor and closes the database.
func (a *app) Close() {
	a.sessions.Close()
	_ = a.store.Close()
}

// parseDateRange resolves an explicit start/end pair, falling back to the
// trailing N days ending now.
func parseDateRange(startStr, endStr string, days int) (startDate, endDate time.Time, err error) {
	if startStr != "" && endStr != "" {
		startDate, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date format: %w", err)
		}

		endDate, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date format: %w", err)
		}

		if startDate.After(endDate) {
			return time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s", startStr, endStr)
		}

		return startDate, endDate, nil
	}

	if days <= 0 {
		days = 30
	}

	endDate = time.Now()
	startDate = endDate.AddDate(0, 0, -days)

	return startDate, endDate, nil
}
