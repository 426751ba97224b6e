package config

import (
	"os"

	"github.com/spf13/viper"

	"expensebot/internal/bankfeed"
)

// LoadBankFeedConfig loads Plaid configuration from Viper and environment
// variables, preferring the config file and falling back to PLAID_* vars.
// Validation is left to the caller so accounts can be listed with partial
// credentials during setup.
func LoadBankFeedConfig() bankfeed.Config {
	config := bankfeed.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	}

	if config.ClientID == "" {
		config.ClientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if config.Secret == "" {
		config.Secret = os.Getenv("PLAID_SECRET")
	}
	if config.Environment == "" {
		config.Environment = os.Getenv("PLAID_ENVIRONMENT")
	}
	if config.AccessToken == "" {
		config.AccessToken = os.Getenv("PLAID_ACCESS_TOKEN")
	}

	if config.Environment == "" {
		config.Environment = "sandbox"
	}

	return config
}
