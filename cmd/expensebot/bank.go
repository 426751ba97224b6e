package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"expensebot/internal/bankfeed"
	"expensebot/internal/cli"
	"expensebot/internal/config"
	"expensebot/internal/importer"
	"expensebot/internal/simplefin"
)

func bankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Sync expenses from a linked bank account",
		Long: `Pull transactions from a linked bank account and store spending as
expenses. Two feed sources are supported:

  plaid      the Plaid aggregator (plaid.client_id/secret/access_token)
  simplefin  a SimpleFIN bridge claim token (simplefin.token)`,
	}

	cmd.PersistentFlags().String("source", "plaid", "bank feed source (plaid, simplefin)")

	cmd.AddCommand(bankAccountsCmd())
	cmd.AddCommand(bankSyncCmd())

	return cmd
}

func bankAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts on the linked bank feed",
		RunE:  runBankAccounts,
	}
}

func bankSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull bank transactions and store them as expenses",
		Long: `Fetch transactions from the linked bank feed and save spending as
expenses. Credits and income are skipped; rows already synced are
deduplicated, so rerunning is safe.`,
		RunE: runBankSync,
	}

	cmd.Flags().StringP("start-date", "s", "", "start date (format: 2006-01-02)")
	cmd.Flags().StringP("end-date", "e", "", "end date (format: 2006-01-02)")
	cmd.Flags().IntP("days", "d", 30, "number of days to sync (used if start/end dates not specified)")
	cmd.Flags().String("user", defaultUserID, "user id to log expenses under")

	return cmd
}

func newBankFeed(cmd *cobra.Command) (bankfeed.Fetcher, error) {
	source, _ := cmd.Flags().GetString("source")

	resolver, err := newResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to load category mapping: %w", err)
	}

	switch source {
	case "plaid":
		client, err := bankfeed.NewClient(config.LoadBankFeedConfig(), resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to create Plaid client: %w", err)
		}
		return client, nil
	case "simplefin":
		token := viper.GetString("simplefin.token")
		if token == "" {
			token = os.Getenv("SIMPLEFIN_TOKEN")
		}
		client, err := simplefin.NewClient(token, resolver)
		if err != nil {
			return nil, fmt.Errorf("failed to create SimpleFIN client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown bank source %q: must be plaid or simplefin", source)
	}
}

func runBankAccounts(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	feed, err := newBankFeed(cmd)
	if err != nil {
		return err
	}

	accounts, err := feed.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	if len(accounts) == 0 {
		slog.Warn("No accounts found on the linked feed")
		return nil
	}

	content := fmt.Sprintf("Found %d accounts:\n\n", len(accounts))
	for i, account := range accounts {
		line := fmt.Sprintf("%d. %s", i+1, account.Name)
		if account.Mask != "" {
			line += fmt.Sprintf(" (…%s)", account.Mask)
		}
		if account.Type != "" {
			line += fmt.Sprintf(" [%s]", account.Type)
		}
		content += line + "\n"
	}

	fmt.Println(cli.RenderBox("Linked Accounts", content))
	return nil
}

func runBankSync(cmd *cobra.Command, _ []string) error {
	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	startStr, _ := cmd.Flags().GetString("start-date")
	endStr, _ := cmd.Flags().GetString("end-date")
	days, _ := cmd.Flags().GetInt("days")
	user, _ := cmd.Flags().GetString("user")

	start, end, err := parseDateRange(startStr, endStr, days)
	if err != nil {
		return err
	}

	feed, err := newBankFeed(cmd)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	resolver, err := newResolver()
	if err != nil {
		return fmt.Errorf("failed to load category mapping: %w", err)
	}

	slog.Info("Syncing bank transactions",
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"user", user)

	im := importer.NewImporter(store, resolver, os.Stdout)
	result, err := im.ImportFeed(ctx, user, feed, start, end)
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return fmt.Errorf("bank sync failed: %w", err)
	}

	content := fmt.Sprintf(`Transactions fetched: %d
Expenses imported: %d
Duplicates skipped: %d`,
		result.Parsed, result.Imported, result.Duplicates)
	fmt.Println(cli.RenderBox("Bank Sync", content))

	return nil
}
