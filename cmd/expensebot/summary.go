package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensebot/internal/model"
	"expensebot/internal/report"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a weekly or monthly spending summary",
		RunE:  runSummary,
	}

	cmd.Flags().String("period", "weekly", "summary period (weekly, monthly)")
	cmd.Flags().String("user", defaultUserID, "user id to summarize")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	periodStr, _ := cmd.Flags().GetString("period")
	user, _ := cmd.Flags().GetString("user")

	var period model.SummaryPeriod
	switch periodStr {
	case "weekly":
		period = model.PeriodWeekly
	case "monthly":
		period = model.PeriodMonthly
	default:
		return fmt.Errorf("invalid period %q: must be weekly or monthly", periodStr)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	resolver, err := newResolver()
	if err != nil {
		return fmt.Errorf("failed to load category mapping: %w", err)
	}

	text, err := report.NewService(store, resolver).RunSummary(ctx, user, period)
	if err != nil {
		return fmt.Errorf("failed to build summary: %w", err)
	}

	fmt.Println(text)
	return nil
}
