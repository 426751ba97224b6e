package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"expensebot/internal/cli"
	"expensebot/internal/common"
	"expensebot/internal/config"
	"expensebot/internal/export"
	"expensebot/internal/model"
	"expensebot/internal/report"
	"expensebot/internal/service"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an expense report to Google Sheets",
		Long: `Build a summary report for the period and write it to a Google Sheets
spreadsheet: totals, category breakdown, and the full expense list.

Authentication uses either a service account (sheets.service_account_path)
or an OAuth2 refresh token (sheets.client_id/client_secret/refresh_token).`,
		RunE: runExport,
	}

	cmd.Flags().String("period", "monthly", "report period (weekly, monthly)")
	cmd.Flags().String("user", defaultUserID, "user id to report on")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
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

	exportCfg, err := config.LoadExportConfig()
	if err != nil {
		return common.NewUserError(
			"sheets export is not configured (set sheets.service_account_path or sheets.client_id/client_secret/refresh_token)", err)
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

	reporter := report.NewService(store, resolver)
	summary, err := reporter.Summarize(ctx, user, period)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if summary.Count == 0 {
		slog.Warn("No expenses in period, nothing to export", "period", periodStr, "user", user)
		return nil
	}

	expenses, err := store.ListExpenses(ctx, user, service.ExpenseFilter{
		StartDate: &summary.Start,
		EndDate:   &summary.End,
	})
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	writer, err := export.NewWriter(ctx, *exportCfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	if err := writer.Write(ctx, summary, expenses); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d expenses (%s report) to Google Sheets", summary.Count, periodStr)))
	return nil
}
