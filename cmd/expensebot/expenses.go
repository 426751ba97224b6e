package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensebot/internal/cli"
	"expensebot/internal/model"
	"expensebot/internal/service"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List recent expenses",
		RunE:  runExpenses,
	}

	cmd.Flags().String("user", defaultUserID, "user id to list expenses for")
	cmd.Flags().IntP("limit", "n", 20, "maximum number of expenses to show")
	cmd.Flags().String("category", "", "only show this category")

	return cmd
}

func runExpenses(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")
	categoryFilter, _ := cmd.Flags().GetString("category")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	expenses, err := store.ListExpenses(ctx, user, service.ExpenseFilter{
		Category: strings.ToLower(strings.TrimSpace(categoryFilter)),
		Limit:    limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	if len(expenses) == 0 {
		fmt.Println(cli.InfoStyle.Render("No expenses yet. Try: expensebot chat"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Date"),
		cli.TableHeaderStyle.Render("Item"),
		cli.TableHeaderStyle.Render("Category"),
		cli.TableHeaderStyle.Render("Source"),
		cli.TableHeaderStyle.Render("Amount (PKR)"))

	var total float64
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.SpentAt.Format("2006-01-02"),
			e.Item,
			e.Category,
			e.Source,
			model.FormatAmount(e.Amount))
		total += e.Amount
	}

	fmt.Fprintf(w, "\nTotal: %s PKR across %d expenses\n", model.FormatAmount(total), len(expenses))

	return nil
}
