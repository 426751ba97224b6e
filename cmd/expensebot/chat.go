package main

import (
	"github.com/spf13/cobra"

	"expensebot/internal/cli"
	"expensebot/internal/engine"
	"expensebot/internal/tui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the expense bot in your terminal",
		Long: `Open an interactive chat session. Messages are handled exactly like
webhook messages: expenses are extracted, clarified if needed, and saved.

Examples:
  # Full-screen chat
  expensebot chat

  # Line-based chat for dumb terminals or piped input
  expensebot chat --plain

  # Try it without an LLM API key
  expensebot chat --mock`,
		RunE: runChat,
	}

	cmd.Flags().Bool("plain", false, "line-based REPL instead of the full-screen interface")
	cmd.Flags().Bool("mock", false, "use the deterministic keyword classifier instead of an LLM")
	cmd.Flags().String("user", defaultUserID, "user id to log expenses under")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	plain, _ := cmd.Flags().GetBool("plain")
	mock, _ := cmd.Flags().GetBool("mock")
	user, _ := cmd.Flags().GetString("user")
	theme, _ := cmd.Flags().GetString("theme")

	app, err := buildApp(ctx, mock, engine.Hooks{})
	if err != nil {
		return err
	}
	defer app.Close()

	if plain {
		return cli.NewREPL(app.engine, user, nil, nil).Run(ctx)
	}

	return tui.Run(ctx, app.engine, user, theme)
}
