package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"expensebot/internal/engine"
)

// Run starts the chat interface and blocks until the user quits or the
// context is canceled.
func Run(ctx context.Context, eng *engine.Engine, userID, themeName string) error {
	if eng == nil {
		return fmt.Errorf("engine is required")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	program := tea.NewProgram(
		newModel(ctx, eng, userID, GetTheme(themeName)),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		// Cancellation from outside (SIGINT) is a normal exit.
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
