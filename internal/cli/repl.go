package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"expensebot/internal/engine"
)

const replWelcome = `Hi! Tell me what you spent, like "500 on fuel", or ask about your spending.`

// REPL is the plain line-based chat interface. It reads one message per
// line, hands it to the dialogue engine, and prints the styled reply. It is
// the fallback for terminals where the full-screen chat is unwanted.
type REPL struct {
	engine *engine.Engine
	reader *LineReader
	writer io.Writer
	userID string
}

// NewREPL creates a chat loop bound to the given engine and user. A nil
// input defaults to stdin and a nil output to stdout.
func NewREPL(eng *engine.Engine, userID string, input io.Reader, output io.Writer) *REPL {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}

	return &REPL{
		engine: eng,
		reader: NewLineReader(input),
		writer: output,
		userID: userID,
	}
}

// Run reads messages until the user exits, the input ends, or the context
// is canceled. EOF and cancellation are normal exits, not errors.
func (r *REPL) Run(ctx context.Context) error {
	if r.engine == nil {
		return errors.New("engine is required")
	}
	if r.userID == "" {
		return errors.New("user id is required")
	}

	r.printHeader()
	r.printReply("message", replWelcome)

	for {
		if _, err := fmt.Fprint(r.writer, FormatPrompt("You")); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := r.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInputCanceled) || errors.Is(err, io.EOF) {
				r.printFarewell()
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if line == "" {
			continue
		}
		if isExitCommand(line) {
			r.printFarewell()
			return nil
		}

		resp := r.engine.HandleMessage(ctx, r.userID, line)
		r.printReply(resp.Kind(), resp.Text())
	}
}

func (r *REPL) printHeader() {
	header := FormatTitle("Expense Chat") + "\n" +
		SubtitleStyle.Render(fmt.Sprintf("Logging expenses for %s. Type \"exit\" to leave.", r.userID))
	if _, err := fmt.Fprintln(r.writer, header); err != nil {
		slog.Warn("Failed to write chat header", "error", err)
	}
}

func (r *REPL) printReply(kind, text string) {
	if text == "" {
		return
	}
	label := BoldStyle.Render(RobotIcon + " ExpenseBot:")
	if _, err := fmt.Fprintf(r.writer, "%s %s\n\n", label, replyStyle(kind).Render(text)); err != nil {
		slog.Warn("Failed to write reply", "error", err)
	}
}

func (r *REPL) printFarewell() {
	if _, err := fmt.Fprintln(r.writer, "\n"+FormatInfo("See you later! "+WalletIcon)); err != nil {
		slog.Warn("Failed to write farewell", "error", err)
	}
}

func replyStyle(kind string) lipgloss.Style {
	switch kind {
	case "confirmation":
		return SuccessStyle
	case "clarification":
		return WarningStyle
	case "query_result", "summary":
		return InfoStyle
	default:
		return lipgloss.NewStyle()
	}
}

func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
