package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the chat interface.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Starting chat..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("enter send • pgup/pgdn scroll • esc quit"))
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("💰 Expense Chat")
	subtitle := m.theme.Subtitle.Render(m.userID)
	return title + "  " + subtitle
}

func (m Model) renderInput() string {
	if m.isLoading {
		return m.theme.InputBox.Width(m.viewport.Width).Render(
			m.spinner.View() + m.theme.Subtitle.Render(" thinking..."))
	}
	return m.theme.InputBox.Width(m.viewport.Width).Render(m.input.View())
}

func (m Model) renderHistory() string {
	sections := make([]string, 0, len(m.history))
	for _, msg := range m.history {
		sections = append(sections, m.renderMessage(msg))
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) renderMessage(msg chatMessage) string {
	var label string
	if msg.kind == "user" {
		label = m.theme.UserLabel.Render("You")
	} else {
		label = m.theme.BotLabel.Render("ExpenseBot")
	}
	stamp := m.theme.Timestamp.Render(msg.at.Format("15:04"))

	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 20
	}
	body := m.replyStyle(msg.kind).Width(wrap).Render(msg.text)

	return label + " " + stamp + "\n" + body
}

// replyStyle colors a transcript entry by what kind of reply it is.
func (m Model) replyStyle(kind string) lipgloss.Style {
	switch kind {
	case "confirmation":
		return m.theme.Confirmation
	case "clarification":
		return m.theme.Clarification
	case "query_result":
		return m.theme.QueryResult
	case "summary":
		return m.theme.Summary
	default:
		return m.theme.Message
	}
}
