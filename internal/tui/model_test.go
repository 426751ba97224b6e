package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebot/internal/category"
	"expensebot/internal/classifier"
	"expensebot/internal/engine"
	"expensebot/internal/report"
	"expensebot/internal/session"
	"expensebot/internal/storage"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	resolver, err := category.NewResolver()
	require.NoError(t, err)

	sessions := session.NewStore(session.DefaultTTL)
	t.Cleanup(sessions.Close)

	reporter := report.NewService(store, resolver)
	eng := engine.New(sessions, resolver, classifier.NewMockClassifier(), reporter, reporter, reporter)

	m := newModel(context.Background(), eng, "user-1", Default)
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	return resized.(Model)
}

func TestModelStartsWithWelcome(t *testing.T) {
	m := newTestModel(t)

	assert.True(t, m.ready)
	require.Len(t, m.history, 1)
	assert.Equal(t, "message", m.history[0].kind)

	view := m.View()
	assert.Contains(t, view, "Expense Chat")
	assert.Contains(t, view, "user-1")
	assert.Contains(t, view, "Tell me what you spent")
}

func TestHandleSubmit(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("500 on fuel")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(Model)

	require.NotNil(t, cmd)
	assert.True(t, next.isLoading)
	assert.Empty(t, next.input.Value())
	require.Len(t, next.history, 2)
	assert.Equal(t, "user", next.history[1].kind)
	assert.Equal(t, "500 on fuel", next.history[1].text)
}

func TestSubmitEmptyInputIgnored(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("   ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, next.isLoading)
	assert.Len(t, next.history, 1)
}

func TestSubmitWhileLoadingIgnored(t *testing.T) {
	m := newTestModel(t)
	m.isLoading = true
	m.input.SetValue("1400 for sweets")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next := updated.(Model)

	assert.Nil(t, cmd)
	assert.Len(t, next.history, 1)
}

func TestSendMessageRoundtrip(t *testing.T) {
	m := newTestModel(t)

	msg := m.sendMessage("500 on fuel")()
	reply, ok := msg.(replyMsg)
	require.True(t, ok)
	require.NotNil(t, reply.response.Confirmation)
	assert.Contains(t, *reply.response.Confirmation, "Logged 500 PKR for transportation.")

	m.isLoading = true
	updated, _ := m.Update(reply)
	next := updated.(Model)

	assert.False(t, next.isLoading)
	require.Len(t, next.history, 2)
	assert.Equal(t, "confirmation", next.history[1].kind)
	assert.Contains(t, next.View(), "Logged 500 PKR")
}

func TestClarificationFlow(t *testing.T) {
	m := newTestModel(t)

	msg := m.sendMessage("bought sweets")()
	reply, ok := msg.(replyMsg)
	require.True(t, ok)
	require.NotNil(t, reply.response.Clarification)
	assert.Equal(t, "What was the cost of sweets?", *reply.response.Clarification)

	updated, _ := m.Update(reply)
	next := updated.(Model)
	assert.Equal(t, "clarification", next.history[len(next.history)-1].kind)

	followUp := next.sendMessage("2500")()
	confirm, ok := followUp.(replyMsg)
	require.True(t, ok)
	require.NotNil(t, confirm.response.Confirmation)
	assert.Contains(t, *confirm.response.Confirmation, "2,500 PKR")
}

func TestReplyStyles(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		kind string
		want any
	}{
		{kind: "confirmation", want: m.theme.Confirmation},
		{kind: "clarification", want: m.theme.Clarification},
		{kind: "query_result", want: m.theme.QueryResult},
		{kind: "summary", want: m.theme.Summary},
		{kind: "message", want: m.theme.Message},
		{kind: "user", want: m.theme.Message},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.want, m.replyStyle(tt.kind))
		})
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyType
	}{
		{name: "escape", key: tea.KeyEsc},
		{name: "ctrl+c", key: tea.KeyCtrlC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			updated, cmd := m.Update(tea.KeyMsg{Type: tt.key})
			next := updated.(Model)

			assert.True(t, next.quitting)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestTranscriptKeepsTimestamps(t *testing.T) {
	m := newTestModel(t)
	m.history = append(m.history, chatMessage{
		kind: "confirmation",
		text: "done",
		at:   time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC),
	})
	m.refreshTranscript()

	assert.Contains(t, m.View(), "09:30")
}

func TestGetTheme(t *testing.T) {
	assert.Equal(t, CatppuccinMocha, GetTheme("catppuccin-mocha"))
	assert.Equal(t, Default, GetTheme("anything-else"))
}

func TestRunValidation(t *testing.T) {
	err := Run(context.Background(), nil, "user-1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine is required")

	m := newTestModel(t)
	err = Run(context.Background(), m.engine, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user id is required")
}
