// Package tui is the interactive terminal chat interface. Messages are sent
// to the dialogue engine asynchronously so the transcript stays responsive
// while the classifier works.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"expensebot/internal/engine"
)

const welcomeText = "Hi! Tell me what you spent, like \"500 on fuel\", or ask about your spending."

// chatMessage is one transcript entry. kind is "user" for sent messages and
// the response kind (confirmation, clarification, ...) for replies.
type chatMessage struct {
	at   time.Time
	kind string
	text string
}

// Model holds the chat TUI state.
type Model struct {
	ctx       context.Context
	engine    *engine.Engine
	history   []chatMessage
	userID    string
	viewport  viewport.Model
	input     textinput.Model
	spinner   spinner.Model
	theme     Theme
	width     int
	height    int
	isLoading bool
	ready     bool
	quitting  bool
}

func newModel(ctx context.Context, eng *engine.Engine, userID string, theme Theme) Model {
	input := textinput.New()
	input.Placeholder = "Log an expense or ask about your spending..."
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Spinner

	return Model{
		ctx:     ctx,
		engine:  eng,
		userID:  userID,
		input:   input,
		spinner: s,
		theme:   theme,
		history: []chatMessage{
			{kind: "message", text: welcomeText, at: time.Now()},
		},
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			return m.handleSubmit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if !m.isLoading {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case replyMsg:
		m.isLoading = false
		m.history = append(m.history, chatMessage{
			kind: msg.response.Kind(),
			text: msg.response.Text(),
			at:   time.Now(),
		})
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	m.input.Reset()
	m.isLoading = true
	m.history = append(m.history, chatMessage{kind: "user", text: text, at: time.Now()})
	m.refreshTranscript()

	return m, tea.Batch(m.spinner.Tick, m.sendMessage(text))
}

// sendMessage runs the engine turn off the UI loop and reports back as a
// replyMsg.
func (m Model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{response: m.engine.HandleMessage(m.ctx, m.userID, text)}
	}
}

func (m *Model) resize() {
	// Header, input box, and help line each take vertical space.
	chatWidth := m.width - 2
	chatHeight := m.height - 7
	if chatWidth < 20 {
		chatWidth = 20
	}
	if chatHeight < 3 {
		chatHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = chatHeight
	}
	m.input.Width = chatWidth - 6

	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
