package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/dagchat/internal/chat"
	"github.com/diogo/dagchat/internal/models"
	"github.com/diogo/dagchat/internal/render"
)

// Message types produced by controller commands
type (
	initDoneMsg struct{ err error }
	sendDoneMsg struct{ sent bool }
)

// Controller is the part of chat.Controller the model drives.
type Controller interface {
	Init(ctx context.Context) error
	Send(ctx context.Context, text string) bool
	SessionID() string
	InFlight() bool
	LastReply() string
}

// Model represents the TUI state
type Model struct {
	ctx  context.Context
	ctrl Controller

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// State
	entries     []chat.Entry
	typing      bool
	frame       int
	modelStatus chat.ModelStatus
	notice      string
	err         error
	ready       bool

	copyFn func(string) error

	// Dimensions
	width  int
	height int
}

// NewModel creates a chat model driving ctrl.
func NewModel(ctx context.Context, ctrl Controller) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	return Model{
		ctx:         ctx,
		ctrl:        ctrl,
		textarea:    ta,
		modelStatus: chat.ModelStatus{Text: "Loading model info..."},
		copyFn:      clipboard.WriteAll,
	}
}

// Init starts the session and the cursor blink
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.initSession())
}

func (m Model) initSession() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return initDoneMsg{err: ctrl.Init(ctx)}
	}
}

func (m Model) send(text string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return sendDoneMsg{sent: ctrl.Send(ctx, text)}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Send):
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.typing {
				return m, nil
			}
			if input == "/exit" || input == "/quit" {
				return m, tea.Quit
			}
			m.notice = ""
			return m, m.send(m.textarea.Value())

		case key.Matches(msg, keys.Copy):
			reply := m.ctrl.LastReply()
			if reply == "" {
				m.notice = "Nothing to copy yet"
				return m, nil
			}
			if err := m.copyFn(reply); err != nil {
				m.err = err
				return m, nil
			}
			m.notice = "Copied last reply to clipboard"
			return m, nil

		case key.Matches(msg, keys.Retry):
			if m.ctrl.SessionID() != "" || m.ctrl.InFlight() {
				return m, nil
			}
			m.err = nil
			m.notice = "Restarting session..."
			return m, m.initSession()
		}

	case initDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			m.notice = ""
		}

	case sendDoneMsg:
		if !msg.sent && m.ctrl.SessionID() == "" {
			m.notice = "Message not sent: no active session"
		}

	case entryMsg:
		m.entries = append(m.entries, msg.entry)
		m.updateViewport()

	case clearTranscriptMsg:
		m.entries = nil
		m.updateViewport()

	case clearInputMsg:
		m.textarea.Reset()

	case typingMsg:
		m.typing = msg.show
		m.frame = 0

	case typingFrameMsg:
		if m.typing {
			m.frame = msg.active
		}

	case modelStatusMsg:
		m.modelStatus = msg.status

	case scrollMsg:
		m.viewport.GotoBottom()
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return hintStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Airflow Chat"),
		hintStyle.Render("  •  "),
		badgeStyle(m.modelStatus.Severity).Render(m.modelStatus.Text),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	messagesContent := m.viewport.View()
	if len(m.entries) == 0 {
		messagesContent = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	var inputContent string
	if m.typing {
		inputContent = renderTyping(m.frame)
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to Airflow Chat"),
		"",
		welcomeStyle.Width(width).Render("Ask about your DAGs by typing a message below"),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	bindings := []key.Binding{keys.Send, keys.Newline, keys.Copy, keys.Quit}

	var items []string
	for _, b := range bindings {
		h := b.Help()
		items = append(items, statusKeyStyle.Render(h.Key)+statusDescStyle.Render(" "+h.Desc))
	}
	if id := m.ctrl.SessionID(); id != "" {
		items = append(items, statusDescStyle.Render("session "+shortID(id)))
	} else {
		h := keys.Retry.Help()
		items = append(items, statusKeyStyle.Render(h.Key)+statusDescStyle.Render(" "+h.Desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled entries
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	styler := transcriptStyler()

	for i, e := range m.entries {
		if i > 0 {
			content.WriteString("\n")
		}
		body := render.Terminal(e.Segments, styler)

		switch e.Role {
		case models.RoleUser:
			content.WriteString(userLabelStyle.Render("⬤ You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(body))
		case models.RoleSystem:
			content.WriteString(systemLabelStyle.Render("System") + "\n")
			content.WriteString(systemBubbleStyle.Width(bubbleWidth - 4).Render(body))
		default:
			content.WriteString(assistantLabelStyle.Render("✦ Assistant") + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Options configures Run.
type Options struct {
	Theme          string
	Logger         *zap.Logger
	TypingInterval time.Duration
}

// Run starts a full-screen chat against backend and blocks until the user
// quits or ctx is canceled.
func Run(ctx context.Context, backend chat.Backend, opts Options) error {
	if opts.Theme != "" {
		ApplyTheme(opts.Theme)
	}

	view := &programView{}
	ctrlOpts := []chat.Option{chat.WithLogger(opts.Logger)}
	if opts.TypingInterval > 0 {
		ctrlOpts = append(ctrlOpts, chat.WithTypingInterval(opts.TypingInterval))
	}
	ctrl := chat.NewController(backend, view, ctrlOpts...)

	p := tea.NewProgram(NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	view.attach(p.Send)

	_, err := p.Run()
	return err
}
