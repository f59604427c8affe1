package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jingkaihe/skillq/pkg/confirm"
	"github.com/jingkaihe/skillq/pkg/hooks"
	"github.com/jingkaihe/skillq/pkg/inject"
	"github.com/jingkaihe/skillq/pkg/logger"
	"github.com/jingkaihe/skillq/pkg/notify"
	"github.com/jingkaihe/skillq/pkg/palette"
	"github.com/jingkaihe/skillq/pkg/queue"
	"github.com/jingkaihe/skillq/pkg/skills"
)

// Sender dispatches an outgoing message once the before-send hooks ran
type Sender interface {
	Send(ctx context.Context, msg hooks.Message) error
}

type discardSender struct{}

func (discardSender) Send(context.Context, hooks.Message) error { return nil }

// Options wires the chat model. Zero fields get working defaults.
type Options struct {
	Catalog skills.Catalog
	Slot    *queue.Slot
	Status  *StatusBar
	// Hooks must already contain the skill injection hook for Slot. When
	// nil a registry with only that hook is created.
	Hooks          *hooks.Registry
	Sender         Sender
	Scheduler      confirm.Scheduler
	ConfirmTimeout time.Duration
}

// eventSink forwards timer messages into the running program
type eventSink struct {
	mu     sync.Mutex
	target func(tea.Msg)
}

func (s *eventSink) post(msg any) {
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()
	if target != nil {
		target(msg)
	}
}

// Model represents the main TUI model
type Model struct {
	viewport           viewport.Model
	textarea           textarea.Model
	ready              bool
	width              int
	height             int
	messages           []Message
	formatter          *MessageFormatter
	isProcessing       bool
	spinnerIndex       int
	statusMessage      string
	ctx                context.Context
	cancel             context.CancelFunc
	ctrlCPressCount    int
	lastCtrlCPressTime time.Time
	keys               chatKeyMap

	catalog   skills.Catalog
	slot      *queue.Slot
	status    *StatusBar
	protocol  *queue.Protocol
	hooks     *hooks.Registry
	sender    Sender
	scheduler confirm.Scheduler
	events    *eventSink
	overlay   Overlay
}

// Custom message types
type (
	sentMsg struct {
		message hooks.Message
		err     error
	}
	clearNoticeMsg struct {
		seq int
	}
	resetCtrlCMsg struct{}
)

// NewModel creates a new TUI model
func NewModel(ctx context.Context, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message... (/skill to pick a skill)"
	ta.Focus()
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	ta.Prompt = "❯ "

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	ta.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	ta.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	vp := viewport.New(0, 0)
	vp.KeyMap.PageDown.SetEnabled(true)
	vp.KeyMap.PageUp.SetEnabled(true)

	if opts.Slot == nil {
		opts.Slot = queue.NewSlot()
	}
	if opts.Status == nil {
		opts.Status = NewStatusBar()
	}
	if opts.Hooks == nil {
		opts.Hooks = hooks.NewRegistry()
		inject.Register(opts.Hooks, inject.New(opts.Slot, opts.Status))
	}
	if opts.Sender == nil {
		opts.Sender = discardSender{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = confirm.ClockScheduler{}
	}

	var protocolOpts []queue.ProtocolOption
	if opts.ConfirmTimeout > 0 {
		protocolOpts = append(protocolOpts, queue.WithConfirmTimeout(opts.ConfirmTimeout))
	}

	ctx, cancel := context.WithCancel(ctx)

	return Model{
		textarea:      ta,
		viewport:      vp,
		formatter:     NewMessageFormatter(0),
		statusMessage: "Ready",
		ctx:           ctx,
		cancel:        cancel,
		keys:          newChatKeyMap(),
		catalog:       opts.Catalog,
		slot:          opts.Slot,
		status:        opts.Status,
		protocol:      queue.NewProtocol(opts.Slot, opts.Status, protocolOpts...),
		hooks:         opts.Hooks,
		sender:        opts.Sender,
		scheduler:     opts.Scheduler,
		events:        &eventSink{},
	}
}

// SetEventTarget sets where confirmation timers post their messages,
// normally the Send method of the running tea.Program
func (m Model) SetEventTarget(target func(tea.Msg)) {
	m.events.mu.Lock()
	defer m.events.mu.Unlock()
	m.events.target = target
}

// Overlay returns the open overlay, if any
func (m Model) Overlay() Overlay { return m.overlay }

// Messages returns the conversation shown in the history
func (m Model) Messages() []Message { return m.messages }

// Status returns the status bar
func (m Model) Status() *StatusBar { return m.status }

// AddMessage adds a new message to the chat history
func (m *Model) AddMessage(content string, isUser bool) {
	m.messages = append(m.messages, Message{
		Content: content,
		IsUser:  isUser,
	})
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

// AddSystemMessage adds a system message to the chat history
func (m *Model) AddSystemMessage(content string) {
	m.messages = append(m.messages, Message{
		Content:  content,
		IsSystem: true,
	})
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

// SetProcessing sets the processing state
func (m *Model) SetProcessing(isProcessing bool) {
	m.isProcessing = isProcessing
	if isProcessing {
		m.statusMessage = "Sending..."
	} else {
		m.statusMessage = "Ready"
	}
}

func (m *Model) updateViewportContent() {
	m.formatter.SetWidth(m.width)
	m.viewport.SetContent(m.formatter.FormatMessages(m.messages))
}

func (m *Model) clearScreen() {
	m.messages = []Message{}
	m.updateViewportContent()
	m.AddSystemMessage("Screen cleared")
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// resetCtrlCCmd creates a command that resets the Ctrl+C counter after a timeout
func resetCtrlCCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return resetCtrlCMsg{}
	})
}

// notify shows a transient notice and schedules its removal
func (m *Model) notify(level notify.Level, text string) tea.Cmd {
	m.status.Notify(level, text)
	return m.noticeExpiry()
}

func (m *Model) noticeExpiry() tea.Cmd {
	if notice, _ := m.status.Notice(); notice == "" {
		return nil
	}
	seq := m.status.noticeSeq()
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// Update handles the message updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case resetCtrlCMsg:
		if m.statusMessage == "Press Ctrl+C again to quit" {
			m.statusMessage = "Ready"
			m.ctrlCPressCount = 0
		}
		return m, nil

	case clearNoticeMsg:
		m.status.clearNotice(msg.seq)
		return m, nil

	case confirm.TickMsg, confirm.DeadlineMsg:
		if dialog, ok := m.overlay.(*ConfirmDialog); ok {
			return m, dialog.Receive(msg)
		}
		return m, nil

	case paletteClosedMsg:
		return m.handlePaletteClosed(msg.outcome)

	case dialogClosedMsg:
		return m.handleDialogClosed(msg.target, msg.outcome)

	case sentMsg:
		return m.handleSent(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.handleCtrlC()
		}

		// Overlays are modal
		if m.overlay != nil {
			return m, m.overlay.HandleKey(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Send):
			return m.submit()
		case key.Matches(msg, m.keys.Help):
			m.AddSystemMessage(GetHelpText())
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.clearScreen()
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.ViewUp()
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.ViewDown()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 1
		footerHeight := 6 // textarea height + border + status bar
		verticalMargins := headerHeight + footerHeight

		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - verticalMargins
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}
		m.textarea.SetWidth(msg.Width - 2)

		if !m.ready {
			m.ready = true
		}
		m.updateViewportContent()
	}

	if m.overlay == nil {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.isProcessing {
		m.spinnerIndex = (m.spinnerIndex + 1) % 8
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()
	if m.ctrlCPressCount > 0 && now.Sub(m.lastCtrlCPressTime) < 2*time.Second {
		if m.overlay != nil {
			m.overlay.Dispose()
			m.overlay = nil
		}
		m.cancel()
		return m, tea.Quit
	}

	m.ctrlCPressCount = 1
	m.lastCtrlCPressTime = now
	m.statusMessage = "Press Ctrl+C again to quit"

	return m, resetCtrlCCmd()
}

// submit handles the composed input: slash commands run locally, anything
// else is sent
func (m Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" || m.isProcessing {
		return m, nil
	}
	m.textarea.Reset()

	if command, _, ok := ParseCommand(content); ok {
		switch Command(command) {
		case CommandSkill:
			return m.openPalette()
		case CommandHelp:
			m.AddMessage(content, true)
			m.AddSystemMessage(GetHelpText())
			return m, nil
		case CommandClear:
			m.clearScreen()
			return m, nil
		}
	}

	m.AddMessage(content, true)
	m.SetProcessing(true)
	return m, m.sendCmd(content)
}

// sendCmd runs the before-send hooks and dispatches the message off the
// UI goroutine
func (m Model) sendCmd(text string) tea.Cmd {
	ctx, registry, sender := m.ctx, m.hooks, m.sender
	return func() tea.Msg {
		msg := registry.Trigger(ctx, hooks.Message{Text: text})
		err := sender.Send(ctx, msg)
		return sentMsg{message: msg, err: err}
	}
}

func (m Model) handleSent(msg sentMsg) (tea.Model, tea.Cmd) {
	m.SetProcessing(false)

	if msg.err != nil {
		logger.G(m.ctx).WithError(msg.err).Warn("failed to send message")
		m.AddSystemMessage("Error: " + msg.err.Error())
	}

	hidden := 0
	for _, segment := range msg.message.Segments {
		if !segment.Hidden {
			continue
		}
		hidden++
		if segment.Kind != inject.SegmentKind {
			continue
		}
		if name, _, err := inject.Unwrap(segment.Content); err == nil {
			m.AddSystemMessage(fmt.Sprintf("Attached skill '%s'", name))
		}
	}
	if hidden > 0 {
		logger.G(m.ctx).WithField("hidden", FormatHiddenSegments(hidden)).Debug("message sent with hidden segments")
	}

	return m, m.noticeExpiry()
}

func (m Model) openPalette() (tea.Model, tea.Cmd) {
	if len(m.catalog) == 0 {
		cmd := m.notify(notify.LevelInfo, "No skills available")
		return m, cmd
	}
	m.overlay = NewPalette(m.catalog, m.slot)
	logger.G(m.ctx).WithField("skills", len(m.catalog)).Debug("skill palette opened")
	return m, nil
}

func (m Model) handlePaletteClosed(outcome palette.Outcome) (tea.Model, tea.Cmd) {
	if _, ok := m.overlay.(*Palette); ok {
		m.overlay = nil
	}

	session := m.protocol.Apply(m.ctx, outcome)
	if session == nil {
		return m, nil
	}

	dialog := NewConfirmDialog(session)
	session.Start(m.scheduler, m.events.post)
	m.overlay = dialog
	return m, nil
}

func (m Model) handleDialogClosed(target string, outcome confirm.Outcome) (tea.Model, tea.Cmd) {
	if dialog, ok := m.overlay.(*ConfirmDialog); ok && dialog.Session().Target() == target {
		m.overlay = nil
	}

	m.protocol.Resolve(m.ctx, target, outcome)

	switch {
	case outcome.TimedOut:
		return m, m.notify(notify.LevelInfo, fmt.Sprintf("Kept skill '%s' (no answer)", target))
	case outcome.Remove:
		return m, m.notify(notify.LevelInfo, fmt.Sprintf("Removed skill '%s' from the queue", target))
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	history := m.viewport.View()
	if m.overlay != nil {
		history = lipgloss.Place(
			m.width,
			m.viewport.Height,
			lipgloss.Center,
			lipgloss.Center,
			strings.Join(m.overlay.Render(m.width-4), "\n"),
		)
	}

	inputBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 2).
		Width(m.width - 2).
		Align(lipgloss.Left).
		Render(m.textarea.View())

	parts := []string{
		lipgloss.NewStyle().PaddingBottom(1).Render(history),
		inputBox,
	}

	if input := m.textarea.Value(); m.overlay == nil && ShouldShowCommandDropdown(input, GetAvailableCommands(), m.isProcessing) {
		if matches := MatchingCommands(input, GetAvailableCommands()); len(matches) > 0 {
			parts = append(parts, mutedStyle.Render("  "+strings.Join(matches, "  ")))
		}
	}

	parts = append(parts, m.statusView())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	indicatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	noticeStyles = map[notify.Level]lipgloss.Style{
		notify.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Padding(0, 1),
		notify.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Padding(0, 1),
		notify.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Padding(0, 1),
	}
)

// statusView renders the status bar
func (m Model) statusView() string {
	statusText := m.statusMessage
	if m.isProcessing {
		statusText = fmt.Sprintf("%s %s", GetSpinnerChar(m.spinnerIndex), m.statusMessage)
	}

	segments := []string{
		statusBarStyle.Render(statusText + " │ Ctrl+C (twice): Quit │ Ctrl+H (/help): Help │ Enter: Send │ /skill: Skills"),
	}

	if indicator := m.status.Indicator(); indicator != "" {
		segments = append(segments, indicatorStyle.Render("● "+indicator))
	}

	if notice, level := m.status.Notice(); notice != "" {
		style, ok := noticeStyles[level]
		if !ok {
			style = noticeStyles[notify.LevelInfo]
		}
		segments = append(segments, style.Render(notice))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}
