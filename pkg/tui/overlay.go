package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jingkaihe/skillq/pkg/confirm"
	"github.com/jingkaihe/skillq/pkg/palette"
	"github.com/jingkaihe/skillq/pkg/skills"
)

const (
	// overlayWidth is the outer width of overlay boxes
	overlayWidth = 64
	// paletteRows is how many skills the palette shows at once
	paletteRows = 8
)

// Overlay is a modal panel drawn over the conversation. While an overlay
// is open it receives every key press. The set of overlays is closed:
// *Palette and *ConfirmDialog.
type Overlay interface {
	Render(width int) []string
	HandleKey(msg tea.KeyMsg) tea.Cmd
	Dispose()

	overlay()
}

// paletteClosedMsg is emitted once when the palette reaches an outcome
type paletteClosedMsg struct {
	outcome palette.Outcome
}

// dialogClosedMsg is emitted once when the confirmation dialog resolves
type dialogClosedMsg struct {
	target  string
	outcome confirm.Outcome
}

var (
	overlayBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7aa2f7"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7dcfff"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	queuedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ece6a"))

	activeButtonStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 2).
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("#7aa2f7"))

	inactiveButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236"))
)

// boxWidth clamps the overlay to the available width
func boxWidth(width int) int {
	if width <= 0 || width > overlayWidth {
		return overlayWidth
	}
	return width
}

// innerWidth is the text width inside a box of the given outer width
func innerWidth(outer int) int {
	w := outer - overlayBoxStyle.GetHorizontalFrameSize()
	if w < 1 {
		return 1
	}
	return w
}

func renderBox(width int, body string) []string {
	outer := boxWidth(width)
	box := overlayBoxStyle.
		Width(outer - overlayBoxStyle.GetHorizontalBorderSize()).
		Render(body)
	return strings.Split(box, "\n")
}

func footerHints(bindings ...key.Binding) string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return mutedStyle.Render(strings.Join(hints, "  "))
}

// Palette is the skill picker overlay
type Palette struct {
	session *palette.Session
	keys    paletteKeyMap
}

// NewPalette opens a picker over catalog
func NewPalette(catalog skills.Catalog, queued palette.QueueReader) *Palette {
	return &Palette{
		session: palette.NewSession(catalog, queued),
		keys:    newPaletteKeyMap(),
	}
}

func (*Palette) overlay() {}

// Session exposes the underlying selection state
func (p *Palette) Session() *palette.Session { return p.session }

// HandleKey translates a key press into palette input
func (p *Palette) HandleKey(msg tea.KeyMsg) tea.Cmd {
	var outcome palette.Outcome

	switch {
	case key.Matches(msg, p.keys.Cancel):
		outcome = p.session.Handle(palette.Cancel)
	case key.Matches(msg, p.keys.Confirm):
		outcome = p.session.Handle(palette.Confirm)
	case key.Matches(msg, p.keys.Up):
		outcome = p.session.Handle(palette.Up)
	case key.Matches(msg, p.keys.Down):
		outcome = p.session.Handle(palette.Down)
	case key.Matches(msg, p.keys.Erase):
		outcome = p.session.Handle(palette.Erase)
	case msg.Type == tea.KeySpace:
		outcome = p.session.Handle(palette.Char(' '))
	case msg.Type == tea.KeyRunes && !msg.Alt:
		for _, r := range msg.Runes {
			if outcome = p.session.Handle(palette.Char(r)); outcome.Done() {
				break
			}
		}
	}

	if !outcome.Done() {
		return nil
	}
	return func() tea.Msg { return paletteClosedMsg{outcome: outcome} }
}

// Dispose implements Overlay. The palette holds no resources.
func (p *Palette) Dispose() {}

// Render draws the picker
func (p *Palette) Render(width int) []string {
	inner := innerWidth(boxWidth(width))
	filtered := p.session.Filtered()
	highlight := p.session.Highlight()
	queued, hasQueued := p.session.Queued()

	var b strings.Builder

	position := "0/0"
	if len(filtered) > 0 {
		position = fmt.Sprintf("%d/%d", highlight+1, len(filtered))
	}
	title := overlayTitleStyle.Render("Select skill")
	gap := inner - lipgloss.Width(title) - lipgloss.Width(position)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(title + strings.Repeat(" ", gap) + mutedStyle.Render(position))
	b.WriteString("\n")
	b.WriteString("> " + p.session.Query() + "▏")
	b.WriteString("\n\n")

	if len(filtered) == 0 {
		b.WriteString(mutedStyle.Render(ansi.Truncate(fmt.Sprintf("No skills match '%s'", p.session.Query()), inner, "…")))
		b.WriteString("\n")
	}

	start := 0
	if highlight >= paletteRows {
		start = highlight - paletteRows + 1
	}
	end := start + paletteRows
	if end > len(filtered) {
		end = len(filtered)
	}

	for i := start; i < end; i++ {
		skill := filtered[i]

		cursor := "  "
		name := skill.Name
		if i == highlight {
			cursor = selectedRowStyle.Render("▸ ")
			name = selectedRowStyle.Render(name)
		}

		line := cursor + name
		if hasQueued && queued.Name == skill.Name {
			line += " " + queuedBadgeStyle.Render("● queued")
		}

		if skill.Description != "" {
			room := inner - lipgloss.Width(line) - 3
			if room > 3 {
				line += "  " + mutedStyle.Render(ansi.Truncate(skill.Description, room, "…"))
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerHints(p.keys.Up, p.keys.Down, p.keys.Confirm, p.keys.Cancel))

	return renderBox(width, b.String())
}

// ConfirmDialog asks whether the queued skill should be removed. It keeps
// the skill when the countdown runs out.
type ConfirmDialog struct {
	session  *confirm.Session
	keys     dialogKeyMap
	progress progress.Model
}

// NewConfirmDialog wraps session. The caller starts the session timers.
func NewConfirmDialog(session *confirm.Session) *ConfirmDialog {
	return &ConfirmDialog{
		session:  session,
		keys:     newDialogKeyMap(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (*ConfirmDialog) overlay() {}

// Session exposes the underlying confirmation state
func (d *ConfirmDialog) Session() *confirm.Session { return d.session }

// HandleKey translates a key press into a dialog input
func (d *ConfirmDialog) HandleKey(msg tea.KeyMsg) tea.Cmd {
	var in confirm.Input

	switch {
	case key.Matches(msg, d.keys.Cancel):
		in = confirm.InputCancel
	case key.Matches(msg, d.keys.Confirm):
		in = confirm.InputConfirm
	case key.Matches(msg, d.keys.Toggle):
		in = confirm.InputToggle
	case key.Matches(msg, d.keys.Yes):
		in = confirm.InputYes
	case key.Matches(msg, d.keys.No):
		in = confirm.InputNo
	default:
		return nil
	}

	outcome, resolved := d.session.Handle(in)
	return d.closed(outcome, resolved)
}

// Receive routes a timer message to the session
func (d *ConfirmDialog) Receive(msg tea.Msg) tea.Cmd {
	outcome, resolved := d.session.Receive(msg)
	return d.closed(outcome, resolved)
}

func (d *ConfirmDialog) closed(outcome confirm.Outcome, resolved bool) tea.Cmd {
	if !resolved {
		return nil
	}
	target := d.session.Target()
	return func() tea.Msg { return dialogClosedMsg{target: target, outcome: outcome} }
}

// Dispose releases the countdown timers without an outcome
func (d *ConfirmDialog) Dispose() {
	d.session.Dispose()
}

// Render draws the dialog
func (d *ConfirmDialog) Render(width int) []string {
	inner := innerWidth(boxWidth(width))

	var b strings.Builder
	b.WriteString(overlayTitleStyle.Render(ansi.Truncate(fmt.Sprintf("Remove '%s' from the queue?", d.session.Target()), inner, "…")))
	b.WriteString("\n\n")

	remove, keep := inactiveButtonStyle, inactiveButtonStyle
	if d.session.Focus() == confirm.ButtonRemove {
		remove = activeButtonStyle
	} else {
		keep = activeButtonStyle
	}
	b.WriteString(remove.Render(confirm.ButtonRemove.String()) + "  " + keep.Render(confirm.ButtonKeep.String()))
	b.WriteString("\n\n")

	total := d.session.Total()
	remaining := d.session.Remaining()
	ratio := 0.0
	if total > 0 {
		ratio = float64(remaining) / float64(total)
	}
	d.progress.Width = inner
	b.WriteString(d.progress.ViewAs(ratio))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Keeping %s in %ds", d.session.Target(), remaining)))
	b.WriteString("\n\n")
	b.WriteString(footerHints(d.keys.Yes, d.keys.No, d.keys.Toggle, d.keys.Confirm))

	return renderBox(width, b.String())
}
