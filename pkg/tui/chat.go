package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skillq/pkg/version"
)

// StartChat starts the TUI chat interface
func StartChat(ctx context.Context, opts Options) error {
	// Always use the full terminal screen
	teaOptions := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}

	model := NewModel(ctx, opts)

	welcomeMsg := fmt.Sprintf(`
skillq (%s)
	`, version.Get().Version)

	// Style the banner (Tokyo Night)
	styledBanner := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#7aa2f7", Dark: "#7aa2f7"}). // Blue
		Render(welcomeMsg)

	fullWelcomeMsg := styledBanner + "\nType your message and press Enter to send. Use /skill to attach a skill to the next message."
	if !isTTY() {
		fullWelcomeMsg += "\nLimited terminal capabilities detected. Some features may not work properly."
	}
	fullWelcomeMsg += fmt.Sprintf("\n%d skill(s) available.", len(opts.Catalog))

	model.AddSystemMessage(fullWelcomeMsg)
	model.AddSystemMessage("Press Ctrl+H for help with keyboard shortcuts.")

	p := tea.NewProgram(model, teaOptions...)
	model.SetEventTarget(p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "error running program")
	}

	return nil
}

// isTTY checks if the terminal supports advanced features
func isTTY() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
