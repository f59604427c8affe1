package tui

import (
	"strings"
)

// Command represents a chat command
type Command string

const (
	CommandHelp  Command = "help"
	CommandClear Command = "clear"
	CommandSkill Command = "skill"
)

// GetAvailableCommands returns the list of available slash commands
func GetAvailableCommands() []string {
	return []string{
		"/skill",
		"/help",
		"/clear",
	}
}

// ParseCommand parses a user input and returns the command name, arguments, and whether it's a valid command
func ParseCommand(input string) (command string, args string, isCommand bool) {
	input = strings.TrimSpace(input)

	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}

	parts := strings.SplitN(input, " ", 2)
	commandName := strings.TrimPrefix(parts[0], "/")

	var arguments string
	if len(parts) > 1 {
		arguments = strings.TrimSpace(parts[1])
	}

	validCommands := map[string]bool{
		string(CommandHelp):  true,
		string(CommandClear): true,
		string(CommandSkill): true,
	}

	if !validCommands[commandName] {
		return "", "", false
	}

	return commandName, arguments, true
}

// GetHelpText returns the help text for keyboard shortcuts and commands
func GetHelpText() string {
	return `╔══════════════════════════════════════════════════════════╗
║                     SKILLQ CHAT HELP                     ║
╚══════════════════════════════════════════════════════════╝

KEYBOARD SHORTCUTS
   Ctrl+C (twice)    → Quit the chat
   Enter / Ctrl+S    → Send message
   Alt+Enter         → New line
   Ctrl+H            → Show this help
   Ctrl+L            → Clear screen
   PageUp/PageDown   → Scroll history

AVAILABLE COMMANDS
   /skill                     → Pick a skill for the next message
   /help                      → Show this help message
   /clear                     → Clear the screen

SKILL PALETTE
   Type to filter, ↑/↓ to move, Enter to queue the highlighted skill.
   Selecting the queued skill again asks whether to remove it.
   The queued skill is attached to your next message only.

TIP: Start typing "/" to see command suggestions!`
}

// IsCommandComplete checks if the current input is a complete command
// (i.e., starts with a known command prefix)
func IsCommandComplete(input string, commands []string) bool {
	for _, cmd := range commands {
		if strings.HasPrefix(input, cmd) {
			return true
		}
	}
	return false
}
