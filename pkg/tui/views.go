package tui

import (
	"fmt"
	"strings"
)

// GetSpinnerChar returns the spinner character for the given index
func GetSpinnerChar(index int) string {
	spinChars := []string{".", "∘", "○", "◌", "◍", "◉", "◎", "●"}
	return spinChars[index%len(spinChars)]
}

// ShouldShowCommandDropdown determines if command suggestions should be shown
func ShouldShowCommandDropdown(input string, commands []string, isProcessing bool) bool {
	if isProcessing {
		return false
	}

	if !strings.HasPrefix(input, "/") {
		return false
	}

	if IsCommandComplete(input, commands) {
		return false
	}

	return true
}

// MatchingCommands returns the commands that start with the typed prefix
func MatchingCommands(input string, commands []string) []string {
	var matches []string
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, input) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// FormatHiddenSegments summarises what was attached to a sent message
func FormatHiddenSegments(count int) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 hidden segment attached"
	default:
		return fmt.Sprintf("%d hidden segments attached", count)
	}
}
