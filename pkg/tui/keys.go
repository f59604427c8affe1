package tui

import "github.com/charmbracelet/bubbles/key"

type chatKeyMap struct {
	Send     key.Binding
	Help     key.Binding
	Clear    key.Binding
	Quit     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func newChatKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:     key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "send")),
		Help:     key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "help")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
	}
}

type paletteKeyMap struct {
	Cancel  key.Binding
	Confirm key.Binding
	Up      key.Binding
	Down    key.Binding
	Erase   key.Binding
}

func newPaletteKeyMap() paletteKeyMap {
	return paletteKeyMap{
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "close")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "select/toggle")),
		Up:      key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		Erase:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "erase")),
	}
}

type dialogKeyMap struct {
	Cancel  key.Binding
	Confirm key.Binding
	Toggle  key.Binding
	Yes     key.Binding
	No      key.Binding
}

func newDialogKeyMap() dialogKeyMap {
	return dialogKeyMap{
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "keep")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "choose")),
		Toggle:  key.NewBinding(key.WithKeys("left", "right", "tab", "shift+tab", "h", "l"), key.WithHelp("←→", "switch")),
		Yes:     key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "remove")),
		No:      key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "keep")),
	}
}
