package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the chat key bindings
type keyMap struct {
	Send    key.Binding
	Newline key.Binding
	Copy    key.Binding
	Retry   key.Binding
	Quit    key.Binding
}

// Terminals report Shift+Enter as alt+enter or ctrl+j.
var keys = keyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "Send"),
	),
	Newline: key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("Shift+Enter", "Newline"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("Ctrl+Y", "Copy reply"),
	),
	Retry: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("Ctrl+R", "Restart session"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("Esc", "Quit"),
	),
}
