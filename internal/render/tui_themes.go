package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color palette of the chat interface.
type TUITheme struct {
	Name string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color // assistant bubbles, titles
	Secondary lipgloss.Color // user bubbles, success badge
	Accent    lipgloss.Color // typing indicator, code
	Warning   lipgloss.Color // system notices, "no model" badge
	Danger    lipgloss.Color // errors

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var tuiThemes = map[string]TUITheme{
	"tokyonight": {
		Name:      "tokyonight",
		Surface:   lipgloss.Color("#24283b"),
		Border:    lipgloss.Color("#414868"),
		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Danger:    lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
		TextMute:  lipgloss.Color("#3b4261"),
	},
	"catppuccin": {
		Name:      "catppuccin",
		Surface:   lipgloss.Color("#313244"),
		Border:    lipgloss.Color("#45475a"),
		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Accent:    lipgloss.Color("#cba6f7"),
		Warning:   lipgloss.Color("#f9e2af"),
		Danger:    lipgloss.Color("#f38ba8"),
		Text:      lipgloss.Color("#cdd6f4"),
		TextDim:   lipgloss.Color("#6c7086"),
		TextMute:  lipgloss.Color("#45475a"),
	},
	"nord": {
		Name:      "nord",
		Surface:   lipgloss.Color("#3b4252"),
		Border:    lipgloss.Color("#4c566a"),
		Primary:   lipgloss.Color("#88c0d0"),
		Secondary: lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#b48ead"),
		Warning:   lipgloss.Color("#ebcb8b"),
		Danger:    lipgloss.Color("#bf616a"),
		Text:      lipgloss.Color("#eceff4"),
		TextDim:   lipgloss.Color("#7b88a1"),
		TextMute:  lipgloss.Color("#4c566a"),
	},
}

// DefaultTUITheme is used when the configured theme is unknown.
const DefaultTUITheme = "tokyonight"

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	t, ok := tuiThemes[name]
	return t, ok
}

// TUIThemeOrDefault resolves name, falling back to DefaultTUITheme.
func TUIThemeOrDefault(name string) TUITheme {
	if t, ok := tuiThemes[name]; ok {
		return t
	}
	return tuiThemes[DefaultTUITheme]
}

// TUIThemeNames returns the available theme names, sorted.
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
