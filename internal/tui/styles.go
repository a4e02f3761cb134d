// Package tui provides the terminal chat interface for dagchat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/dagchat/internal/chat"
	"github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorDanger    lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	// Model badge, one per severity
	badgeInfoStyle    lipgloss.Style
	badgeWarningStyle lipgloss.Style
	badgeDangerStyle  lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	systemBubbleStyle    lipgloss.Style
	systemLabelStyle     lipgloss.Style

	inlineCodeStyle lipgloss.Style
	codeBlockStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style

	// Typing indicator glyphs
	typingActiveStyle lipgloss.Style
	typingIdleStyle   lipgloss.Style
	typingTextStyle   lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	noticeStyle lipgloss.Style
	errorStyle  lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
)

// init loads the default theme on package initialization
func init() {
	ApplyTheme(render.DefaultTUITheme)
}

// ApplyTheme refreshes all styles from the named theme. Unknown names
// fall back to the default theme.
func ApplyTheme(name string) {
	theme := render.TUIThemeOrDefault(name)

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorDanger = theme.Danger
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	badgeInfoStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	badgeWarningStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true)

	badgeDangerStyle = lipgloss.NewStyle().
		Foreground(colorDanger).
		Bold(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	systemBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorWarning).
		Foreground(colorWarning).
		Padding(0, 1).
		MarginLeft(2).
		MarginRight(2)

	systemLabelStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Italic(true).
		MarginLeft(2)

	inlineCodeStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Background(colorSurface)

	codeBlockStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorSurface).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		BorderForeground(colorAccent).
		PaddingLeft(1)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	typingActiveStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	typingIdleStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	typingTextStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorDanger).
		Bold(true)

	welcomeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Align(lipgloss.Center)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Align(lipgloss.Center)

	welcomeIconStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Align(lipgloss.Center)
}

// badgeStyle picks the model badge style for a severity
func badgeStyle(s chat.Severity) lipgloss.Style {
	switch s {
	case chat.SeverityWarning:
		return badgeWarningStyle
	case chat.SeverityDanger:
		return badgeDangerStyle
	default:
		return badgeInfoStyle
	}
}

// transcriptStyler renders code segments with theme colors
func transcriptStyler() render.Styler {
	return render.Styler{
		InlineCode: func(s string) string { return inlineCodeStyle.Render(s) },
		CodeBlock:  func(s string) string { return codeBlockStyle.Render(s) },
	}
}

// renderTyping draws the typing indicator with glyph active emphasised.
func renderTyping(active int) string {
	dots := make([]string, chat.TypingGlyphs)
	for i := range dots {
		if i == active%chat.TypingGlyphs {
			dots[i] = typingActiveStyle.Render("●")
		} else {
			dots[i] = typingIdleStyle.Render("●")
		}
	}
	return typingTextStyle.Render("Assistant is typing ") + strings.Join(dots, " ")
}

// FormatError returns a styled error message with status, endpoint and a
// hint when the error carries them.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorDanger)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case errors.GetHTTPStatus(err) == 401 || errors.GetHTTPStatus(err) == 403:
		sb.WriteString(dimStyle.Render("\n  Hint: Your Airflow session may have expired. Run 'dagchat import-cookies --browser auto'"))
	case errors.IsAPIError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The server did not answer with JSON. Check server_url points at the Airflow webserver"))
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the Airflow webserver is reachable"))
	case errors.IsValidationError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your input and try again"))
	}

	return sb.String()
}
