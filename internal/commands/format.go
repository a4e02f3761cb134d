package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/diogo/dagchat/internal/errors"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorAccent   = lipgloss.Color("#bb9af7")
	colorDanger   = lipgloss.Color("#f7768e")
)

var (
	inlineCodeStyle = lipgloss.NewStyle().Foreground(colorAccent)

	codeBlockStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(colorAccent).
			PaddingLeft(1)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	dimStyle     = lipgloss.NewStyle().Foreground(colorTextDim)
)

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// truncate shortens s to max runes, adding an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorDanger)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(truncate(body, 400), "\n", "\n  "))))
	}

	switch status := apierrors.GetHTTPStatus(err); {
	case status == 401 || status == 403:
		sb.WriteString(dimStyle.Render("\n  Hint: Your Airflow session may have expired. Run 'dagchat import-cookies --browser auto'"))
	case apierrors.IsAPIError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The server did not answer with JSON. Check that server_url points at the Airflow webserver"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the Airflow webserver is reachable"))
	}

	return sb.String()
}
