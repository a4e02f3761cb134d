// Package history exports server-side chat transcripts.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/diogo/dagchat/internal/models"
	"github.com/diogo/dagchat/internal/render"
)

// ExportFormat represents the format for exporting transcripts
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatHTML     ExportFormat = "html"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	case "html", "htm":
		return ExportFormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (markdown, json, html)", s)
	}
}

// Transcript is the history of one chat session.
type Transcript struct {
	SessionID  string           `json:"session_id"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// Source fetches a session's history. api.Client satisfies it.
type Source interface {
	History(ctx context.Context, sessionID string) (*models.HistoryResult, error)
}

// Fetch loads the transcript of sessionID.
func Fetch(ctx context.Context, src Source, sessionID string) (*Transcript, error) {
	res, err := src.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = "unknown error"
		}
		return nil, fmt.Errorf("fetch history: %s", reason)
	}
	return &Transcript{
		SessionID:  sessionID,
		ExportedAt: time.Now().UTC(),
		Messages:   res.History,
	}, nil
}

func roleTitle(r models.Role) string {
	switch r {
	case models.RoleAssistant:
		return "Assistant"
	case models.RoleSystem:
		return "System"
	default:
		return "User"
	}
}

// ExportToMarkdown exports a transcript to Markdown format
func ExportToMarkdown(t *Transcript) string {
	var sb strings.Builder

	sb.WriteString("# Chat session ")
	sb.WriteString(t.SessionID)
	sb.WriteString("\n\n")
	sb.WriteString("**Exported:** ")
	sb.WriteString(t.ExportedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(t.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range t.Messages {
		sb.WriteString("## ")
		sb.WriteString(roleTitle(msg.Role))
		if msg.Timestamp != "" {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp)
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		// Separator between messages (except last)
		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportToJSON exports a transcript to JSON format
func ExportToJSON(t *Transcript) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ExportToHTML renders a standalone page with the same message markup as
// the web chat.
func ExportToHTML(t *Transcript) (string, error) {
	var sb strings.Builder
	title := html.EscapeString("Chat session " + t.SessionID)

	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(title)
	sb.WriteString("</title>\n</head>\n<body>\n<h1>")
	sb.WriteString(title)
	sb.WriteString("</h1>\n<div class=\"chat-messages\">\n")

	for _, msg := range t.Messages {
		block, err := render.MessageHTML(string(msg.Role), msg.Content)
		if err != nil {
			return "", fmt.Errorf("render message %d: %w", msg.ID, err)
		}
		sb.WriteString(block)
		sb.WriteString("\n")
	}

	sb.WriteString("</div>\n</body>\n</html>\n")
	return sb.String(), nil
}

// Export renders t in the given format
func Export(t *Transcript, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatMarkdown:
		return []byte(ExportToMarkdown(t)), nil
	case ExportFormatJSON:
		return ExportToJSON(t)
	case ExportFormatHTML:
		out, err := ExportToHTML(t)
		return []byte(out), err
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// SearchResult represents a search match in a transcript
type SearchResult struct {
	Index   int
	Role    models.Role
	Snippet string
}

// Search returns every message containing query, case-insensitively.
func Search(t *Transcript, query string) []SearchResult {
	queryLower := strings.ToLower(query)
	var results []SearchResult

	for i, msg := range t.Messages {
		if strings.Contains(strings.ToLower(msg.Content), queryLower) {
			results = append(results, SearchResult{
				Index:   i,
				Role:    msg.Role,
				Snippet: extractSnippet(msg.Content, query, 100),
			})
		}
	}
	return results
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(query)

	idx := strings.Index(contentLower, queryLower)
	if idx == -1 {
		if len(content) > maxLen {
			return content[:maxLen] + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(query) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(content) {
		end = len(content)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return strings.ReplaceAll(snippet, "\n", " ")
}
