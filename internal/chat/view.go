// Package chat implements the chat session controller: session setup,
// history replay, model badge and the send cycle with its typing
// indicator. Rendering is delegated to a View.
package chat

import (
	"github.com/diogo/dagchat/internal/models"
	"github.com/diogo/dagchat/internal/render"
)

// Entry is one rendered transcript item.
type Entry struct {
	Role     models.Role
	Content  string
	Segments []render.Segment
}

// NewEntry parses content into its display segments.
func NewEntry(role models.Role, content string) Entry {
	return Entry{Role: role, Content: content, Segments: render.Parse(content)}
}

// Severity styles the model status line.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityDanger
)

// String returns the severity name
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityDanger:
		return "danger"
	default:
		return "info"
	}
}

// ModelStatus is the text shown in the model badge.
type ModelStatus struct {
	Text     string
	Severity Severity
}

// View receives every display mutation the controller makes. Calls may
// arrive from any goroutine.
type View interface {
	AppendEntry(e Entry)
	// ClearTranscript drops placeholder content before history replay.
	ClearTranscript()
	ClearInput()
	ShowTyping()
	// SetTypingFrame emphasises glyph active (0..TypingGlyphs-1).
	SetTypingFrame(active int)
	HideTyping()
	SetModelStatus(s ModelStatus)
	ScrollToBottom()
}
