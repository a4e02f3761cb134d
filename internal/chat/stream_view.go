package chat

import (
	"fmt"
	"io"
	"sync"

	"github.com/diogo/dagchat/internal/models"
	"github.com/diogo/dagchat/internal/render"
)

// StreamView writes the transcript line by line. It backs one-shot asks
// and chat sessions on a non-interactive terminal.
type StreamView struct {
	// Out receives transcript entries.
	Out io.Writer
	// Status receives the typing indicator and model badge. Nil disables
	// them.
	Status io.Writer
	// Notices receives system entries. Nil falls back to Status, then Out.
	Notices io.Writer
	Styler  render.Styler
	// EchoUser repeats the user's own messages into Out.
	EchoUser bool
	// Labels prefixes entries with the role name.
	Labels bool

	mu     sync.Mutex
	typing bool
}

// NewStreamView returns a view writing entries to out and status lines to
// status.
func NewStreamView(out, status io.Writer) *StreamView {
	return &StreamView{Out: out, Status: status, Styler: render.PlainStyler}
}

var roleLabels = map[models.Role]string{
	models.RoleUser:      "You",
	models.RoleAssistant: "Assistant",
	models.RoleSystem:    "System",
}

// AppendEntry implements View
func (v *StreamView) AppendEntry(e Entry) {
	if e.Role == models.RoleUser && !v.EchoUser {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.Out
	if e.Role == models.RoleSystem {
		switch {
		case v.Notices != nil:
			w = v.Notices
		case v.Status != nil:
			w = v.Status
		}
	}
	text := render.Terminal(e.Segments, v.Styler)
	if v.Labels {
		fmt.Fprintf(w, "%s: %s\n", roleLabels[e.Role], text)
		return
	}
	fmt.Fprintln(w, text)
}

// ClearTranscript implements View. Written lines cannot be taken back.
func (v *StreamView) ClearTranscript() {}

// ClearInput implements View
func (v *StreamView) ClearInput() {}

// ScrollToBottom implements View
func (v *StreamView) ScrollToBottom() {}

// ShowTyping implements View
func (v *StreamView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typing = true
}

// SetTypingFrame implements View
func (v *StreamView) SetTypingFrame(active int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.Status == nil || !v.typing {
		return
	}
	fmt.Fprintf(v.Status, "\r\033[K%s", TypingFrame(active))
}

// HideTyping implements View
func (v *StreamView) HideTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.typing && v.Status != nil {
		fmt.Fprint(v.Status, "\r\033[K")
	}
	v.typing = false
}

// SetModelStatus implements View
func (v *StreamView) SetModelStatus(s ModelStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.Status == nil {
		return
	}
	fmt.Fprintf(v.Status, "[%s]\n", s.Text)
}
