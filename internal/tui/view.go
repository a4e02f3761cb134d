package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/dagchat/internal/chat"
)

// Messages carrying controller view calls into the event loop
type (
	entryMsg           struct{ entry chat.Entry }
	clearTranscriptMsg struct{}
	clearInputMsg      struct{}
	typingMsg          struct{ show bool }
	typingFrameMsg     struct{ active int }
	modelStatusMsg     struct{ status chat.ModelStatus }
	scrollMsg          struct{}
)

// programView implements chat.View by posting messages to a running
// tea.Program. Calls made before attach are buffered.
type programView struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
}

var _ chat.View = (*programView)(nil)

// attach starts delivery through send and flushes buffered messages.
func (v *programView) attach(send func(tea.Msg)) {
	v.mu.Lock()
	pending := v.pending
	v.pending = nil
	v.send = send
	v.mu.Unlock()

	for _, msg := range pending {
		send(msg)
	}
}

func (v *programView) post(msg tea.Msg) {
	v.mu.Lock()
	send := v.send
	if send == nil {
		v.pending = append(v.pending, msg)
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()
	send(msg)
}

func (v *programView) AppendEntry(e chat.Entry)          { v.post(entryMsg{entry: e}) }
func (v *programView) ClearTranscript()                  { v.post(clearTranscriptMsg{}) }
func (v *programView) ClearInput()                       { v.post(clearInputMsg{}) }
func (v *programView) ShowTyping()                       { v.post(typingMsg{show: true}) }
func (v *programView) SetTypingFrame(active int)         { v.post(typingFrameMsg{active: active}) }
func (v *programView) HideTyping()                       { v.post(typingMsg{show: false}) }
func (v *programView) SetModelStatus(s chat.ModelStatus) { v.post(modelStatusMsg{status: s}) }
func (v *programView) ScrollToBottom()                   { v.post(scrollMsg{}) }
