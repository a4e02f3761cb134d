package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/diogo/dagchat/internal/models"
)

type fakeBackend struct {
	mu sync.Mutex

	sessionID  string
	sessionErr error
	info       *models.ModelInfo
	infoErr    error
	history    *models.HistoryResult
	historyErr error
	send       func(ctx context.Context, text, sessionID string) (*models.SendResult, error)

	calls []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		sessionID: "s1",
		info:      &models.ModelInfo{Provider: "openai", ModelName: "gpt-4o"},
		history:   &models.HistoryResult{Success: true},
		send: func(_ context.Context, text, _ string) (*models.SendResult, error) {
			return &models.SendResult{Success: true, Response: "re: " + text}, nil
		},
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) CreateSession(ctx context.Context) (string, error) {
	f.record("session")
	return f.sessionID, f.sessionErr
}

func (f *fakeBackend) ModelConfig(ctx context.Context) (*models.ModelInfo, error) {
	f.record("model")
	return f.info, f.infoErr
}

func (f *fakeBackend) History(ctx context.Context, sessionID string) (*models.HistoryResult, error) {
	f.record("history " + sessionID)
	return f.history, f.historyErr
}

func (f *fakeBackend) SendMessage(ctx context.Context, text, sessionID string) (*models.SendResult, error) {
	f.record(fmt.Sprintf("send %q %s", text, sessionID))
	return f.send(ctx, text, sessionID)
}

// recordingView logs every View call except typing frames, which are
// counted.
type recordingView struct {
	mu sync.Mutex

	events         []string
	entries        []Entry
	status         []ModelStatus
	frames         []int
	typing         bool
	showCount      int
	hideCount      int
	frameAfterHide bool
}

func (v *recordingView) log(e string) {
	v.events = append(v.events, e)
}

func (v *recordingView) AppendEntry(e Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("append " + string(e.Role))
	v.entries = append(v.entries, e)
}

func (v *recordingView) ClearTranscript() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("clear transcript")
	v.entries = nil
}

func (v *recordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("clear input")
}

func (v *recordingView) ShowTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("show typing")
	v.typing = true
	v.showCount++
}

func (v *recordingView) SetTypingFrame(active int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.typing {
		v.frameAfterHide = true
	}
	v.frames = append(v.frames, active)
}

func (v *recordingView) HideTyping() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("hide typing")
	v.typing = false
	v.hideCount++
}

func (v *recordingView) SetModelStatus(s ModelStatus) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("model status")
	v.status = append(v.status, s)
}

func (v *recordingView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.log("scroll")
}

func (v *recordingView) Events() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *recordingView) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Entry(nil), v.entries...)
}

func (v *recordingView) Contents() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.entries))
	for i, e := range v.entries {
		out[i] = string(e.Role) + ": " + e.Content
	}
	return out
}
