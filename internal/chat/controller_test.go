package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/diogo/dagchat/internal/models"
)

func newTestController(t *testing.T, b *fakeBackend) (*Controller, *recordingView) {
	t.Helper()
	v := &recordingView{}
	c := NewController(b, v, WithTypingInterval(5*time.Millisecond))
	return c, v
}

func initController(t *testing.T, b *fakeBackend) (*Controller, *recordingView) {
	t.Helper()
	c, v := newTestController(t, b)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	v.mu.Lock()
	v.events = nil
	v.mu.Unlock()
	return c, v
}

func TestSendIgnoresBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		b := newFakeBackend()
		c, v := initController(t, b)

		if c.Send(context.Background(), text) {
			t.Errorf("Send(%q) = true, want false", text)
		}
		if len(v.Events()) != 0 {
			t.Errorf("Send(%q) touched the view: %v", text, v.Events())
		}
		for _, call := range b.Calls() {
			if call[:4] == "send" {
				t.Errorf("Send(%q) reached the backend", text)
			}
		}
	}
}

func TestSendDropsWhileInFlight(t *testing.T) {
	b := newFakeBackend()
	release := make(chan struct{})
	started := make(chan struct{})
	b.send = func(_ context.Context, text, _ string) (*models.SendResult, error) {
		close(started)
		<-release
		return &models.SendResult{Success: true, Response: "done"}, nil
	}
	c, v := initController(t, b)

	result := make(chan bool)
	go func() {
		result <- c.Send(context.Background(), "first")
	}()
	<-started

	if !c.InFlight() {
		t.Error("InFlight() = false during request")
	}
	if c.Send(context.Background(), "second") {
		t.Error("second Send accepted while first outstanding")
	}

	close(release)
	if !<-result {
		t.Error("first Send returned false")
	}
	if c.InFlight() {
		t.Error("InFlight() still true after reply")
	}

	want := []string{"user: first", "assistant: done"}
	if diff := cmp.Diff(want, v.Contents()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}

	sends := 0
	for _, call := range b.Calls() {
		if len(call) > 4 && call[:4] == "send" {
			sends++
		}
	}
	if sends != 1 {
		t.Errorf("backend saw %d sends, want 1", sends)
	}
}

func TestSendSuccess(t *testing.T) {
	b := newFakeBackend()
	b.send = func(_ context.Context, text, sessionID string) (*models.SendResult, error) {
		return &models.SendResult{Success: true, Response: "Here:\n```\nprint(1)\n```", SessionID: "s2"}, nil
	}
	c, v := initController(t, b)

	if !c.Send(context.Background(), "  write code  ") {
		t.Fatal("Send returned false")
	}

	wantEvents := []string{
		"append user", "scroll", "clear input",
		"show typing", "scroll",
		"hide typing",
		"append assistant", "scroll",
	}
	if diff := cmp.Diff(wantEvents, v.Events()); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}

	entries := v.Entries()
	if entries[0].Content != "  write code  " {
		t.Errorf("user entry = %q, want text as typed", entries[0].Content)
	}
	if got := b.Calls()[len(b.Calls())-1]; got != `send "  write code  " s1` {
		t.Errorf("backend call = %s", got)
	}
	if c.SessionID() != "s2" {
		t.Errorf("SessionID() = %q, want rotated s2", c.SessionID())
	}
	if c.LastReply() != "Here:\n```\nprint(1)\n```" {
		t.Errorf("LastReply() = %q", c.LastReply())
	}
	if c.InFlight() {
		t.Error("InFlight() true after success")
	}
}

func TestSendKeepsIndentation(t *testing.T) {
	c, v := initController(t, newFakeBackend())

	if !c.Send(context.Background(), "    indented()\n") {
		t.Fatal("Send returned false")
	}
	if got := v.Entries()[0].Content; got != "    indented()\n" {
		t.Errorf("user entry = %q, want text as typed", got)
	}
}

func TestSendKeepsSessionWithoutRotation(t *testing.T) {
	b := newFakeBackend()
	c, _ := initController(t, b)

	c.Send(context.Background(), "hi")
	if c.SessionID() != "s1" {
		t.Errorf("SessionID() = %q, want s1", c.SessionID())
	}
}

func TestSendFailures(t *testing.T) {
	tests := []struct {
		name string
		res  *models.SendResult
		err  error
		want string
	}{
		{
			name: "failure flag with error",
			res:  &models.SendResult{Success: false, Error: "rate limited"},
			want: "Error: rate limited",
		},
		{
			name: "failure flag without error",
			res:  &models.SendResult{Success: false},
			want: "Error: Unknown error occurred",
		},
		{
			name: "transport failure",
			err:  errors.New("connection reset"),
			want: MsgSendFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.send = func(context.Context, string, string) (*models.SendResult, error) {
				time.Sleep(20 * time.Millisecond)
				return tt.res, tt.err
			}
			c, v := initController(t, b)

			if !c.Send(context.Background(), "hello") {
				t.Fatal("Send returned false")
			}

			want := []string{"user: hello", "system: " + tt.want}
			if diff := cmp.Diff(want, v.Contents()); diff != "" {
				t.Errorf("transcript mismatch (-want +got):\n%s", diff)
			}
			if c.InFlight() {
				t.Error("InFlight() true after failure")
			}

			v.mu.Lock()
			defer v.mu.Unlock()
			if v.showCount != 1 || v.hideCount != 1 {
				t.Errorf("typing shown %d / hidden %d times, want 1 / 1", v.showCount, v.hideCount)
			}
			if v.frameAfterHide {
				t.Error("typing frame delivered after hide")
			}
			if len(v.frames) == 0 {
				t.Error("no typing frames drawn")
			}
		})
	}

	t.Run("sendable again", func(t *testing.T) {
		b := newFakeBackend()
		b.send = func(context.Context, string, string) (*models.SendResult, error) {
			return nil, errors.New("down")
		}
		c, _ := initController(t, b)
		c.Send(context.Background(), "one")
		if !c.Send(context.Background(), "two") {
			t.Error("controller did not return to a sendable state")
		}
	})
}

func TestInitFailure(t *testing.T) {
	b := newFakeBackend()
	b.sessionErr = errors.New("503")
	c, v := newTestController(t, b)

	if err := c.Init(context.Background()); err == nil {
		t.Fatal("Init succeeded")
	}

	if diff := cmp.Diff([]string{"system: " + MsgInitFailed}, v.Contents()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"session"}, b.Calls()); diff != "" {
		t.Errorf("history/model loads ran without a session (-want +got):\n%s", diff)
	}
	if c.SessionID() != "" {
		t.Errorf("SessionID() = %q, want empty", c.SessionID())
	}

	c.LoadHistory(context.Background())
	c.LoadModelInfo(context.Background())
	if c.Send(context.Background(), "hello") {
		t.Error("Send accepted without a session")
	}
	if len(b.Calls()) != 1 {
		t.Errorf("backend calls = %v", b.Calls())
	}
}

func TestHistoryReplay(t *testing.T) {
	b := newFakeBackend()
	b.history = &models.HistoryResult{Success: true, History: []models.Message{
		{Role: models.RoleUser, Content: "q1"},
		{Role: models.RoleAssistant, Content: "a1"},
		{Role: models.RoleUser, Content: "q2"},
		{Role: models.RoleAssistant, Content: "a2"},
	}}
	c, v := newTestController(t, b)
	v.AppendEntry(NewEntry(models.RoleAssistant, "Hello! How can I help?"))

	if err := c.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{"user: q1", "assistant: a1", "user: q2", "assistant: a2"}
	if diff := cmp.Diff(want, v.Contents()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	if c.LastReply() != "a2" {
		t.Errorf("LastReply() = %q", c.LastReply())
	}
}

func TestHistoryEmptyOrFailingKeepsPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		res  *models.HistoryResult
		err  error
	}{
		{"empty", &models.HistoryResult{Success: true}, nil},
		{"rejected", &models.HistoryResult{Success: false, Error: "No chat session found"}, nil},
		{"transport", nil, errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.history, b.historyErr = tt.res, tt.err
			c, v := newTestController(t, b)
			v.AppendEntry(NewEntry(models.RoleAssistant, "placeholder"))

			if err := c.Init(context.Background()); err != nil {
				t.Fatalf("Init: %v", err)
			}
			if diff := cmp.Diff([]string{"assistant: placeholder"}, v.Contents()); diff != "" {
				t.Errorf("transcript changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestModelStatus(t *testing.T) {
	tests := []struct {
		name string
		info *models.ModelInfo
		err  error
		want ModelStatus
	}{
		{
			name: "configured",
			info: &models.ModelInfo{Provider: "anthropic", ModelName: "claude-3"},
			want: ModelStatus{Text: "Using: anthropic / claude-3", Severity: SeverityInfo},
		},
		{
			name: "none",
			want: ModelStatus{Text: MsgNoModel, Severity: SeverityWarning},
		},
		{
			name: "error",
			err:  errors.New("boom"),
			want: ModelStatus{Text: MsgModelLoadError, Severity: SeverityDanger},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend()
			b.info, b.infoErr = tt.info, tt.err
			c, v := newTestController(t, b)
			if err := c.Init(context.Background()); err != nil {
				t.Fatal(err)
			}

			v.mu.Lock()
			defer v.mu.Unlock()
			if diff := cmp.Diff([]ModelStatus{tt.want}, v.status); diff != "" {
				t.Errorf("status mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewEntrySegments(t *testing.T) {
	e := NewEntry(models.RoleAssistant, "use `ls`\n```\na `b`\n```")
	kinds := make([]string, len(e.Segments))
	for i, s := range e.Segments {
		kinds[i] = s.Kind.String()
	}
	want := []string{"text", "inline_code", "line_break", "code_block"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	if e.Segments[3].Text != "a `b`" {
		t.Errorf("code block = %q, want inline code left untouched", e.Segments[3].Text)
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityInfo.String() != "info" || SeverityWarning.String() != "warning" || SeverityDanger.String() != "danger" {
		t.Error("unexpected severity names")
	}
}
