package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/dagchat/internal/config"
	"github.com/diogo/dagchat/internal/logging"
	"github.com/diogo/dagchat/internal/models"
)

func TestChatLineMode(t *testing.T) {
	e := newTestEnv(t)
	e.deps.Stdin = strings.NewReader("first\n\nsecond\n/exit\nnever sent\n")

	if err := e.run("chat"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Assistant: echo: first\nAssistant: echo: second\n"
	if got := e.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	var messages int
	for _, r := range e.srv.Requests() {
		if r.Path == models.EndpointMessage {
			messages++
		}
	}
	if messages != 2 {
		t.Errorf("message requests = %d, want 2", messages)
	}
	if !strings.Contains(e.stderr.String(), "Using:") {
		t.Errorf("stderr = %q, want model badge", e.stderr.String())
	}
}

func TestChatLineModeReplaysHistory(t *testing.T) {
	e := newTestEnv(t)
	e.srv.SeedHistory("session-1",
		models.Message{Role: models.RoleUser, Content: "earlier"},
		models.Message{Role: models.RoleAssistant, Content: "earlier reply"},
	)

	if err := e.run("chat"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(e.stdout.String(), "Assistant: earlier reply") {
		t.Errorf("stdout = %q, want replayed history", e.stdout.String())
	}
}

func TestChatInteractiveUsesTUI(t *testing.T) {
	e := newTestEnv(t)
	e.deps.Interactive = func() bool { return true }
	if err := config.SaveConfig(config.Config{
		ServerURL:        "http://airflow.test:8080",
		TypingIntervalMS: 120,
		TUITheme:         "nord",
	}); err != nil {
		t.Fatal(err)
	}

	if err := e.run("chat"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.tui.calls != 1 {
		t.Fatalf("TUI calls = %d, want 1", e.tui.calls)
	}
	if e.tui.backend == nil {
		t.Error("TUI got no backend")
	}
	if e.tui.opts.Theme != "nord" {
		t.Errorf("theme = %q, want nord", e.tui.opts.Theme)
	}
	if e.tui.opts.TypingInterval != 120*time.Millisecond {
		t.Errorf("typing interval = %v", e.tui.opts.TypingInterval)
	}

	dir, err := config.GetLogDir(config.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, logging.LogFileName)); err != nil {
		t.Errorf("chat log file not created: %v", err)
	}
}

func TestChatLineModeSendsLineAsTyped(t *testing.T) {
	e := newTestEnv(t)
	e.deps.Stdin = strings.NewReader("    indented()\n")

	if err := e.run("chat"); err != nil {
		t.Fatal(err)
	}
	var body string
	for _, r := range e.srv.Requests() {
		if r.Path == models.EndpointMessage {
			body = string(r.Body)
		}
	}
	if !strings.Contains(body, `"message":"    indented()"`) {
		t.Errorf("message body = %s, want leading spaces kept", body)
	}
}
