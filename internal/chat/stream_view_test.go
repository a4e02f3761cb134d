package chat

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/diogo/dagchat/internal/models"
)

func TestStreamViewWritesReplies(t *testing.T) {
	var out, status bytes.Buffer
	v := NewStreamView(&out, &status)

	v.AppendEntry(NewEntry(models.RoleUser, "hidden"))
	v.AppendEntry(NewEntry(models.RoleAssistant, "Run `ls`:\n```\nls -la\n```"))
	v.AppendEntry(NewEntry(models.RoleSystem, MsgSendFailed))

	want := "Run `ls`:\n    ls -la\n"
	if out.String() != want {
		t.Errorf("out = %q, want %q", out.String(), want)
	}
	if !strings.Contains(status.String(), MsgSendFailed) {
		t.Errorf("status = %q, want system notice", status.String())
	}
}

func TestStreamViewLabelsAndEcho(t *testing.T) {
	var out bytes.Buffer
	v := NewStreamView(&out, nil)
	v.EchoUser = true
	v.Labels = true

	v.AppendEntry(NewEntry(models.RoleUser, "hi"))
	v.AppendEntry(NewEntry(models.RoleSystem, "oops"))

	want := "You: hi\nSystem: oops\n"
	if out.String() != want {
		t.Errorf("out = %q, want %q", out.String(), want)
	}
}

func TestStreamViewNotices(t *testing.T) {
	var out, notices bytes.Buffer
	v := NewStreamView(&out, nil)
	v.Notices = &notices

	v.AppendEntry(NewEntry(models.RoleAssistant, "reply"))
	v.AppendEntry(NewEntry(models.RoleSystem, "Error: rate limited"))

	if out.String() != "reply\n" {
		t.Errorf("out = %q, want reply only", out.String())
	}
	if notices.String() != "Error: rate limited\n" {
		t.Errorf("notices = %q", notices.String())
	}
}

func TestStreamViewTyping(t *testing.T) {
	var out, status bytes.Buffer
	v := NewStreamView(&out, &status)

	v.SetTypingFrame(1)
	if status.Len() != 0 {
		t.Error("frame drawn before ShowTyping")
	}
	v.ShowTyping()
	v.SetTypingFrame(1)
	v.HideTyping()
	v.SetTypingFrame(2)

	got := status.String()
	if !strings.Contains(got, TypingFrame(1)) {
		t.Errorf("status = %q, want frame 1", got)
	}
	if strings.Contains(got, TypingFrame(2)) {
		t.Errorf("status = %q, frame drawn after HideTyping", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("status = %q, want cleared line", got)
	}
}

func TestStreamViewWithController(t *testing.T) {
	var out, status bytes.Buffer
	v := NewStreamView(&out, &status)
	c := NewController(newFakeBackend(), v)

	if err := c.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Send(context.Background(), "ping")

	if out.String() != "re: ping\n" {
		t.Errorf("out = %q", out.String())
	}
	if !strings.Contains(status.String(), "[Using: openai / gpt-4o]") {
		t.Errorf("status = %q", status.String())
	}
}
