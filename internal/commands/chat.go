package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/dagchat/internal/chat"
	"github.com/diogo/dagchat/internal/tui"
)

func (a *app) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the Airflow assistant.

On a terminal this opens a full-screen chat: Enter sends, Shift+Enter adds
a new line, Ctrl+Y copies the last reply and Esc quits. Logs go to the
log directory while the chat is open.

When stdin is not a terminal every input line is sent as one message and
replies are printed as they arrive. Type /exit to stop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.deps.Interactive() {
				return a.runChatTUI(cmd.Context())
			}
			return a.runChatLines(cmd.Context())
		},
	}
}

func (a *app) runChatTUI(ctx context.Context) error {
	if err := a.useFileLogger(); err != nil {
		return err
	}
	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return a.deps.TUI.RunChat(ctx, client, tui.Options{
		Theme:          a.cfg.TUITheme,
		Logger:         a.logger,
		TypingInterval: a.cfg.TypingInterval(),
	})
}

// runChatLines reads messages line by line from stdin.
func (a *app) runChatLines(ctx context.Context) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	view := chat.NewStreamView(a.deps.Stdout, a.deps.Stderr)
	view.Labels = true

	ctrl := chat.NewController(client, view,
		chat.WithLogger(a.logger),
		chat.WithTypingInterval(a.cfg.TypingInterval()),
	)
	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("failed to start chat session: %w", err)
	}

	scanner := bufio.NewScanner(a.deps.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if cmd := strings.TrimSpace(line); cmd == "/exit" || cmd == "/quit" {
			return nil
		}
		ctrl.Send(ctx, line)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
