package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/dagchat/internal/chat"
	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/render"
)

type askOptions struct {
	file   string
	output string
	copy   bool
	raw    bool
}

func (a *app) newAskCmd() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a single message and print the reply",
		Long: `Open a chat session, send one message and print the assistant's reply.

The message is taken from the argument, from a file with -f, or from
stdin when it is not a terminal.

Examples:
  dagchat ask "List DAGs that failed in the last day"
  dagchat ask -f question.md -o answer.md
  echo "Pause dag_a" | dagchat ask --raw`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(opts.file, args)
			if err != nil {
				return err
			}
			return a.runAsk(cmd.Context(), text, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the message from a file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to a file")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print only the reply text")

	return cmd
}

// readInput picks the message source: file, argument, then piped stdin.
func (a *app) readInput(file string, args []string) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return args[0], nil
	case !a.deps.Interactive():
		data, err := io.ReadAll(a.deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return "", apierrors.NewValidationError("message", "pass it as an argument, with -f, or on stdin")
}

func (a *app) runAsk(ctx context.Context, text string, opts askOptions) error {
	if strings.TrimSpace(text) == "" {
		return apierrors.NewValidationError("message", "cannot be empty")
	}
	raw := opts.raw || !a.deps.Interactive()

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	out := a.deps.Stdout
	if opts.output != "" {
		out = io.Discard
	}
	view := chat.NewStreamView(out, nil)
	view.Notices = a.deps.Stderr
	if !raw {
		view.Status = a.deps.Stderr
		view.Labels = true
		view.Styler = render.Styler{
			InlineCode: func(s string) string { return inlineCodeStyle.Render(s) },
			CodeBlock:  func(s string) string { return codeBlockStyle.Render(s) },
		}
	}

	ctrl := chat.NewController(client, view,
		chat.WithLogger(a.logger),
		chat.WithTypingInterval(a.cfg.TypingInterval()),
	)
	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("failed to start chat session: %w", err)
	}

	ctrl.Send(ctx, text)
	reply := ctrl.LastReply()
	if reply == "" {
		return errors.New("no reply received")
	}

	if opts.copy || a.cfg.CopyToClipboard {
		if err := a.deps.Clipboard(reply); err != nil {
			a.logger.Warn("clipboard copy failed", zap.Error(err))
			fmt.Fprintln(a.deps.Stderr, dimStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if !raw {
			fmt.Fprintln(a.deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !raw {
			fmt.Fprintln(a.deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Response saved to %s", opts.output)))
		}
	}
	return nil
}
