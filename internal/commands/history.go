package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/history"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Export and search chat transcripts",
		Long: `Work with the transcript the server keeps for a chat session. The
session id is shown in the chat status bar.`,
	}
	cmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "Chat session id")

	var format, output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session transcript",
		Long: `Export a session transcript as markdown, json or html. Without --format
the format follows the output file extension.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" {
				format = filepath.Ext(output)
			}
			f, err := history.ParseFormat(format)
			if err != nil {
				return err
			}
			return a.runHistoryExport(cmd, sessionID, f, output)
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "", "Export format: markdown, json, html")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a session transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistorySearch(cmd, sessionID, args[0])
		},
	}

	cmd.AddCommand(exportCmd)
	cmd.AddCommand(searchCmd)
	return cmd
}

func (a *app) fetchTranscript(cmd *cobra.Command, sessionID string) (*history.Transcript, error) {
	if sessionID == "" {
		return nil, apierrors.NewValidationError("session", "--session is required")
	}
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return history.Fetch(cmd.Context(), client, sessionID)
}

func (a *app) runHistoryExport(cmd *cobra.Command, sessionID string, format history.ExportFormat, output string) error {
	t, err := a.fetchTranscript(cmd, sessionID)
	if err != nil {
		return err
	}

	data, err := history.Export(t, format)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := a.deps.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(a.deps.Stderr, "Exported %d messages to %s\n", len(t.Messages), output)
	return nil
}

func (a *app) runHistorySearch(cmd *cobra.Command, sessionID, query string) error {
	t, err := a.fetchTranscript(cmd, sessionID)
	if err != nil {
		return err
	}

	results := history.Search(t, query)
	if len(results) == 0 {
		fmt.Fprintln(a.deps.Stdout, "No matches found.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(a.deps.Stdout, "[%d] %s: %s\n", r.Index+1, r.Role, r.Snippet)
	}
	return nil
}
