package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/models"
	"github.com/diogo/dagchat/internal/prompts"
	"github.com/diogo/dagchat/internal/render"
)

// cliPresenter renders prompt manager state as terminal text.
type cliPresenter struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader

	// showList prints listings; other commands reload silently.
	showList    bool
	assumeYes   bool
	interactive bool
	markdown    *render.Options

	spin *spinner
}

var _ prompts.Presenter = (*cliPresenter)(nil)

func (p *cliPresenter) ShowPrompts(list []models.Prompt) {
	if !p.showList {
		return
	}
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDAG\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t---\t-------")
	for _, pr := range list {
		dag := pr.DagID
		if dag == "" {
			dag = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", pr.ID, truncate(pr.Name, 40), dag, pr.CreatedAt)
	}
	_ = w.Flush()
}

func (p *cliPresenter) ShowEmpty() {
	if p.showList {
		fmt.Fprintln(p.out, "No saved prompts.")
	}
}

func (p *cliPresenter) ShowListError(msg string) {
	fmt.Fprintln(p.errOut, msg)
}

func (p *cliPresenter) Alert(msg string) {
	fmt.Fprintln(p.errOut, msg)
}

// Confirm asks on the terminal. Without a terminal it refuses unless
// --yes was given.
func (p *cliPresenter) Confirm(question string) bool {
	if p.assumeYes {
		return true
	}
	if !p.interactive {
		fmt.Fprintf(p.errOut, "%s Re-run with --yes to confirm.\n", question)
		return false
	}
	fmt.Fprintf(p.errOut, "%s [y/N]: ", question)
	answer, _ := p.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (p *cliPresenter) ShowForm(f prompts.Form) {
	pr := f.Prompt
	fmt.Fprintf(p.out, "ID: %d\n", pr.ID)
	fmt.Fprintf(p.out, "Name: %s\n", pr.Name)
	if pr.Description != "" {
		fmt.Fprintf(p.out, "Description: %s\n", pr.Description)
	}
	if pr.CreatedAt != "" {
		fmt.Fprintf(p.out, "Created: %s\n", pr.CreatedAt)
	}
	fmt.Fprintln(p.out)

	body := pr.Prompt
	if p.markdown != nil {
		if rendered, err := render.Markdown(body, *p.markdown); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Fprintln(p.out, body)
	if f.CanGenerate {
		fmt.Fprintf(p.out, "\n%s\n", dimStyle.Render(fmt.Sprintf("Generate a DAG with: dagchat prompts generate %d", pr.ID)))
	}
}

func (p *cliPresenter) ResetForm() {}

func (p *cliPresenter) ShowGenerated(dagID string) {
	fmt.Fprintf(p.out, "DAG ID: %s\n", dagID)
}

func (p *cliPresenter) SetBusy(busy bool) {
	if !p.interactive {
		return
	}
	if busy {
		p.spin = newSpinner(p.errOut, "Generating DAG")
		p.spin.start()
		return
	}
	if p.spin != nil {
		p.spin.stopWithError()
		p.spin = nil
	}
}

type promptsFlags struct {
	yes bool
}

func (a *app) newPromptsCmd() *cobra.Command {
	var flags promptsFlags

	cmd := &cobra.Command{
		Use:     "prompts",
		Aliases: []string{"prompt"},
		Short:   "Manage saved DAG generation prompts",
		Long: `List, create and delete saved prompts, and generate Airflow DAGs from
them. Generating and deleting ask for confirmation unless --yes is given.`,
	}
	cmd.PersistentFlags().BoolVarP(&flags.yes, "yes", "y", false, "Skip confirmation prompts")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(flags, true, func(m *prompts.Manager) error {
				_, err := m.Load(cmd.Context())
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePromptID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(flags, false, func(m *prompts.Manager) error {
				_, err := m.Select(cmd.Context(), id)
				return err
			})
		},
	})

	cmd.AddCommand(a.newPromptsCreateCmd(&flags))

	cmd.AddCommand(&cobra.Command{
		Use:   "generate <id>",
		Short: "Generate a DAG from a saved prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePromptID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(flags, false, func(m *prompts.Manager) error {
				_, err := m.Generate(cmd.Context(), id)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePromptID(args[0])
			if err != nil {
				return err
			}
			return a.withManager(flags, false, func(m *prompts.Manager) error {
				return m.Delete(cmd.Context(), id)
			})
		},
	})

	return cmd
}

func (a *app) newPromptsCreateCmd(flags *promptsFlags) *cobra.Command {
	var (
		file string
		in   models.PromptInput
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a new prompt",
		Long: `Save a new DAG generation prompt from flags or from a YAML file:

  name: daily_sales_etl
  description: Load sales into the warehouse
  prompt: |
    Create a DAG that runs every day at 2am...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				fromFile, err := readPromptFile(file)
				if err != nil {
					return err
				}
				mergePromptInput(&in, fromFile, cmd)
			}
			return a.withManager(*flags, false, func(m *prompts.Manager) error {
				_, err := m.Save(cmd.Context(), in.Name, in.Description, in.Prompt)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read name, description and prompt from a YAML file")
	cmd.Flags().StringVar(&in.Name, "name", "", "Prompt name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Prompt description")
	cmd.Flags().StringVar(&in.Prompt, "prompt", "", "Prompt text")

	return cmd
}

// mergePromptInput fills fields from the file unless set by a flag.
func mergePromptInput(dst *models.PromptInput, src models.PromptInput, cmd *cobra.Command) {
	if !cmd.Flags().Changed("name") {
		dst.Name = src.Name
	}
	if !cmd.Flags().Changed("description") {
		dst.Description = src.Description
	}
	if !cmd.Flags().Changed("prompt") {
		dst.Prompt = src.Prompt
	}
}

func readPromptFile(path string) (models.PromptInput, error) {
	var in models.PromptInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("failed to read prompt file: %w", err)
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse prompt file: %w", err)
	}
	return in, nil
}

func parsePromptID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierrors.NewValidationError("id", fmt.Sprintf("invalid prompt id %q", s))
	}
	return id, nil
}

// withManager runs fn with a prompt manager bound to a terminal presenter.
func (a *app) withManager(flags promptsFlags, showList bool, fn func(m *prompts.Manager) error) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	interactive := a.deps.Interactive()
	presenter := &cliPresenter{
		out:         a.deps.Stdout,
		errOut:      a.deps.Stderr,
		in:          bufio.NewReader(a.deps.Stdin),
		showList:    showList,
		assumeYes:   flags.yes,
		interactive: interactive,
	}
	if interactive {
		opts := render.OptionsFromConfig(a.cfg.Markdown, getTerminalWidth()-4)
		presenter.markdown = &opts
	}

	return fn(prompts.NewManager(client, presenter, a.logger))
}

