// Package commands provides CLI commands for dagchat.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/dagchat/internal/api"
	"github.com/diogo/dagchat/internal/config"
	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/logging"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	deps *Dependencies

	serverFlag  string
	verboseFlag bool

	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree around deps.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps, logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "dagchat",
		Short: "Terminal client for the Airflow LLM plugin",
		Long: `dagchat talks to the chat and DAG generation endpoints exposed by the
Airflow LLM plugin. It authenticates with your Airflow web session cookie.

Examples:
  dagchat chat                              Start interactive chat
  dagchat ask "Which DAGs failed today?"    Send a single message
  dagchat prompts list                      List saved DAG prompts
  dagchat prompts generate 3                Generate a DAG from prompt 3
  dagchat import-cookies --browser firefox  Reuse your browser login
  dagchat config set server_url https://airflow.example.com`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "dagchat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.SetIn(deps.Stdin)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().StringVar(&a.serverFlag, "server", "", "Airflow webserver URL (overrides server_url)")
	rootCmd.PersistentFlags().BoolVar(&a.verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(a.newChatCmd())
	rootCmd.AddCommand(a.newAskCmd())
	rootCmd.AddCommand(a.newPromptsCmd())
	rootCmd.AddCommand(a.newHistoryCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(a.newImportCookiesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := NewDependencies()
	if err := NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// setup resolves configuration and the stderr logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = a.serverFlag
	}
	if a.verboseFlag {
		cfg.Verbose = true
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{Verbose: cfg.Verbose})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// useFileLogger switches logging to the log directory. The TUI owns the
// terminal while it runs.
func (a *app) useFileLogger() error {
	dir, err := config.GetLogDir(a.cfg)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Verbose: a.cfg.Verbose, Dir: dir})
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// newClient builds an API client from the resolved configuration. A
// missing session cookie is allowed for servers without authentication.
func (a *app) newClient() (*api.Client, error) {
	cookies, err := a.deps.LoadCookies()
	if err != nil {
		if !errors.Is(err, apierrors.ErrNoCookies) {
			return nil, fmt.Errorf("failed to load cookies: %w", err)
		}
		a.logger.Debug("no session cookie configured", zap.Error(err))
		cookies = nil
	}

	opts := []api.ClientOption{
		api.WithLogger(a.logger),
		api.WithTimeoutSeconds(a.cfg.TimeoutSeconds),
		api.WithInsecureSkipVerify(a.cfg.InsecureSkipVerify),
	}
	opts = append(opts, a.deps.ClientOptions...)

	client, err := api.NewClient(a.cfg.ServerURL, cookies, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}
