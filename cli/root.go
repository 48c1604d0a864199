// Package cli is the mastosql command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/mastosql/app"
	"github.com/CrestNiraj12/mastosql/infra/config"
	"github.com/CrestNiraj12/mastosql/infra/logging"
	"github.com/CrestNiraj12/mastosql/infra/mastodon"
	"github.com/CrestNiraj12/mastosql/infra/metrics"
	"github.com/CrestNiraj12/mastosql/infra/output"
	"github.com/CrestNiraj12/mastosql/infra/session"
)

// Options configure the command tree. Zero values select the process
// defaults.
type Options struct {
	Version string
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	// Store replaces the environment-backed credential store.
	Store *session.Store
}

// env is the state shared by every subcommand once the root has set it up.
type env struct {
	opts    Options
	cfg     config.Config
	format  string
	envFile string
	logger  *slog.Logger
	store   *session.Store
	metrics *metrics.Recorder
	conn    *app.Connector
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	e := &env{opts: opts}
	root := &cobra.Command{
		Use:   "mastosql",
		Short: "Query and post to a Mastodon-compatible server as rows",
		Long: `mastosql logs in to a Mastodon-compatible server with the password grant,
reads the home and account timelines as rows, publishes statuses, copies
timelines into SQLite or PostgreSQL and serves the same operations over MCP.`,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVarP(&e.format, "format", "o", "", "output format: table, json, yaml or plain")
	root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newEnvCommand(e),
		newLoginCommand(e),
		newTootCommand(e),
		newHomeCommand(e),
		newAccountCommand(e),
		newSyncCommand(e),
		newQueryCommand(e),
		newServeCommand(e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(e.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	e.cfg = cfg
	if !cmd.Flags().Changed("format") {
		e.format = cfg.Format
	}

	e.logger = logging.New(e.opts.Err, cfg.LogLevel, cfg.LogFormat)
	e.store = e.opts.Store
	if e.store == nil {
		e.store = session.NewEnvStore()
	}
	e.metrics = metrics.NewRecorder()

	client := mastodon.NewClient(e.store,
		mastodon.WithMetrics(e.metrics),
		mastodon.WithLogger(e.logger),
	)
	e.conn = app.NewConnector(app.Deps{
		Store:    e.store,
		Auth:     mastodon.NewAuthService(client),
		Timeline: mastodon.NewTimelineService(client),
		Post:     mastodon.NewPostService(client),
		Accounts: mastodon.NewAccountService(client),
		Logger:   e.logger,
	})
	return nil
}

func (e *env) print(t app.Table) error {
	return output.Print(e.opts.Out, t, e.format)
}

// interactive reports whether stdin is a terminal a prompt can run on.
func (e *env) interactive() bool {
	f, ok := e.opts.In.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(Options{Version: version})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
