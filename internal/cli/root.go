// Package cli wires configuration, logging and the form into cobra commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardoC/envask/internal/ask"
	"github.com/RichardoC/envask/internal/config"
	"github.com/RichardoC/envask/internal/db"
	"github.com/RichardoC/envask/internal/form"
	"github.com/RichardoC/envask/internal/logging"
)

// globalFlags are shared by every command; a flag only wins over the
// config file and environment when it was set explicitly.
type globalFlags struct {
	configPath string
	server     string
	journal    string
	logLevel   string
	logFile    string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&g.server, "server", config.DefaultServer, "Base URL of the answering server")
	cmd.PersistentFlags().StringVar(&g.journal, "journal", "", "Record exchanges in this sqlite file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&g.logFile, "log-file", "", "Write logs to this file")
}

func (g *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server = g.server
	}
	if flags.Changed("journal") {
		cfg.Journal = g.journal
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = g.logFile
	}
	return cfg, cfg.Validate()
}

// NewRootCmd builds the envask command tree. Without a subcommand it opens
// the terminal form.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "envask",
		Short: "Ask the Env Research Agent",
		Long: `envask sends free-text questions to an Env Research Agent server
(POST /ask) and shows the answer it returns.

Run without arguments to open the interactive form.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, g)
		},
	}
	g.register(cmd)

	cmd.AddCommand(
		newFormCmd(g),
		newAskCmd(g),
		newHistoryCmd(g),
		newServeCmd(g),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// session holds what a command needs to submit questions.
type session struct {
	cfg     config.Config
	logger  *zap.Logger
	journal *db.Database
	form    *form.Form
}

// openSession builds the logger, client, optional journal and form.
// logOutput is used when no log file is configured.
func openSession(cfg config.Config, logOutput string) (*session, error) {
	output := cfg.LogFile
	if output == "" {
		output = logOutput
	}
	logger, err := logging.New(cfg.LogLevel, output)
	if err != nil {
		return nil, err
	}

	client, err := ask.New(cfg.Server, ask.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, logger: logger}
	opts := []form.Option{
		form.WithLogger(logger),
		form.WithCancelSuperseded(cfg.CancelSuperseded),
	}
	if cfg.Journal != "" {
		s.journal, err = db.New(cfg.Journal)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal %s: %w", cfg.Journal, err)
		}
		opts = append(opts, form.WithJournal(s.journal))
	}
	s.form = form.New(client, opts...)

	logger.Debug("Session opened",
		zap.String("endpoint", client.Endpoint()),
		zap.String("journal", cfg.Journal))
	return s, nil
}

func (s *session) Close() error {
	var err error
	if s.journal != nil {
		s.form.Flush()
		err = multierr.Append(err, s.journal.Close())
	}
	// Sync fails on terminals and pipes; only file sinks report real errors.
	if s.cfg.LogFile != "" {
		err = multierr.Append(err, s.logger.Sync())
	}
	return err
}
