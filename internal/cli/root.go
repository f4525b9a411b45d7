package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/relmap/internal/config"
	"github.com/roach88/relmap/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string
	Driver     string
	Dialect    string

	// ConfigDir is where relmap.yaml is looked up when --config is unset.
	ConfigDir string

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the relmap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{ConfigDir: "."}

	cmd := &cobra.Command{
		Use:   "relmap",
		Short: "relmap - relational projections over SQL",
		Long: `Render relation specs as SQL schema, project typed records out of result
rows, and run parameterized statements against SQLite or Postgres.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default ./relmap.yaml)")
	pf.StringVar(&opts.Database, "db", config.DefaultDSN, "database DSN or SQLite path")
	pf.StringVar(&opts.Driver, "driver", config.DefaultDriver, "database driver (sqlite3|pgx)")
	pf.StringVar(&opts.Dialect, "dialect", "", "SQL dialect (default: the driver's)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewInlineCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))

	return cmd
}

// load resolves configuration from file, env and the parsed flags, then
// installs the logger.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigFile, o.ConfigDir, cmd.Flags())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	o.Logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	o.Logger.Debug("configuration loaded", "file", cfg.File, "driver", cfg.Driver, "dialect", cfg.Dialect)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// openStore connects to the configured database.
func (o *RootOptions) openStore(cmd *cobra.Command) (*store.Store, error) {
	storeOpts, err := o.Config.StoreOptions()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	storeOpts.Logger = o.Logger

	o.Logger.Info("opening database", "driver", storeOpts.Driver, "dsn", storeOpts.DSN)
	st, err := store.Open(cmd.Context(), storeOpts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open database %s", storeOpts.DSN), err)
	}
	return st, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		TraceID:   NewTraceID(),
	}
}
