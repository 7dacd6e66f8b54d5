package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/dict2sql/internal/config"
	"github.com/roach88/dict2sql/internal/fixture"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/querysql"
)

// RootOptions holds global flags for all commands.
// PersistentPreRunE overwrites them with the resolved configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Dialect    string // "ansi" | "mysql"
	Debug      bool   // labeled debug tree instead of flat SQL
	Driver     string
	DB         string
	ConfigFile string

	// Fs is the filesystem for query, scenario and config files.
	// Nil means the OS filesystem.
	Fs afero.Fs
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.ValidFormats

// NewRootCommand creates the root command for the dict2sql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dict2sql",
		Short: "Compile query ASTs to SQL",
		Long: `dict2sql compiles structured query documents (JSON, YAML, CUE or
MessagePack) describing SELECT, INSERT, UPDATE and DELETE statements
into SQL text.

Settings are read from flags, DICT2SQL_* environment variables, .env and
.env.local, and .dict2sql.yaml in the working or home directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, config.KeyVerbose, "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, config.KeyFormat, "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, config.KeyDialect, "ansi", "SQL dialect (ansi|mysql)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, config.KeyDebug, false, "print the labeled rule tree instead of SQL")
	cmd.PersistentFlags().StringVar(&opts.Driver, config.KeyDriver, fixture.DefaultDriver, "database/sql driver (sqlite3|sqlite|postgres|mysql)")
	cmd.PersistentFlags().StringVar(&opts.DB, config.KeyDB, "", "database DSN (default: in-memory Chinook fixture)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: .dict2sql.yaml)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}

// resolve layers flags over environment, .env and config file.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	loader := config.NewLoader(o.fs())
	if o.ConfigFile != "" {
		loader.SetConfigFile(o.ConfigFile)
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	o.Verbose = cfg.Verbose
	o.Format = cfg.Format
	o.Dialect = cfg.Dialect
	o.Debug = cfg.Debug
	o.Driver = cfg.Driver
	o.DB = cfg.DB
	return nil
}

func (o *RootOptions) fs() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger writes to stderr: Debug with --verbose, otherwise Info and up.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// compiler builds a Compiler for the resolved dialect and debug mode.
func (o *RootOptions) compiler(cmd *cobra.Command) (*querysql.Compiler, error) {
	d, err := format.DialectByName(o.Dialect)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid dialect", err)
	}
	return querysql.New(
		querysql.WithDialect(d),
		querysql.WithDebug(o.Debug),
		querysql.WithLogger(o.logger(cmd.ErrOrStderr())),
	), nil
}
