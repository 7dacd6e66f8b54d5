package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/fixture"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/querysql"
)

const replPrompt = "dict2sql> "

// lineReader is the part of readline the REPL uses.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	Exec bool // execute each statement against the fixture

	// newReader overrides the terminal reader in tests.
	newReader func() (lineReader, error)
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive compiler: one JSON statement per line",
		Long: `Read one JSON statement per line and print its SQL.

Commands:
  .dialect <ansi|mysql>  switch quoting rules
  .debug <on|off>        toggle the labeled rule tree
  .exec <on|off>         toggle execution against an in-memory fixture
  .help                  show this help
  .quit                  leave (Ctrl-D works too)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Exec, "exec", false, "execute statements against an in-memory fixture")

	return cmd
}

func defaultReader() (lineReader, error) {
	cfg := &readline.Config{
		Prompt:          replPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	}
	if home, err := homedir.Dir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".dict2sql_history")
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return rl, nil
}

// replSession is the mutable state of one REPL run.
type replSession struct {
	opts     *ReplOptions
	cmd      *cobra.Command
	out      io.Writer
	dialect  format.Dialect
	debug    bool
	exec     bool
	compiler *querysql.Compiler
	db       *fixture.DB
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	newReader := opts.newReader
	if newReader == nil {
		newReader = defaultReader
	}
	rl, err := newReader()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start line editor", err)
	}
	defer rl.Close()

	dialect, err := format.DialectByName(opts.Dialect)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid dialect", err)
	}

	s := &replSession{
		opts:    opts,
		cmd:     cmd,
		out:     cmd.OutOrStdout(),
		dialect: dialect,
		debug:   opts.Debug,
		exec:    opts.Exec,
	}
	s.rebuild()
	defer s.close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "read failed", err)
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == ".quit" || line == ".exit":
			return nil
		case strings.HasPrefix(line, "."):
			s.command(line)
		default:
			s.statement(line)
		}
	}
}

func (s *replSession) rebuild() {
	s.compiler = querysql.New(
		querysql.WithDialect(s.dialect),
		querysql.WithDebug(s.debug),
		querysql.WithLogger(s.opts.logger(s.cmd.ErrOrStderr())),
	)
}

func (s *replSession) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *replSession) command(line string) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ".help":
		fmt.Fprintln(s.out, ".dialect <ansi|mysql>  .debug <on|off>  .exec <on|off>  .quit")
	case ".dialect":
		d, err := format.DialectByName(arg)
		if err != nil {
			s.fail(ErrCodeGeneric, err)
			return
		}
		s.dialect = d
		s.rebuild()
		fmt.Fprintf(s.out, "dialect %s\n", d.Name())
	case ".debug":
		on, ok := parseSwitch(arg)
		if !ok {
			s.fail(ErrCodeGeneric, fmt.Errorf("usage: .debug on|off"))
			return
		}
		s.debug = on
		s.rebuild()
		fmt.Fprintf(s.out, "debug %s\n", arg)
	case ".exec":
		on, ok := parseSwitch(arg)
		if !ok {
			s.fail(ErrCodeGeneric, fmt.Errorf("usage: .exec on|off"))
			return
		}
		s.exec = on
		fmt.Fprintf(s.out, "exec %s\n", arg)
	default:
		s.fail(ErrCodeGeneric, fmt.Errorf("unknown command %s (try .help)", name))
	}
}

func (s *replSession) statement(line string) {
	v, err := ast.DecodeJSON([]byte(line))
	if err != nil {
		s.fail(ErrCodeDecodeFailed, err)
		return
	}

	sql, err := s.compiler.Compile(v)
	if err != nil {
		s.fail(ErrorCode(err), err)
		return
	}
	fmt.Fprintln(s.out, sql)

	if !s.exec || s.debug {
		return
	}

	if s.db == nil {
		db, err := fixture.OpenMemory(s.cmd.Context(), s.opts.Driver)
		if err != nil {
			s.fail(ErrCodeDatabase, err)
			return
		}
		s.db = db
	}

	out, err := s.db.Run(s.cmd.Context(), sql)
	if err != nil {
		s.fail(ErrCodeDatabase, err)
		return
	}
	if out.IsQuery() {
		renderTable(s.out, out.Rows.Columns, out.Rows.Values)
		return
	}
	fmt.Fprintf(s.out, "%d row(s) affected\n", out.Affected)
}

func (s *replSession) fail(code string, err error) {
	fmt.Fprintf(s.out, "%s Error [%s]: %v\n", failMark, code, err)
}

func parseSwitch(arg string) (bool, bool) {
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	default:
		return false, false
	}
}
