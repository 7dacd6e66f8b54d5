package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/dict2sql/internal/fixture"
)

// RunResult is the JSON payload of the run command.
type RunResult struct {
	File     string     `json:"file"`
	Index    int        `json:"index"`
	SQL      string     `json:"sql"`
	Columns  []string   `json:"columns,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
	Affected int64      `json:"affected"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Compile statements and execute them",
		Long: `Compile statements and execute them in order against a database.

Without --db the statements run against a fresh in-memory SQLite
database seeded with a Chinook subset (Artist, Album, Customer).
With --db any registered driver may be used (sqlite3, sqlite, postgres,
mysql); the compiled SQL must suit that database.

Examples:
  dict2sql run query.json
  dict2sql run insert.yaml select.yaml
  dict2sql run query.json --driver postgres --db "postgres://localhost/chinook"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatements(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runStatements(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	docs, err := LoadQueries(opts.fs(), paths)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	if opts.Debug {
		return outputCommandError(formatter, fmt.Errorf("--debug output cannot be executed"))
	}
	c, err := opts.compiler(cmd)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, opts, logger)
	if err != nil {
		return outputCommandError(formatter, &LoadError{Code: ErrCodeDatabase, Message: err.Error(), Err: err})
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	results := make([]RunResult, 0, len(docs))
	for _, d := range docs {
		sql, err := c.Compile(d.Value)
		if err != nil {
			return outputCommandError(formatter, fmt.Errorf("%s[%d]: %w", d.File, d.Index, err))
		}
		logger.Debug("executing statement", "file", d.File, "index", d.Index, "sql", sql)

		out, err := db.Run(ctx, sql)
		if err != nil {
			return outputCommandError(formatter, &LoadError{
				Code:    ErrCodeDatabase,
				Path:    d.File,
				Message: err.Error(),
				Err:     err,
			})
		}

		r := RunResult{File: d.File, Index: d.Index, SQL: sql, Affected: out.Affected}
		if out.IsQuery() {
			r.Columns = out.Rows.Columns
			r.Rows = out.Rows.Values
		}
		results = append(results, r)

		if !formatter.IsJSON() {
			printRunResult(formatter.Writer, r, out.IsQuery())
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(results)
	}
	return nil
}

// openDatabase opens the configured DSN, or a seeded in-memory fixture
// when none is set.
func openDatabase(ctx context.Context, opts *RootOptions, logger *slog.Logger) (*fixture.DB, error) {
	if opts.DB == "" {
		logger.Debug("opening in-memory fixture", "driver", opts.Driver)
		return fixture.OpenMemory(ctx, opts.Driver)
	}
	logger.Info("opening database", "driver", opts.Driver)
	return fixture.Open(opts.Driver, opts.DB)
}

func printRunResult(w io.Writer, r RunResult, isQuery bool) {
	fmt.Fprintln(w, r.SQL)
	if !isQuery {
		fmt.Fprintf(w, "%d row(s) affected\n\n", r.Affected)
		return
	}
	renderTable(w, r.Columns, r.Rows)
	fmt.Fprintf(w, "%d row(s)\n\n", len(r.Rows))
}

// renderTable prints rows with column headers kept as written.
func renderTable(w io.Writer, columns []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
