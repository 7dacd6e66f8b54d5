package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledQuery is one compiled statement.
type CompiledQuery struct {
	File        string `json:"file"`
	Index       int    `json:"index"`
	Fingerprint string `json:"fingerprint"`
	SQL         string `json:"sql"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file|dir>...",
		Short: "Compile query documents to SQL",
		Long: `Compile query documents to SQL text.

Files may be JSON, YAML, CUE or MessagePack, chosen by extension. A
document whose top level is a list holds one statement per element.
Statements are compiled concurrently; output keeps input order.

Examples:
  dict2sql compile query.json
  dict2sql compile ./queries --dialect mysql
  dict2sql compile query.yaml --debug
  dict2sql compile query.cue --format json -o out.sql`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write SQL to this file, one statement per line")

	return cmd
}

func runCompile(opts *CompileOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	docs, err := LoadQueries(opts.fs(), paths)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d statement(s)", len(docs))

	c, err := opts.compiler(cmd)
	if err != nil {
		return err
	}

	values := make([]ast.Value, len(docs))
	for i, d := range docs {
		values[i] = d.Value
	}

	sqls, err := c.CompileAll(cmd.Context(), values)
	if err != nil {
		var se *querysql.StatementError
		if errors.As(err, &se) {
			doc := docs[se.Index]
			err = fmt.Errorf("%s[%d]: %w", doc.File, doc.Index, se.Err)
		}
		return outputCommandError(formatter, err)
	}

	results := make([]CompiledQuery, len(docs))
	for i, d := range docs {
		fp, err := ast.Fingerprint(d.Value)
		if err != nil {
			return outputCommandError(formatter, err)
		}
		results[i] = CompiledQuery{File: d.File, Index: d.Index, Fingerprint: fp, SQL: sqls[i]}
	}

	if opts.Output != "" {
		if err := writeSQLFile(opts.fs(), opts.Output, sqls); err != nil {
			return outputCommandError(formatter, &LoadError{Code: ErrCodeWriteFailed, Path: opts.Output, Message: err.Error(), Err: err})
		}
		formatter.VerboseLog("Wrote %d statement(s) to %s", len(sqls), opts.Output)
	}

	if formatter.IsJSON() {
		return formatter.Success(results)
	}

	for _, r := range results {
		fmt.Fprintln(formatter.Writer, r.SQL)
	}
	return nil
}

// outputCommandError reports err with its CLI code and returns an ExitError
// with ExitCommandError.
func outputCommandError(formatter *OutputFormatter, err error) error {
	code := ErrorCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

func writeSQLFile(fs afero.Fs, path string, sqls []string) error {
	var b strings.Builder
	for _, s := range sqls {
		b.WriteString(s)
		b.WriteString(";\n")
	}
	return afero.WriteFile(fs, path, []byte(b.String()), 0644)
}
