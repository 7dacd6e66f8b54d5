package querysql

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/dispatch"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/ir"
)

// Compiler compiles query ASTs to SQL text.
//
// Configuration (dialect, debug mode, logger) is fixed by New. A Compiler
// holds no mutable state, so one instance may be shared by any number of
// goroutines.
type Compiler struct {
	formatter format.Formatter
	dialect   format.Dialect
	logger    *slog.Logger

	statement    *dispatch.Rule
	subquery     *dispatch.Rule
	selectClause *dispatch.Rule
	from         *dispatch.Rule
	where        *dispatch.Rule
	literal      *dispatch.Rule
	limit        *dispatch.Rule
	value        *dispatch.Rule
}

// Option configures a Compiler.
type Option func(*options)

type options struct {
	dialect format.Dialect
	debug   bool
	logger  *slog.Logger
}

// WithDialect selects the quoting rules. The default is format.ANSI.
func WithDialect(d format.Dialect) Option {
	return func(o *options) {
		if d != nil {
			o.dialect = d
		}
	}
}

// WithDebug makes Compile return the labeled debug tree instead of flat SQL.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithLogger sets the logger used for per-statement debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds a Compiler.
func New(opts ...Option) *Compiler {
	o := options{
		dialect: format.ANSI,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Compiler{
		formatter: format.Formatter{Dialect: o.dialect, Debug: o.debug},
		dialect:   o.dialect,
		logger:    o.logger,
	}
	c.buildRules(o.debug)
	return c
}

// Dialect returns the dialect the compiler quotes with.
func (c *Compiler) Dialect() format.Dialect {
	return c.dialect
}

// Debug reports whether the compiler renders debug trees.
func (c *Compiler) Debug() bool {
	return c.formatter.Debug
}

// Compile turns a statement AST into SQL text, or into the debug tree when
// debug mode is on. It never returns partial output: on error the string
// is empty.
func (c *Compiler) Compile(stmt ast.Value) (string, error) {
	tok, err := c.CompileIR(stmt)
	if err != nil {
		return "", err
	}

	out, err := c.formatter.CompileQuery(tok)
	if err != nil {
		return "", fmt.Errorf("render %s statement: %w", statementKind(stmt), err)
	}

	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		fp, _ := ast.Fingerprint(stmt)
		c.logger.Debug("compiled statement",
			"kind", statementKind(stmt),
			"fingerprint", fp,
			"dialect", c.dialect.Name(),
		)
	}
	return out, nil
}

// CompileIR runs the statement dispatcher and returns the IR tree.
func (c *Compiler) CompileIR(stmt ast.Value) (ir.Token, error) {
	if stmt == nil {
		return nil, fmt.Errorf("cannot compile nil statement")
	}
	return c.statement.Dispatch(stmt)
}

// CompileAll compiles a batch concurrently on this compiler. Results keep
// the input order. The first error cancels the remaining work.
func (c *Compiler) CompileAll(ctx context.Context, stmts []ast.Value) ([]string, error) {
	out := make([]string, len(stmts))

	g, ctx := errgroup.WithContext(ctx)
	for i, stmt := range stmts {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			sql, err := c.Compile(stmt)
			if err != nil {
				return &StatementError{Index: i, Err: err}
			}
			out[i] = sql
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// statementKind names the statement for logs and errors.
func statementKind(stmt ast.Value) string {
	m, ok := stmt.(ast.Map)
	if !ok {
		return ast.Kind(stmt)
	}
	for _, key := range []string{keySelect, keyInsert, keyUpdate, keyDelete} {
		if m.Has(key) {
			return key
		}
	}
	return "unknown"
}
