package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/dict2sql/internal/fixture"
	"github.com/roach88/dict2sql/internal/format"
	"github.com/roach88/dict2sql/internal/querysql"
)

// Harness executes scenarios. Each scenario gets a fresh in-memory fixture.
type Harness struct {
	driver string
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithDriver selects the SQLite driver for fixtures ("sqlite3" or "sqlite").
func WithDriver(driver string) Option {
	return func(h *Harness) {
		if driver != "" {
			h.driver = driver
		}
	}
}

// WithLogger sets the logger passed to the compiler.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a Harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		driver: fixture.DefaultDriver,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the query with the scenario's dialect
//  2. Compare against expect_sql or expect_error
//  3. If there are assertions, open a seeded fixture, run setup, run the query
//  4. Evaluate assertions
//
// A mismatch is recorded in the result. The returned error is reserved for
// infrastructure failures such as the fixture not opening.
func (h *Harness) Run(ctx context.Context, s *Scenario) (*Result, error) {
	dialect, err := format.DialectByName(s.Dialect)
	if err != nil {
		return nil, err
	}
	compiler := querysql.New(querysql.WithDialect(dialect), querysql.WithLogger(h.logger))

	result := NewResult(s.Name)

	sql, err := compiler.Compile(s.Query.Value)
	if s.ExpectError != "" {
		switch {
		case err == nil:
			result.SQL = sql
			result.AddError(fmt.Sprintf("expected error containing %q, compiled to: %s", s.ExpectError, sql))
		case !strings.Contains(err.Error(), s.ExpectError):
			result.AddError(fmt.Sprintf("expected error containing %q, got: %v", s.ExpectError, err))
		}
		return result, nil
	}
	if err != nil {
		result.AddError(fmt.Sprintf("compile: %v", err))
		return result, nil
	}
	result.SQL = sql

	if s.ExpectSQL != "" && sql != s.ExpectSQL {
		result.AddError(fmt.Sprintf("SQL mismatch\n  Expected: %s\n  Actual:   %s", s.ExpectSQL, sql))
	}

	if len(s.Assertions) == 0 {
		return result, nil
	}

	db, err := fixture.OpenMemory(ctx, h.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer db.Close()

	for i, q := range s.Setup {
		setupSQL, err := compiler.Compile(q.Value)
		if err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
		if _, err := db.Run(ctx, setupSQL); err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
	}

	out, err := db.Run(ctx, sql)
	if err != nil {
		result.AddError(fmt.Sprintf("execute: %v", err))
		return result, nil
	}
	result.Rows = out.Rows
	result.Affected = out.Affected

	actx := &AssertionContext{Ctx: ctx, DB: db, Result: result}
	for _, msg := range EvaluateAssertions(s.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"name", s.Name,
		"pass", result.Pass,
		"errors", len(result.Errors))

	return result, nil
}

// RunAll executes scenarios in order and stops at the first
// infrastructure error.
func (h *Harness) RunAll(ctx context.Context, scenarios []*Scenario) ([]*Result, error) {
	results := make([]*Result, 0, len(scenarios))
	for _, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r, err := h.Run(ctx, s)
		if err != nil {
			return results, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		results = append(results, r)
	}
	return results, nil
}
