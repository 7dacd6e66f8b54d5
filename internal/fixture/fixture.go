package fixture

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:embed chinook.sql
var seedSQL string

// DB is a fixture database handle.
type DB struct {
	db     *sql.DB
	driver string
}

// Rows is a fully materialised query result.
type Rows struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Values  [][]string `json:"values" yaml:"values"`
}

// Result is the outcome of Run: Rows for queries, Affected otherwise.
type Result struct {
	Rows     *Rows
	Affected int64
}

// IsQuery reports whether the result carries rows.
func (r *Result) IsQuery() bool {
	return r.Rows != nil
}

// Open connects to a database through a registered driver.
//
// SQLite handles are limited to one connection so that shared-cache
// in-memory databases stay visible to every statement.
func Open(driver, dsn string) (*DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	if !slices.Contains(sql.Drivers(), driver) {
		return nil, fmt.Errorf("unknown driver %q (registered: %s)", driver, strings.Join(sql.Drivers(), ", "))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite(driver) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &DB{db: db, driver: driver}, nil
}

// OpenMemory opens a fresh, uniquely named in-memory SQLite database and
// seeds it with the Chinook subset.
func OpenMemory(ctx context.Context, driver string) (*DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	if !isSQLite(driver) {
		return nil, fmt.Errorf("in-memory fixture needs a sqlite driver, got %q", driver)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Seed(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing handle.
func New(db *sql.DB, driver string) *DB {
	return &DB{db: db, driver: driver}
}

// Driver returns the driver name the handle was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SeedStatements returns the embedded seed script split into statements.
func SeedStatements() []string {
	var stmts []string
	for _, part := range strings.Split(seedSQL, ";\n") {
		stmt := strings.TrimSpace(stripComments(part))
		if stmt == "" {
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// Seed creates and populates the Chinook subset. Statements run one at a
// time inside a transaction since not every driver accepts multi-statement
// Exec.
func (d *DB) Seed(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range SeedStatements() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// Exec runs a statement that returns no rows and reports rows affected.
func (d *DB) Exec(ctx context.Context, query string) (int64, error) {
	res, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// Query runs a statement and reads every row as text.
// Args are bound to placeholders by the driver.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := &Rows{Columns: cols, Values: [][]string{}}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out.Values), err)
		}

		row := make([]string, len(cols))
		for i, v := range raw {
			row[i] = cellText(v)
		}
		out.Values = append(out.Values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

// Run executes a compiled statement. SELECT statements are read with Query,
// everything else with Exec.
func (d *DB) Run(ctx context.Context, query string) (*Result, error) {
	if IsSelect(query) {
		rows, err := d.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil
	}

	n, err := d.Exec(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Result{Affected: n}, nil
}

// IsSelect reports whether the statement reads rows.
func IsSelect(query string) bool {
	head := strings.TrimLeft(query, " \t\r\n(")
	return len(head) >= 6 && strings.EqualFold(head[:6], "SELECT")
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func stripComments(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
