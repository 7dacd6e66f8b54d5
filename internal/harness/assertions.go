package harness

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/dict2sql/internal/fixture"
)

// validIdentifier matches table and column names that final_state may
// interpolate. Values are always bound as parameters.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // assertion type for categorization
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
	SQL      string // statement under test, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "  SQL: %s\n", e.SQL)
	}
	return buf.String()
}

// AssertionContext carries what assertions are evaluated against.
type AssertionContext struct {
	Ctx    context.Context
	DB     *fixture.DB
	Result *Result
}

// EvaluateAssertions evaluates all assertions and returns a message for
// each one that failed.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertRows:
			err = assertRows(actx.Result, a)
		case AssertRowCount:
			err = assertRowCount(actx.Result, a)
		case AssertAffected:
			err = assertAffected(actx.Result, a)
		case AssertFinalState:
			if actx.DB == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires a database", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.DB, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// assertRows compares result rows. Unordered comparison sorts copies of
// both sides first, so duplicates still count.
func assertRows(r *Result, a Assertion) error {
	if r.Rows == nil {
		return &AssertionError{Type: AssertRows, Expected: "a result set", Actual: "statement returned no rows", SQL: r.SQL}
	}

	want, got := a.Rows, r.Rows.Values
	if !a.Ordered {
		want, got = sortedRows(want), sortedRows(got)
	}

	if !slices.EqualFunc(want, got, func(a, b []string) bool { return slices.Equal(a, b) }) {
		return &AssertionError{
			Type:     AssertRows,
			Expected: formatRows(want),
			Actual:   formatRows(got),
			SQL:      r.SQL,
		}
	}
	return nil
}

func assertRowCount(r *Result, a Assertion) error {
	if r.Rows == nil {
		return &AssertionError{Type: AssertRowCount, Expected: "a result set", Actual: "statement returned no rows", SQL: r.SQL}
	}
	if n := int64(len(r.Rows.Values)); n != a.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%d rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", n),
			SQL:      r.SQL,
		}
	}
	return nil
}

func assertAffected(r *Result, a Assertion) error {
	if r.Rows != nil {
		return &AssertionError{Type: AssertAffected, Expected: "a rows-affected count", Actual: "statement returned rows", SQL: r.SQL}
	}
	if r.Affected != a.Count {
		return &AssertionError{
			Type:     AssertAffected,
			Expected: fmt.Sprintf("%d rows affected", a.Count),
			Actual:   fmt.Sprintf("%d rows affected", r.Affected),
			SQL:      r.SQL,
		}
	}
	return nil
}

// assertFinalState queries exactly one row of a table and checks the
// expected columns (subset semantics). Cells are compared as text.
func assertFinalState(ctx context.Context, db *fixture.DB, a Assertion) error {
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", a.Table, validIdentifier.String())
	}

	whereSQL, whereArgs, err := buildWhereClause(a.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", a.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := db.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", a.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	whereDesc := formatWhereClause(a.Where)
	switch len(rows.Values) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", a.Table, whereDesc),
			Actual:   "row not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", a.Table, whereDesc),
			Actual:   fmt.Sprintf("%d rows matched (assertion is ambiguous)", len(rows.Values)),
		}
	}

	actual := make(map[string]string, len(rows.Columns))
	for i, col := range rows.Columns {
		actual[col] = rows.Values[0][i]
	}

	for _, key := range sortedKeys(a.Expect) {
		got, ok := actual[key]
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("column %q to exist", key),
				Actual:   fmt.Sprintf("columns are %v", rows.Columns),
			}
		}
		if want := cellText(a.Expect[key]); want != got {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s = %q", key, want),
				Actual:   fmt.Sprintf("%s = %q", key, got),
			}
		}
	}

	return nil
}

// buildWhereClause constructs a parameterized WHERE clause. Keys are sorted
// for determinism.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, where[key])
	}

	return strings.Join(clauses, " AND "), args, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// cellText renders an expected YAML value the way fixture renders cells.
func cellText(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRows(rows [][]string) [][]string {
	out := slices.Clone(rows)
	slices.SortFunc(out, func(a, b []string) int {
		return slices.Compare(a, b)
	})
	return out
}

func formatRows(rows [][]string) string {
	if len(rows) == 0 {
		return "no rows"
	}
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = "(" + strings.Join(row, ", ") + ")"
	}
	return strings.Join(parts, " ")
}
