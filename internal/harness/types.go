package harness

import "github.com/roach88/dict2sql/internal/fixture"

// Result is the outcome of a scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true if the SQL and every assertion matched.
	Pass bool `json:"pass"`

	// SQL is the compiled query. Empty when compilation failed.
	SQL string `json:"sql,omitempty"`

	// Rows holds the result set of a SELECT.
	Rows *fixture.Rows `json:"rows,omitempty"`

	// Affected is the rows-affected count of any other statement.
	Affected int64 `json:"affected,omitempty"`

	// Errors contains mismatch descriptions. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
