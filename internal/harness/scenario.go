package harness

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/format"
)

// Scenario defines one end-to-end query check.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialect selects quoting rules. Empty means ANSI.
	Dialect string `yaml:"dialect,omitempty"`

	// Setup statements are compiled and executed before Query.
	// They are assumed to succeed.
	Setup []Query `yaml:"setup,omitempty"`

	// Query is the statement under test.
	Query Query `yaml:"query"`

	// ExpectSQL is the exact compiled SQL, if given.
	ExpectSQL string `yaml:"expect_sql,omitempty"`

	// ExpectError is a substring of the expected compile error.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the executed statement.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Query is a query AST embedded in a scenario file.
type Query struct {
	Value ast.Value
}

// UnmarshalYAML keeps mapping order from the file.
func (q *Query) UnmarshalYAML(n *yaml.Node) error {
	v, err := ast.FromYAMLNode(n)
	if err != nil {
		return err
	}
	q.Value = v
	return nil
}

// Assertion validates the executed statement or the database afterwards.
type Assertion struct {
	// Type specifies the assertion type:
	// - "rows": result rows equal Rows
	// - "row_count": result has Count rows
	// - "affected": statement affected Count rows
	// - "final_state": query Table and verify one row
	Type string `yaml:"type"`

	// Rows are the expected result rows, every cell as text (used by rows).
	Rows [][]string `yaml:"rows,omitempty"`

	// Ordered makes rows compare position by position.
	Ordered bool `yaml:"ordered,omitempty"`

	// Count is the expected number (used by row_count and affected).
	Count int64 `yaml:"count,omitempty"`

	// Table is the table to inspect (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies equality filters (used by final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match: only listed columns are checked.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRows       = "rows"
	AssertRowCount   = "row_count"
	AssertAffected   = "affected"
	AssertFinalState = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(fs afero.Fs, path string) (*Scenario, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by path.
func LoadScenarios(fs afero.Fs, dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := afero.Glob(fs, filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(fs, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Query.Value == nil {
		return fmt.Errorf("query is required")
	}

	if _, err := format.DialectByName(s.Dialect); err != nil {
		return err
	}

	for i, q := range s.Setup {
		if q.Value == nil {
			return fmt.Errorf("setup[%d]: query is required", i)
		}
	}

	if s.ExpectError != "" {
		if s.ExpectSQL != "" || len(s.Assertions) > 0 {
			return fmt.Errorf("expect_error cannot be combined with expect_sql or assertions")
		}
		return nil
	}

	if s.ExpectSQL == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("expect_sql, expect_error or assertions is required")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRows:
		if a.Rows == nil {
			return fmt.Errorf("assertions[%d]: rows is required for rows (use [] for none)", index)
		}
	case AssertRowCount, AssertAffected:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
