package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/dict2sql/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario name filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	SQL    string   `json:"sql,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run end-to-end query scenarios",
		Long: `Run scenario files: each compiles a query, compares the SQL and
executes it against a fresh seeded fixture to check rows and state.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios, etc.)

Examples:
  dict2sql test ./testdata/scenarios
  dict2sql test ./testdata/scenarios --filter "where_*"
  dict2sql test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name (glob pattern)")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	scenarios, err := harness.LoadScenarios(opts.fs(), dir)
	if err != nil {
		return outputCommandError(formatter, &LoadError{Code: ErrCodeScenario, Path: dir, Message: err.Error(), Err: err})
	}

	selected, err := filterScenarios(scenarios, opts.Filter)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	h := harness.New(
		harness.WithDriver(opts.Driver),
		harness.WithLogger(opts.logger(cmd.ErrOrStderr())),
	)

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(selected)),
		Total:     len(selected),
	}

	for _, s := range selected {
		sr := runScenario(h, s, cmd)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.IsJSON() {
		if err := outputTestJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputTestText(formatter, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func filterScenarios(scenarios []*harness.Scenario, filter string) ([]*harness.Scenario, error) {
	if filter == "" {
		return scenarios, nil
	}
	var out []*harness.Scenario
	for _, s := range scenarios {
		matched, err := filepath.Match(filter, s.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			out = append(out, s)
		}
	}
	return out, nil
}

// runScenario executes a single scenario. Infrastructure errors count as
// failures so the remaining scenarios still run.
func runScenario(h *harness.Harness, s *harness.Scenario, cmd *cobra.Command) ScenarioResult {
	result, err := h.Run(cmd.Context(), s)
	if err != nil {
		return ScenarioResult{
			Name:   s.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}
	return ScenarioResult{
		Name:   s.Name,
		Pass:   result.Pass,
		SQL:    result.SQL,
		Errors: result.Errors,
	}
}

func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}
	return encoder.Encode(CLIResponse{Status: status, Data: result})
}

func outputTestText(formatter *OutputFormatter, result TestResult) {
	for _, s := range result.Scenarios {
		formatter.Mark(s.Pass, "%s", s.Name)
		if !s.Pass {
			for _, e := range s.Errors {
				fmt.Fprintf(formatter.Writer, "  %s\n", e)
			}
		}
		if formatter.Verbose && s.SQL != "" {
			fmt.Fprintf(formatter.Writer, "  %s\n", s.SQL)
		}
	}
	fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
