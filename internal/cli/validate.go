package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationEntry reports one statement.
type ValidationEntry struct {
	File    string `json:"file"`
	Index   int    `json:"index"`
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationReport is the validate command's result.
type ValidationReport struct {
	Entries []ValidationEntry `json:"entries"`
	Valid   int               `json:"valid"`
	Invalid int               `json:"invalid"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|dir>...",
		Short: "Check that query documents compile",
		Long: `Compile every statement and report which ones fail, with error codes.
Unlike compile, validate keeps going after the first failure.

Exit codes:
  0 - Every statement compiles
  1 - One or more statements failed
  2 - Command error (unreadable or undecodable files)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	docs, err := LoadQueries(opts.fs(), paths)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	c, err := opts.compiler(cmd)
	if err != nil {
		return err
	}

	report := ValidationReport{Entries: make([]ValidationEntry, 0, len(docs))}
	for _, d := range docs {
		entry := ValidationEntry{File: d.File, Index: d.Index, Valid: true}
		if _, err := c.Compile(d.Value); err != nil {
			entry.Valid = false
			entry.Code = ErrorCode(err)
			entry.Message = err.Error()
			report.Invalid++
			formatter.Mark(false, "%s[%d]", d.File, d.Index)
			if !formatter.IsJSON() {
				fmt.Fprintf(formatter.Writer, "  %s: %s\n", entry.Code, entry.Message)
			}
		} else {
			report.Valid++
			formatter.Mark(true, "%s[%d]", d.File, d.Index)
		}
		report.Entries = append(report.Entries, entry)
	}

	if formatter.IsJSON() {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "\n%d valid, %d invalid\n", report.Valid, report.Invalid)
	}

	if report.Invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d statement(s) failed validation", report.Invalid))
	}
	return nil
}
