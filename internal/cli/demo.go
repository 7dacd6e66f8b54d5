package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dict2sql/internal/ast"
	"github.com/roach88/dict2sql/internal/queryir"
)

// DemoResult is the JSON payload of the demo command.
type DemoResult struct {
	AST      ast.Value `json:"ast"`
	SQL      string    `json:"sql"`
	Warnings []string  `json:"warnings,omitempty"`
}

// demoQuery selects tall glaciated mountains that share a province with a
// castle.
func demoQuery() queryir.Select {
	return queryir.Select{
		Columns: []string{"name", "height", "country"},
		From: queryir.FromList{queryir.Join{
			Kind:  queryir.InnerJoin,
			Left:  queryir.Table("mountains"),
			Right: queryir.Table("castles"),
			On:    queryir.Eq(queryir.Ident("mountains.province"), queryir.Ident("castle.province")),
		}},
		Where: queryir.AllOf(
			queryir.Ge(queryir.Ident("height"), queryir.Int(3000)),
			queryir.Eq(queryir.Ident("has_glacier"), queryir.Ident("true")),
		),
		Limit: queryir.Limit(3),
	}
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Show a sample query, its AST and its SQL",
		Long: `Build a sample query with the typed builder, print the AST it encodes
to and the SQL it compiles to. Respects --dialect and --debug.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(rootOpts, cmd)
		},
	}
}

func runDemo(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	q := demoQuery()
	v, err := queryir.Encode(q)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	c, err := opts.compiler(cmd)
	if err != nil {
		return err
	}
	sql, err := c.Compile(v)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	result := DemoResult{AST: v, SQL: sql, Warnings: queryir.Validate(q).Warnings}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	doc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return outputCommandError(formatter, err)
	}
	fmt.Fprintln(formatter.Writer, "Query:")
	fmt.Fprintln(formatter.Writer, string(doc))
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, "SQL:")
	fmt.Fprintln(formatter.Writer, sql)
	for _, w := range result.Warnings {
		formatter.Warn("%s", w)
	}
	return nil
}
