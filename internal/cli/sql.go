package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/opql/internal/querysql"
)

// SQLOutput is the JSON payload of the sql command.
type SQLOutput struct {
	Class     string `json:"class"`
	Operation string `json:"operation"`
	SQL       string `json:"sql"`
	Params    []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <tree.yaml>",
		Short: "Compile a parse tree and render it as SQLite SQL",
		Long: `Compile a serialized parse tree and render the Operation as a
parameterized SQLite query selecting the root class's primary keys.

Values are never interpolated; they are listed as parameters.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.SchemaDir, "schema", "s", ".", "schema directory")

	return cmd
}

func runSQL(opts *CompileOptions, treePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	catalog, unit, err := loadInputs(opts, formatter, treePath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	op, err := compileUnit(opts, formatter, catalog, unit)
	if err != nil {
		return err
	}

	query, params, err := querysql.NewSQLCompiler(catalog).Compile(unit.Class, op)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("rendering sql: %v", err), nil)
	}
	if params == nil {
		params = []any{}
	}

	if formatter.Format == "json" {
		return formatter.Success(SQLOutput{Class: unit.Class, Operation: op.String(), SQL: query, Params: params})
	}

	w := formatter.Writer
	fmt.Fprintln(w, query)
	if len(params) > 0 {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = fmt.Sprintf("%d: %#v", i+1, p)
		}
		fmt.Fprintf(w, "params: %s\n", strings.Join(parts, ", "))
	}
	return nil
}
