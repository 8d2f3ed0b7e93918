package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/opql/internal/compiler"
	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/operation"
	"github.com/roach88/opql/internal/parsetree"
)

// CompileOptions holds flags for the compile and sql commands.
type CompileOptions struct {
	*RootOptions
	SchemaDir string // directory of CUE class declarations
}

// CompileOutput is the JSON payload of the compile command.
type CompileOutput struct {
	Class     string         `json:"class"`
	Operation string         `json:"operation"`
	Tree      map[string]any `json:"tree"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <tree.yaml>",
		Short: "Compile a serialized parse tree to an Operation",
		Long: `Compile a serialized parse tree against a class schema.

The tree file holds one compilation unit (class and operation) in YAML.
Use "-" to read it from stdin. The compiled Operation is printed on one
line, or as a canonical tree with --format json.

Exit codes:
  0 - Compiled
  1 - Compile error (type error, unknown attribute, ...)
  2 - Command error (unreadable schema or tree)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.SchemaDir, "schema", "s", ".", "schema directory")

	return cmd
}

func runCompile(opts *CompileOptions, treePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	catalog, unit, err := loadInputs(opts, formatter, treePath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	op, err := compileUnit(opts, formatter, catalog, unit)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		tree, err := operation.Encode(op)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("encoding operation: %v", err), nil)
		}
		return formatter.Success(CompileOutput{Class: unit.Class, Operation: op.String(), Tree: tree})
	}
	return formatter.Success(op.String())
}

// loadInputs loads the schema and the parse tree, reporting failures as
// command errors.
func loadInputs(opts *CompileOptions, formatter *OutputFormatter, treePath string, stdin io.Reader) (*metadata.Catalog, parsetree.CompilationUnit, error) {
	schema, err := LoadSchema(opts.SchemaDir)
	if err != nil {
		code, message, details := loadErrorParts(err)
		return nil, parsetree.CompilationUnit{}, outputCommandError(formatter, code, message, details)
	}
	formatter.VerboseLog("Loaded %d class(es) from %d CUE file(s) in %s",
		len(schema.Catalog.Classes()), schema.FileCount, opts.SchemaDir)

	unit, err := readUnit(treePath, stdin)
	if err != nil {
		return nil, parsetree.CompilationUnit{}, outputCommandError(formatter, ErrCodeBadTree, err.Error(), nil)
	}
	formatter.VerboseLog("Compiling %s", parsetree.FormatUnit(unit))

	return schema.Catalog, unit, nil
}

func readUnit(path string, stdin io.Reader) (parsetree.CompilationUnit, error) {
	if path == "-" {
		unit, err := parsetree.Decode(stdin)
		if err != nil {
			return unit, fmt.Errorf("reading tree from stdin: %w", err)
		}
		return unit, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return parsetree.CompilationUnit{}, fmt.Errorf("reading tree: %w", err)
	}
	unit, err := parsetree.DecodeBytes(data)
	if err != nil {
		return unit, fmt.Errorf("%s: %w", path, err)
	}
	return unit, nil
}

// compileUnit compiles unit, reporting compile errors with exit code 1.
func compileUnit(opts *CompileOptions, formatter *OutputFormatter, catalog *metadata.Catalog, unit parsetree.CompilationUnit) (operation.Operation, error) {
	c := compiler.New(catalog, compiler.WithLogger(opts.logger()))
	op, err := c.Compile(unit)
	if err == nil {
		return op, nil
	}

	code := compiler.Code(err)
	if code == "" {
		code = ErrCodeGeneric
	}
	var details map[string]string
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		details = map[string]string{"class": ce.Class}
		if ce.Fragment != "" {
			details["fragment"] = ce.Fragment
		}
	}
	_ = formatter.Error(code, err.Error(), details)
	return nil, WrapExitError(ExitFailure, code, err)
}

// outputCommandError outputs a command-level error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}
