package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/opql/internal/metadata"
)

// SchemaOutput is the JSON payload of the schema command.
type SchemaOutput struct {
	Files   int           `json:"files"`
	Classes []ClassOutput `json:"classes"`
}

// ClassOutput describes one class.
type ClassOutput struct {
	Name          string               `json:"name"`
	Table         string               `json:"table"`
	Attributes    []AttributeOutput    `json:"attributes"`
	Relationships []RelationshipOutput `json:"relationships"`
}

// AttributeOutput describes one attribute.
type AttributeOutput struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Column     string `json:"column"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// RelationshipOutput describes one relationship.
type RelationshipOutput struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	Cardinality string `json:"cardinality"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema <schema-dir>",
		Short: "Load and validate a class schema",
		Long: `Load the CUE class declarations in a directory, validate them, and
list the resulting classes.

Exit codes:
  0 - Schema valid
  1 - Schema invalid (E1xx validation errors)
  2 - Command error (missing directory, CUE syntax errors)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSchema(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	schema, err := LoadSchema(dir)
	if err != nil {
		code, message, details := loadErrorParts(err)
		_ = formatter.Error(code, message, details)
		exit := ExitCommandError
		if details != nil {
			exit = ExitFailure
		}
		return WrapExitError(exit, fmt.Sprintf("%s: %s", code, message), nil)
	}

	out := describeSchema(schema)
	opts.logger().Debug("schema loaded", "dir", dir, "classes", len(out.Classes), "files", out.Files)

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Loaded %d class(es) from %d file(s)\n\n", len(out.Classes), out.Files)
	for _, cls := range out.Classes {
		fmt.Fprintf(w, "%s (%s): %d attribute(s), %d relationship(s)\n",
			cls.Name, cls.Table, len(cls.Attributes), len(cls.Relationships))
		if !formatter.Verbose {
			continue
		}
		for _, a := range cls.Attributes {
			pk := ""
			if a.PrimaryKey {
				pk = " [pk]"
			}
			fmt.Fprintf(w, "  %s %s%s\n", a.Name, a.Type, pk)
		}
		for _, r := range cls.Relationships {
			fmt.Fprintf(w, "  %s -> %s (%s, %s = %s)\n", r.Name, r.Target, r.Cardinality, r.From, r.To)
		}
	}
	return nil
}

func describeSchema(schema *SchemaResult) SchemaOutput {
	out := SchemaOutput{Files: schema.FileCount, Classes: []ClassOutput{}}
	for _, cls := range schema.Catalog.Classes() {
		out.Classes = append(out.Classes, describeClass(cls))
	}
	return out
}

func describeClass(cls *metadata.Class) ClassOutput {
	c := ClassOutput{
		Name:          cls.Name,
		Table:         cls.Table,
		Attributes:    []AttributeOutput{},
		Relationships: []RelationshipOutput{},
	}
	for _, a := range cls.Attributes() {
		c.Attributes = append(c.Attributes, AttributeOutput{
			Name:       a.Name,
			Type:       a.Type.String(),
			Column:     a.Column,
			PrimaryKey: a.PrimaryKey,
		})
	}
	for _, r := range cls.Relationships() {
		c.Relationships = append(c.Relationships, RelationshipOutput{
			Name:        r.Name,
			Target:      r.Target,
			Cardinality: r.Cardinality.String(),
			From:        r.Join.From,
			To:          r.Join.To,
		})
	}
	return c
}
