package metadata

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/opql/internal/ir"
)

// ParseSchema compiles CUE source text declaring classes under the top-level
// `class` field and returns the validated Catalog.
//
//	class: Employee: {
//		attribute: {
//			id:   {type: "Long", primaryKey: true}
//			name: "String"
//		}
//		relationship: department: {target: "Department", join: {from: "departmentId", to: "id"}}
//	}
func ParseSchema(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileSchema(v)
}

// CompileSchema compiles every entry of the `class` field of v, failing on
// the first malformed class, and validates the result.
func CompileSchema(v cue.Value) (*Catalog, error) {
	classesVal := v.LookupPath(cue.ParsePath("class"))
	if !classesVal.Exists() {
		return nil, &CompileError{Field: "class", Message: "no classes declared", Pos: v.Pos()}
	}
	iter, err := classesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var specs []ClassSpec
	for iter.Next() {
		spec, err := CompileClass(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return NewCatalog(specs...)
}

// CompileClass parses one CUE class struct into a ClassSpec. The class name
// is taken from the struct label, e.g. the value at path class.Employee.
func CompileClass(v cue.Value) (ClassSpec, error) {
	var spec ClassSpec
	if err := v.Err(); err != nil {
		return spec, formatCUEError(err)
	}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if tableVal.Exists() {
		table, err := tableVal.String()
		if err != nil {
			return spec, formatCUEError(err)
		}
		spec.Table = table
	}

	attrs, err := parseAttributes(v)
	if err != nil {
		return spec, err
	}
	if len(attrs) == 0 {
		return spec, &CompileError{
			Field:   "attribute",
			Message: "at least one attribute is required",
			Pos:     v.Pos(),
		}
	}
	spec.Attributes = attrs

	spec.Relationships, err = parseRelationships(v)
	if err != nil {
		return spec, err
	}
	return spec, nil
}

// parseAttributes accepts either a bare type name or a struct with
// type, column and primaryKey fields.
func parseAttributes(v cue.Value) ([]AttributeSpec, error) {
	attrVal := v.LookupPath(cue.ParsePath("attribute"))
	if !attrVal.Exists() {
		return nil, nil
	}
	iter, err := attrVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var attrs []AttributeSpec
	for iter.Next() {
		name := iter.Label()
		entry := iter.Value()
		attr := AttributeSpec{Name: name}

		typeVal := entry
		if entry.IncompleteKind() == cue.StructKind {
			typeVal = entry.LookupPath(cue.ParsePath("type"))
			if !typeVal.Exists() {
				return nil, &CompileError{
					Field:   "attribute." + name + ".type",
					Message: "attribute type is required",
					Pos:     entry.Pos(),
				}
			}
			if col := entry.LookupPath(cue.ParsePath("column")); col.Exists() {
				if attr.Column, err = col.String(); err != nil {
					return nil, formatCUEError(err)
				}
			}
			if pk := entry.LookupPath(cue.ParsePath("primaryKey")); pk.Exists() {
				if attr.PrimaryKey, err = pk.Bool(); err != nil {
					return nil, formatCUEError(err)
				}
			}
		}

		typeName, err := typeVal.String()
		if err != nil {
			return nil, &CompileError{
				Field:   "attribute." + name + ".type",
				Message: "attribute type must be a type name string",
				Pos:     typeVal.Pos(),
			}
		}
		attr.Type, err = ir.ParseValueType(typeName)
		if err != nil {
			return nil, &CompileError{
				Field:   "attribute." + name + ".type",
				Message: err.Error(),
				Pos:     typeVal.Pos(),
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func parseRelationships(v cue.Value) ([]RelationshipSpec, error) {
	relVal := v.LookupPath(cue.ParsePath("relationship"))
	if !relVal.Exists() {
		return nil, nil
	}
	iter, err := relVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var rels []RelationshipSpec
	for iter.Next() {
		name := iter.Label()
		entry := iter.Value()
		rel := RelationshipSpec{Name: name, Cardinality: One}

		if rel.Target, err = requiredString(entry, "target", "relationship."+name); err != nil {
			return nil, err
		}
		if rel.From, err = requiredString(entry, "join.from", "relationship."+name); err != nil {
			return nil, err
		}
		if rel.To, err = requiredString(entry, "join.to", "relationship."+name); err != nil {
			return nil, err
		}

		if cv := entry.LookupPath(cue.ParsePath("cardinality")); cv.Exists() {
			s, err := cv.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			if rel.Cardinality, err = ParseCardinality(s); err != nil {
				return nil, &CompileError{
					Field:   "relationship." + name + ".cardinality",
					Message: err.Error(),
					Pos:     cv.Pos(),
				}
			}
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

func requiredString(v cue.Value, path, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", &CompileError{
			Field:   field + "." + path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
