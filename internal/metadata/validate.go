package metadata

import (
	"fmt"
	"strings"

	"github.com/roach88/opql/internal/ir"
)

// Validation error codes (E101-E199)
const (
	ErrEmptyName          = "E101" // class or member name is empty
	ErrDuplicateClass     = "E102" // class declared twice
	ErrDuplicateMember    = "E103" // attribute/relationship name declared twice
	ErrInvalidType        = "E104" // attribute type is not a known ValueType
	ErrPrimaryKey         = "E105" // class must have exactly one primary key
	ErrUnknownTarget      = "E106" // relationship target class not declared
	ErrUnknownJoin        = "E107" // join attribute missing on either side
	ErrJoinTypeMismatch   = "E108" // join attributes have different types
	ErrInvalidCardinality = "E109" // cardinality is not one or many
)

// ValidationError represents one schema validation problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// SchemaError aggregates every validation problem found in a schema.
type SchemaError struct {
	Errors []ValidationError
}

func (e *SchemaError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid schema: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid schema (%d problems): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks class specs for structural consistency.
// Returns all errors found (does not fail-fast).
func Validate(specs []ClassSpec) []ValidationError {
	var errs []ValidationError

	byName := make(map[string]*ClassSpec, len(specs))
	for i := range specs {
		spec := &specs[i]
		if strings.TrimSpace(spec.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("class[%d]", i),
				Message: "class name is required",
				Code:    ErrEmptyName,
			})
			continue
		}
		if _, dup := byName[spec.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   "class." + spec.Name,
				Message: "class declared more than once",
				Code:    ErrDuplicateClass,
			})
			continue
		}
		byName[spec.Name] = spec
	}

	for i := range specs {
		spec := &specs[i]
		if byName[spec.Name] != spec {
			continue
		}
		errs = append(errs, validateClass(spec, byName)...)
	}
	return errs
}

func validateClass(spec *ClassSpec, byName map[string]*ClassSpec) []ValidationError {
	var errs []ValidationError
	prefix := "class." + spec.Name

	seen := make(map[string]bool)
	keys := 0
	for _, a := range spec.Attributes {
		field := prefix + ".attribute." + a.Name
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, ValidationError{Field: prefix + ".attribute", Message: "attribute name is required", Code: ErrEmptyName})
			continue
		}
		if seen[a.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "member declared more than once", Code: ErrDuplicateMember})
		}
		seen[a.Name] = true
		if !validType(a.Type) {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid type %s", a.Type), Code: ErrInvalidType})
		}
		if a.PrimaryKey {
			keys++
		}
	}
	if keys != 1 {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: fmt.Sprintf("exactly one primary key attribute is required, found %d", keys),
			Code:    ErrPrimaryKey,
		})
	}

	for _, r := range spec.Relationships {
		field := prefix + ".relationship." + r.Name
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, ValidationError{Field: prefix + ".relationship", Message: "relationship name is required", Code: ErrEmptyName})
			continue
		}
		if seen[r.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "member declared more than once", Code: ErrDuplicateMember})
		}
		seen[r.Name] = true

		if r.Cardinality != 0 && r.Cardinality != One && r.Cardinality != Many {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid cardinality %s", r.Cardinality), Code: ErrInvalidCardinality})
		}

		target, ok := byName[r.Target]
		if !ok {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("unknown target class %q", r.Target), Code: ErrUnknownTarget})
			continue
		}
		from, fromOK := findAttribute(spec, r.From)
		to, toOK := findAttribute(target, r.To)
		if !fromOK {
			errs = append(errs, ValidationError{Field: field + ".join.from", Message: fmt.Sprintf("no attribute %q on %s", r.From, spec.Name), Code: ErrUnknownJoin})
		}
		if !toOK {
			errs = append(errs, ValidationError{Field: field + ".join.to", Message: fmt.Sprintf("no attribute %q on %s", r.To, target.Name), Code: ErrUnknownJoin})
		}
		if fromOK && toOK && from.Type != to.Type {
			errs = append(errs, ValidationError{
				Field:   field + ".join",
				Message: fmt.Sprintf("join types differ: %s.%s is %s, %s.%s is %s", spec.Name, from.Name, from.Type, target.Name, to.Name, to.Type),
				Code:    ErrJoinTypeMismatch,
			})
		}
	}
	return errs
}

func findAttribute(spec *ClassSpec, name string) (AttributeSpec, bool) {
	for _, a := range spec.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSpec{}, false
}

func validType(t ir.ValueType) bool {
	for _, vt := range ir.AllValueTypes() {
		if t == vt {
			return true
		}
	}
	return false
}
