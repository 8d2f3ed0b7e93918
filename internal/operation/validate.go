package operation

import (
	"fmt"

	"github.com/roach88/opql/internal/ir"
)

// ValidationResult reports structural problems found in an operation tree.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every violated structural rule.
	Problems []string
}

// Validate checks the structural rules every compiled tree satisfies:
//  1. And/Or have at least two children and never nest their own kind
//  2. Literal types match the attribute type (Instant for as-of attributes)
//  3. Operators belong to the node kind that carries them
//  4. Exists always has a nested operation
//
// Validate is a pure function with no side effects.
func Validate(op Operation) ValidationResult {
	v := &validator{problems: []string{}}
	v.validate(op)
	return ValidationResult{Valid: len(v.problems) == 0, Problems: v.problems}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validate(op Operation) {
	switch o := op.(type) {
	case nil:
		v.addProblem("nil operation")
	case And:
		v.validateJunction("And", o.Children, func(c Operation) bool { _, ok := c.(And); return ok })
	case Or:
		v.validateJunction("Or", o.Children, func(c Operation) bool { _, ok := c.(Or); return ok })
	case All, None:
	case Compare:
		switch o.Operator {
		case Eq, NotEq, GreaterThan, GreaterThanEquals, LessThan, LessThanEquals:
		default:
			v.addProblem("%s: operator %s is not a comparison", o, o.Operator)
		}
		v.checkScalar(o.String(), o.Attribute, o.Value)
	case SetMembership:
		if o.Operator.Cardinality() != Many {
			v.addProblem("%s: operator %s does not take a list", o, o.Operator)
		}
		if o.Values.Elem != literalType(o.Attribute.Type) {
			v.addProblem("%s: list of %s against %s attribute", o, o.Values.Elem, o.Attribute.Type)
		}
		for _, elem := range o.Values.Values {
			v.checkScalar(o.String(), o.Attribute, elem)
		}
	case StringPattern:
		switch o.Operator {
		case StartsWith, NotStartsWith, EndsWith, NotEndsWith, Contains, NotContains, WildCardEquals, WildCardNotEquals:
		default:
			v.addProblem("%s: operator %s is not a string pattern", o, o.Operator)
		}
		if o.Attribute.Type != ir.TypeString {
			v.addProblem("%s: pattern against %s attribute", o, o.Attribute.Type)
		}
	case Null:
	case Exists:
		if len(o.Relationship.Path) == 0 {
			v.addProblem("%s: empty relationship path", o)
		}
		if o.Operation == nil {
			v.addProblem("Exists(%s): nil nested operation", o.Relationship)
			return
		}
		v.validate(o.Operation)
	case EdgePointEquals:
		if o.Attribute.Type != ir.TypeAsOf {
			v.addProblem("%s: attribute is %s, not AsOf", o, o.Attribute.Type)
		}
	default:
		v.addProblem("unsupported operation type: %T", op)
	}
}

func (v *validator) validateJunction(name string, children []Operation, sameKind func(Operation) bool) {
	if len(children) < 2 {
		v.addProblem("%s has %d children, want at least 2", name, len(children))
	}
	for _, child := range children {
		if sameKind(child) {
			v.addProblem("%s directly contains %s", name, child)
		}
		v.validate(child)
	}
}

func (v *validator) checkScalar(where string, attr AttributeRef, val ir.Value) {
	got, ok := ir.TypeOf(val)
	if !ok {
		v.addProblem("%s: value %s is not a scalar", where, ir.Format(val))
		return
	}
	if want := literalType(attr.Type); got != want {
		v.addProblem("%s: %s value against %s attribute", where, got, attr.Type)
	}
}

// literalType is the ValueType of literals compared with an attribute type.
func literalType(t ir.ValueType) ir.ValueType {
	if t == ir.TypeAsOf {
		return ir.TypeInstant
	}
	return t
}
