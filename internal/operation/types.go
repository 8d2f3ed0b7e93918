package operation

import (
	"strconv"
	"strings"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
)

// Operation is a compiled predicate node.
//
// This is a sealed interface - only types in this package implement it.
// Every node renders a deterministic one-line String form, which is also
// what error messages and golden snapshots use.
type Operation interface {
	operationNode() // Marker method - seals interface to this package
	String() string
}

// AttributeRef is a resolved, typed attribute reached from the root class
// through zero or more relationships.
//
// Type is the value type after all Functions are applied, e.g. year() of a
// LocalDate attribute has Type Integer.
type AttributeRef struct {
	Path      []*metadata.Relationship
	Attribute *metadata.Attribute
	Functions []FunctionCall
	Type      ir.ValueType
}

// String renders the dotted path with functions applied,
// e.g. "toLowerCase(department.name)".
func (a AttributeRef) String() string {
	s := joinPath(a.Path, a.Attribute.Name)
	for _, fn := range a.Functions {
		if fn.Function == Substring {
			s = "substring(" + s + ", " + strconv.Itoa(fn.Start) + ", " + strconv.Itoa(fn.End) + ")"
			continue
		}
		s = string(fn.Function) + "(" + s + ")"
	}
	return s
}

// RelationshipRef is a resolved chain of one or more relationships.
type RelationshipRef struct {
	Path []*metadata.Relationship
}

// Target returns the class reached at the end of the chain.
func (r RelationshipRef) Target() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1].Target
}

func (r RelationshipRef) String() string {
	return joinPath(r.Path, "")
}

// And is satisfied when every child is. Children are never And nodes
// themselves and there are at least two.
type And struct {
	Children []Operation
}

func (And) operationNode() {}

func (o And) String() string { return "And[" + joinOps(o.Children) + "]" }

// Or is satisfied when any child is. Children are never Or nodes
// themselves and there are at least two.
type Or struct {
	Children []Operation
}

func (Or) operationNode() {}

func (o Or) String() string { return "Or[" + joinOps(o.Children) + "]" }

// All is satisfied by every row. It is the identity of And.
type All struct{}

func (All) operationNode() {}

func (All) String() string { return "All" }

// None is satisfied by no row. It is the identity of Or and absorbs And.
type None struct{}

func (None) operationNode() {}

func (None) String() string { return "None" }

// Compare tests an attribute against one scalar value with eq, notEq or a
// range operator.
type Compare struct {
	Attribute AttributeRef
	Operator  Operator
	Value     ir.Value
}

func (Compare) operationNode() {}

func (o Compare) String() string {
	return "Compare(" + o.Attribute.String() + " " + string(o.Operator) + " " + ir.Format(o.Value) + ")"
}

// SetMembership tests an attribute against a list with in, notIn or
// wildCardIn. The list keeps source order and duplicates.
type SetMembership struct {
	Attribute AttributeRef
	Operator  Operator
	Values    ir.List
}

func (SetMembership) operationNode() {}

func (o SetMembership) String() string {
	return "SetMembership(" + o.Attribute.String() + " " + string(o.Operator) + " " + ir.Format(o.Values) + ")"
}

// StringPattern tests a String attribute against a substring or wildcard
// pattern. Wildcard patterns use * for any run and ? for one character.
type StringPattern struct {
	Attribute AttributeRef
	Operator  Operator
	Pattern   string
}

func (StringPattern) operationNode() {}

func (o StringPattern) String() string {
	return "StringPattern(" + o.Attribute.String() + " " + string(o.Operator) + " " + ir.Format(ir.String(o.Pattern)) + ")"
}

// Null tests an attribute for null (IsNull) or non-null.
type Null struct {
	Attribute AttributeRef
	IsNull    bool
}

func (Null) operationNode() {}

func (o Null) String() string {
	op := IsNotNull
	if o.IsNull {
		op = IsNull
	}
	return "Null(" + o.Attribute.String() + " " + string(op) + ")"
}

// Exists is satisfied when the relationship reaches at least one row
// matching Operation (or, when Negated, none). Operation is evaluated
// against the relationship's target class and is All when no nested
// predicate was given.
type Exists struct {
	Relationship RelationshipRef
	Operation    Operation
	Negated      bool
}

func (Exists) operationNode() {}

func (o Exists) String() string {
	name := "Exists"
	if o.Negated {
		name = "NotExists"
	}
	return name + "(" + o.Relationship.String() + ", " + o.Operation.String() + ")"
}

// EdgePointEquals scopes an as-of attribute to its edge point, the
// latest-state marker of a bitemporal timeline.
type EdgePointEquals struct {
	Attribute AttributeRef
}

func (EdgePointEquals) operationNode() {}

func (o EdgePointEquals) String() string {
	return "EdgePointEquals(" + o.Attribute.String() + ")"
}

func joinOps(ops []Operation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}

func joinPath(path []*metadata.Relationship, last string) string {
	parts := make([]string, 0, len(path)+1)
	for _, rel := range path {
		parts = append(parts, rel.Name)
	}
	if last != "" {
		parts = append(parts, last)
	}
	return strings.Join(parts, ".")
}
