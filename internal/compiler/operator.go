package compiler

import (
	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/operation"
)

// binaryHandler builds the operation for a binary operator whose operand
// already compiled to the attribute's literal type.
type binaryHandler func(attr operation.AttributeRef, op operation.Operator, value ir.Value) operation.Operation

// unaryHandler builds the operation for an operand-less operator.
type unaryHandler func(attr operation.AttributeRef, op operation.Operator) operation.Operation

type dispatchKey struct {
	Type     ir.ValueType
	Operator operation.Operator
}

var (
	binaryDispatch = buildBinaryDispatch()
	unaryDispatch  = buildUnaryDispatch()
)

func compare(attr operation.AttributeRef, op operation.Operator, value ir.Value) operation.Operation {
	return operation.Compare{Attribute: attr, Operator: op, Value: value}
}

func membership(attr operation.AttributeRef, op operation.Operator, value ir.Value) operation.Operation {
	return operation.SetMembership{Attribute: attr, Operator: op, Values: value.(ir.List)}
}

func pattern(attr operation.AttributeRef, op operation.Operator, value ir.Value) operation.Operation {
	return operation.StringPattern{Attribute: attr, Operator: op, Pattern: string(value.(ir.String))}
}

func nullCheck(attr operation.AttributeRef, op operation.Operator) operation.Operation {
	return operation.Null{Attribute: attr, IsNull: op == operation.IsNull}
}

func edgePoint(attr operation.AttributeRef, _ operation.Operator) operation.Operation {
	return operation.EdgePointEquals{Attribute: attr}
}

// buildBinaryDispatch realizes the operator applicability table:
//   - every scalar type: eq, notEq, in, notIn
//   - ordered types (numeric, Instant, LocalDate, String): range operators
//   - String: substring patterns, wildcards, wildCardIn
//   - AsOf: eq only
func buildBinaryDispatch() map[dispatchKey]binaryHandler {
	table := make(map[dispatchKey]binaryHandler)
	for _, t := range ir.AllValueTypes() {
		if t == ir.TypeAsOf {
			table[dispatchKey{t, operation.Eq}] = compare
			continue
		}
		table[dispatchKey{t, operation.Eq}] = compare
		table[dispatchKey{t, operation.NotEq}] = compare
		table[dispatchKey{t, operation.In}] = membership
		table[dispatchKey{t, operation.NotIn}] = membership
		if t.Ordered() {
			for _, op := range []operation.Operator{
				operation.GreaterThan, operation.GreaterThanEquals,
				operation.LessThan, operation.LessThanEquals,
			} {
				table[dispatchKey{t, op}] = compare
			}
		}
	}
	for _, op := range []operation.Operator{
		operation.StartsWith, operation.NotStartsWith,
		operation.EndsWith, operation.NotEndsWith,
		operation.Contains, operation.NotContains,
		operation.WildCardEquals, operation.WildCardNotEquals,
	} {
		table[dispatchKey{ir.TypeString, op}] = pattern
	}
	table[dispatchKey{ir.TypeString, operation.WildCardIn}] = membership
	return table
}

// buildUnaryDispatch: isNull/isNotNull on every scalar type, equalsEdgePoint
// on AsOf only.
func buildUnaryDispatch() map[dispatchKey]unaryHandler {
	table := make(map[dispatchKey]unaryHandler)
	for _, t := range ir.AllValueTypes() {
		if t == ir.TypeAsOf {
			table[dispatchKey{t, operation.EqualsEdgePoint}] = edgePoint
			continue
		}
		table[dispatchKey{t, operation.IsNull}] = nullCheck
		table[dispatchKey{t, operation.IsNotNull}] = nullCheck
	}
	return table
}

// Supports reports whether the operator is implemented for the value type.
func Supports(t ir.ValueType, op operation.Operator) bool {
	key := dispatchKey{t, op}
	if _, ok := binaryDispatch[key]; ok {
		return true
	}
	_, ok := unaryDispatch[key]
	return ok
}

// compileBinary applies a binary operator to a compiled operand. A null
// operand needs a type with null checks; eq and notEq then become
// Null(isNull) / Null(isNotNull) and any other operator is a type error.
func compileBinary(attr operation.AttributeRef, op operation.Operator, value ir.Value) (operation.Operation, error) {
	if _, isNull := value.(ir.Null); isNull {
		if !Supports(attr.Type, operation.IsNull) {
			return nil, unsupported(attr, string(op))
		}
		switch op {
		case operation.Eq:
			return operation.Null{Attribute: attr, IsNull: true}, nil
		case operation.NotEq:
			return operation.Null{Attribute: attr, IsNull: false}, nil
		}
		if !Supports(attr.Type, op) {
			return nil, unsupported(attr, string(op))
		}
		return nil, &TypeError{Expected: literalType(attr.Type).String(), Found: "null"}
	}

	handler, ok := binaryDispatch[dispatchKey{attr.Type, op}]
	if !ok {
		return nil, unsupported(attr, string(op))
	}
	return handler(attr, op, value), nil
}

func compileUnary(attr operation.AttributeRef, op operation.Operator) (operation.Operation, error) {
	handler, ok := unaryDispatch[dispatchKey{attr.Type, op}]
	if !ok {
		return nil, unsupported(attr, string(op))
	}
	return handler(attr, op), nil
}

func unsupported(attr operation.AttributeRef, op string) error {
	return &UnsupportedOperatorError{Operator: op, Attribute: attr.String(), Type: attr.Type}
}
