package compiler

import "github.com/roach88/opql/internal/operation"

// composeAnd folds compiled operands into one conjunction. Nested Ands are
// flattened, All operands drop out, and any None makes the whole
// conjunction None. Zero remaining operands give All; one gives itself.
// Operand order is preserved.
func composeAnd(operands []operation.Operation) operation.Operation {
	children := make([]operation.Operation, 0, len(operands))
	for _, op := range operands {
		switch o := op.(type) {
		case operation.All:
			continue
		case operation.None:
			return operation.None{}
		case operation.And:
			children = append(children, o.Children...)
		default:
			children = append(children, op)
		}
	}
	switch len(children) {
	case 0:
		return operation.All{}
	case 1:
		return children[0]
	default:
		return operation.And{Children: children}
	}
}

// composeOr is the dual of composeAnd: None drops out and All absorbs.
func composeOr(operands []operation.Operation) operation.Operation {
	children := make([]operation.Operation, 0, len(operands))
	for _, op := range operands {
		switch o := op.(type) {
		case operation.None:
			continue
		case operation.All:
			return operation.All{}
		case operation.Or:
			children = append(children, o.Children...)
		default:
			children = append(children, op)
		}
	}
	switch len(children) {
	case 0:
		return operation.None{}
	case 1:
		return children[0]
	default:
		return operation.Or{Children: children}
	}
}

// composeExists wraps a nested operation for a relationship; a missing
// nested operation means any related row.
func composeExists(rel operation.RelationshipRef, nested operation.Operation, negated bool) operation.Operation {
	if nested == nil {
		nested = operation.All{}
	}
	return operation.Exists{Relationship: rel, Operation: nested, Negated: negated}
}
