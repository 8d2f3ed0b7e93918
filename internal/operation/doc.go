// Package operation defines the compiled predicate tree ("Operation") that
// the compiler produces and persistence adapters consume.
//
// ARCHITECTURE:
//
//	[parse tree] → [compiler] → [Operation] → [querysql / other finders]
//
// The Operation is the contract between the compiler and every consumer.
// It is typed: each leaf carries a resolved metadata attribute and a
// literal whose ValueType matches that attribute.
//
// SEALED INTERFACE:
//
// Operation is sealed with a marker method. Only the types in this package
// implement it, so consumers can switch exhaustively:
//
//	switch op := op.(type) {
//	case operation.And:
//	case operation.Or:
//	case operation.All:
//	case operation.None:
//	case operation.Compare:
//	case operation.SetMembership:
//	case operation.StringPattern:
//	case operation.Null:
//	case operation.Exists:
//	case operation.EdgePointEquals:
//	}
//
// Operations are immutable values. The compiler never mutates a completed
// tree, and consumers must not either.
package operation
