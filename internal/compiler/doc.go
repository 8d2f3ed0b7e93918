// Package compiler turns a parse tree into a typed operation.Operation.
//
// Compilation is a single depth-first pass over one compilation unit:
//
//  1. Attributes resolve against metadata, one path segment at a time,
//     with the class scope changing at every relationship hop.
//  2. Literals compile to typed values for the attribute's declared type
//     and the operator's expected cardinality (scalar or list).
//  3. The operator dispatch table maps (value type, operator) to the
//     node constructor, rejecting combinations the type does not support.
//  4. And/Or/Exists fold their compiled children.
//
// The first error aborts compilation; no partial Operation is ever returned.
// A Compiler holds no mutable state and may be shared between goroutines as
// long as its metadata.Provider is safe for concurrent reads.
package compiler
