// Package parsetree defines the syntax-level representation of one predicate
// compilation unit, as produced by an external parser.
//
// Nodes are plain values and are never mutated by the compiler. Serialized
// trees are read from YAML with Decode; Format renders a node back to a
// source fragment for error messages.
package parsetree
