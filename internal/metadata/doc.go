// Package metadata describes the persistent classes a predicate can be
// compiled against: their typed attributes and navigable relationships.
//
// A Catalog is built once (from Go values or CUE schema files), validated,
// and then treated as immutable. It is safe for concurrent read access by
// any number of compilations.
package metadata
