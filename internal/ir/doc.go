// Package ir provides the typed value model shared by the operation compiler.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the value model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Every value has exactly one ValueType, fixed for its lifetime
//   - Null is an explicit sentinel, never a nil interface
//   - Lists carry their element type so empty lists stay typed
//   - Canonical JSON never contains floats (floating values encode as strings)
package ir
