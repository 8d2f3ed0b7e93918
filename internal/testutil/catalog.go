package testutil

import (
	_ "embed"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/parsetree"
)

// HRSchema is the CUE source of the shared Employee/Department/Project
// catalog used across package tests.
//
//go:embed hr.cue
var HRSchema string

var (
	hrOnce    sync.Once
	hrCatalog *metadata.Catalog
	hrErr     error
)

// Catalog returns the shared HR catalog. Catalogs are immutable, so a single
// instance is safely shared between tests, including parallel ones.
func Catalog(t testing.TB) *metadata.Catalog {
	t.Helper()
	hrOnce.Do(func() {
		hrCatalog, hrErr = metadata.ParseSchema([]byte(HRSchema), "hr.cue")
	})
	require.NoError(t, hrErr)
	return hrCatalog
}

// Class returns a class from the shared HR catalog.
func Class(t testing.TB, name string) *metadata.Class {
	t.Helper()
	cls, ok := Catalog(t).Class(name)
	require.True(t, ok, "class %s", name)
	return cls
}

// Attribute returns an attribute from the shared HR catalog.
func Attribute(t testing.TB, class, name string) *metadata.Attribute {
	t.Helper()
	attr, ok := Class(t, class).Attribute(name)
	require.True(t, ok, "attribute %s.%s", class, name)
	return attr
}

// Relationship returns a relationship from the shared HR catalog.
func Relationship(t testing.TB, class, name string) *metadata.Relationship {
	t.Helper()
	rel, ok := Class(t, class).Relationship(name)
	require.True(t, ok, "relationship %s.%s", class, name)
	return rel
}

// Unit decodes a serialized compilation unit.
func Unit(t testing.TB, src string) parsetree.CompilationUnit {
	t.Helper()
	unit, err := parsetree.DecodeBytes([]byte(src))
	require.NoError(t, err)
	return unit
}
