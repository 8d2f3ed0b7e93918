package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
)

// ApplyCatalog creates a table for every class in the catalog.
// Existing tables are left alone, so it is safe to call more than once.
func (s *Store) ApplyCatalog(ctx context.Context, catalog *metadata.Catalog) error {
	for _, cls := range catalog.Classes() {
		if _, err := s.db.ExecContext(ctx, createTableSQL(cls)); err != nil {
			return fmt.Errorf("create table %s: %w", cls.Table, err)
		}
	}
	return nil
}

func createTableSQL(cls *metadata.Class) string {
	attrs := cls.Attributes()
	cols := make([]string, len(attrs))
	for i, attr := range attrs {
		col := attr.Column + " " + columnType(attr.Type)
		if attr.PrimaryKey {
			col += " PRIMARY KEY"
		}
		cols[i] = col
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", cls.Table, strings.Join(cols, ", "))
}

// columnType maps a value type to its SQLite storage class.
func columnType(t ir.ValueType) string {
	switch t {
	case ir.TypeBoolean, ir.TypeInteger, ir.TypeLong:
		return "INTEGER"
	case ir.TypeFloat, ir.TypeDouble:
		return "REAL"
	default:
		return "TEXT"
	}
}
