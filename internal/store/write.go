package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
)

// Fixtures holds raw fixture rows per class name. Row keys are attribute
// names.
type Fixtures map[string][]map[string]any

// Seed inserts fixtures class by class in name order, so a failing row is
// reported the same way on every run.
func (s *Store) Seed(ctx context.Context, catalog *metadata.Catalog, fixtures Fixtures) error {
	classes := make([]string, 0, len(fixtures))
	for name := range fixtures {
		classes = append(classes, name)
	}
	sort.Strings(classes)

	for _, name := range classes {
		cls, ok := catalog.Class(name)
		if !ok {
			return fmt.Errorf("fixtures: unknown class %q", name)
		}
		for i, row := range fixtures[name] {
			if err := s.Insert(ctx, cls, row); err != nil {
				return fmt.Errorf("fixtures: %s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

// Insert writes one fixture row. Keys are attribute names; values are
// coerced to the attribute's stored representation. Attributes missing
// from row are stored as NULL.
func (s *Store) Insert(ctx context.Context, cls *metadata.Class, row map[string]any) error {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]string, 0, len(names))
	values := make([]any, 0, len(names))
	for _, name := range names {
		attr, ok := cls.Attribute(name)
		if !ok {
			return fmt.Errorf("insert %s: unknown attribute %q", cls.Name, name)
		}
		v, err := Coerce(attr.Type, row[name])
		if err != nil {
			return fmt.Errorf("insert %s.%s: %w", cls.Name, name, err)
		}
		columns = append(columns, attr.Column)
		values = append(values, v)
	}
	if len(columns) == 0 {
		return fmt.Errorf("insert %s: empty row", cls.Name)
	}

	query, args, err := sq.Insert(cls.Table).Columns(columns...).Values(values...).ToSql()
	if err != nil {
		return fmt.Errorf("insert %s: %w", cls.Name, err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", cls.Name, err)
	}
	return nil
}

// Coerce converts a raw fixture value (as decoded from YAML or JSON) to
// the stored representation of type t. nil stays nil.
func Coerce(t ir.ValueType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch t {
	case ir.TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case ir.TypeCharacter:
		if s, ok := raw.(string); ok && utf8.RuneCountInString(s) == 1 {
			return s, nil
		}
	case ir.TypeBoolean:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case ir.TypeInteger, ir.TypeLong:
		if n, ok := toInt64(raw); ok {
			if t == ir.TypeInteger && (n < math.MinInt32 || n > math.MaxInt32) {
				return nil, fmt.Errorf("%d overflows %s", n, t)
			}
			return n, nil
		}
	case ir.TypeFloat, ir.TypeDouble:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}
		if n, ok := toInt64(raw); ok {
			return float64(n), nil
		}
	case ir.TypeInstant, ir.TypeAsOf:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC().Format(ir.InstantLayout), nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", t, v, err)
			}
			return ts.UTC().Format(ir.InstantLayout), nil
		}
	case ir.TypeLocalDate:
		switch v := raw.(type) {
		case time.Time:
			return v.Format(time.DateOnly), nil
		case string:
			if _, err := time.Parse(time.DateOnly, v); err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", t, v, err)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("cannot store %T (%v) as %s", raw, raw, t)
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}
