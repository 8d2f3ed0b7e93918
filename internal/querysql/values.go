package querysql

import (
	"fmt"

	"github.com/roach88/opql/internal/ir"
)

// SQLValue converts a compiled value to a SQLite parameter.
// Instants bind as fixed-width UTC text (ir.InstantLayout), so text order
// matches time order. Dates bind as YYYY-MM-DD; characters as one-rune strings.
func SQLValue(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Boolean:
		return bool(val), nil
	case ir.Character:
		return string(rune(val)), nil
	case ir.Integer:
		return int64(val), nil
	case ir.Long:
		return int64(val), nil
	case ir.Float:
		return float64(val), nil
	case ir.Double:
		return float64(val), nil
	case ir.Instant:
		return val.UTC().Format(ir.InstantLayout), nil
	case ir.LocalDate:
		return val.String(), nil
	case ir.Null:
		return nil, nil
	case ir.List:
		return nil, fmt.Errorf("list cannot be used as a single SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
