package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType identifies the statically declared type of an attribute or literal.
type ValueType int

const (
	TypeString ValueType = iota + 1
	TypeBoolean
	TypeCharacter
	TypeInteger
	TypeLong
	TypeFloat
	TypeDouble
	TypeInstant
	TypeLocalDate

	// TypeAsOf marks a temporal edge attribute used to scope a query to a
	// bitemporal point. Its literal form is an Instant.
	TypeAsOf
)

var valueTypeNames = map[ValueType]string{
	TypeString:    "String",
	TypeBoolean:   "Boolean",
	TypeCharacter: "Character",
	TypeInteger:   "Integer",
	TypeLong:      "Long",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeInstant:   "Instant",
	TypeLocalDate: "LocalDate",
	TypeAsOf:      "AsOf",
}

// AllValueTypes returns every ValueType in declaration order.
func AllValueTypes() []ValueType {
	return []ValueType{
		TypeString, TypeBoolean, TypeCharacter, TypeInteger, TypeLong,
		TypeFloat, TypeDouble, TypeInstant, TypeLocalDate, TypeAsOf,
	}
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ParseValueType resolves a type name as written in schema files.
// Matching is exact ("Long", not "long").
func ParseValueType(name string) (ValueType, error) {
	for t, n := range valueTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown value type %q", name)
}

// Numeric reports whether the type is Integer, Long, Float or Double.
func (t ValueType) Numeric() bool {
	switch t {
	case TypeInteger, TypeLong, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// Temporal reports whether the type is Instant, LocalDate or AsOf.
func (t ValueType) Temporal() bool {
	switch t {
	case TypeInstant, TypeLocalDate, TypeAsOf:
		return true
	}
	return false
}

// Ordered reports whether values of the type support range comparison.
// AsOf is temporal but only supports edge-point equality.
func (t ValueType) Ordered() bool {
	return t.Numeric() || t == TypeInstant || t == TypeLocalDate || t == TypeString
}

// Value is a sealed interface representing typed literal values.
// Only the types in this file implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null is the explicit null literal.
type Null struct{}

func (Null) irValue() {}

// String is a String value.
type String string

func (String) irValue() {}

// Boolean is a Boolean value.
type Boolean bool

func (Boolean) irValue() {}

// Character is a single Unicode code point.
type Character rune

func (Character) irValue() {}

// Integer is a 32-bit signed integer.
type Integer int32

func (Integer) irValue() {}

// Long is a 64-bit signed integer.
type Long int64

func (Long) irValue() {}

// Float is a 32-bit floating point number.
type Float float32

func (Float) irValue() {}

// Double is a 64-bit floating point number.
type Double float64

func (Double) irValue() {}

// Instant is a point on the UTC timeline.
type Instant struct {
	time.Time
}

func (Instant) irValue() {}

// NewInstant normalizes t to UTC so equal instants compare equal.
func NewInstant(t time.Time) Instant {
	return Instant{Time: t.UTC()}
}

// LocalDate is a calendar date without time zone.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

func (LocalDate) irValue() {}

// String returns the ISO-8601 form (YYYY-MM-DD).
func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC at the start of the date.
func (d LocalDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// List is an ordered list of values sharing one element type.
// Source order and duplicates are preserved.
type List struct {
	Elem   ValueType
	Values []Value
}

func (List) irValue() {}

// TypeOf returns the ValueType of a scalar value.
// Returns false for Null and List.
func TypeOf(v Value) (ValueType, bool) {
	switch v.(type) {
	case String:
		return TypeString, true
	case Boolean:
		return TypeBoolean, true
	case Character:
		return TypeCharacter, true
	case Integer:
		return TypeInteger, true
	case Long:
		return TypeLong, true
	case Float:
		return TypeFloat, true
	case Double:
		return TypeDouble, true
	case Instant:
		return TypeInstant, true
	case LocalDate:
		return TypeLocalDate, true
	default:
		return 0, false
	}
}

// InstantLayout is the layout used to render instants.
const InstantLayout = "2006-01-02T15:04:05.000Z07:00"

// Format renders a value the way it would appear as a literal token.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return strconv.Quote(string(val))
	case Boolean:
		return strconv.FormatBool(bool(val))
	case Character:
		return strconv.QuoteRune(rune(val))
	case Integer:
		return strconv.FormatInt(int64(val), 10)
	case Long:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return formatFloat(float64(val), 32)
	case Double:
		return formatFloat(float64(val), 64)
	case Instant:
		return strconv.Quote(val.UTC().Format(InstantLayout))
	case LocalDate:
		return strconv.Quote(val.String())
	case List:
		parts := make([]string, len(val.Values))
		for i, elem := range val.Values {
			parts[i] = Format(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatFloat always keeps a decimal point so floating values stay
// distinguishable from integers in rendered output.
func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
