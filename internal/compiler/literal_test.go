package compiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/operation"
	"github.com/roach88/opql/internal/parsetree"
)

func TestCompileLiteralScalars(t *testing.T) {
	tests := []struct {
		name string
		typ  ir.ValueType
		lit  parsetree.Literal
		want ir.Value
	}{
		{"string", ir.TypeString, str("ACTIVE"), ir.String("ACTIVE")},
		{"string escapes", ir.TypeString, parsetree.Scalar(parsetree.KindString, `"a\tb\"cé"`), ir.String("a\tb\"cé")},
		{"empty string", ir.TypeString, parsetree.Scalar(parsetree.KindString, `""`), ir.String("")},
		{"unicode escape", ir.TypeString, parsetree.Scalar(parsetree.KindString, `"caf\u00e9"`), ir.String("café")},
		{"surrogate pair", ir.TypeString, parsetree.Scalar(parsetree.KindString, `"\uD83D\uDE00!"`), ir.String("😀!")},
		{"lone surrogate", ir.TypeString, parsetree.Scalar(parsetree.KindString, `"\uD83Dx"`), ir.String("\uFFFDx")},
		{"boolean", ir.TypeBoolean, parsetree.Scalar(parsetree.KindBoolean, "false"), ir.Boolean(false)},
		{"character", ir.TypeCharacter, parsetree.Scalar(parsetree.KindCharacter, "'x'"), ir.Character('x')},
		{"escaped character", ir.TypeCharacter, parsetree.Scalar(parsetree.KindCharacter, `'\''`), ir.Character('\'')},
		{"integer", ir.TypeInteger, num("-42"), ir.Integer(-42)},
		{"long", ir.TypeLong, num("9000000000"), ir.Long(9000000000)},
		{"long suffix", ir.TypeLong, num("7L"), ir.Long(7)},
		{"float", ir.TypeFloat, parsetree.Scalar(parsetree.KindFloatingPoint, "1.5f"), ir.Float(1.5)},
		{"double", ir.TypeDouble, parsetree.Scalar(parsetree.KindFloatingPoint, "2e3"), ir.Double(2000)},
		{
			"instant", ir.TypeInstant, str("2024-03-01T12:30:00+02:00"),
			ir.NewInstant(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)),
		},
		{
			"as-of compiles as instant", ir.TypeAsOf, str("2024-03-01T00:00:00Z"),
			ir.NewInstant(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		},
		{"local date", ir.TypeLocalDate, str("2024-02-29"), ir.LocalDate{Year: 2024, Month: time.February, Day: 29}},
		{"null", ir.TypeInteger, parsetree.Scalar(parsetree.KindNull, "null"), ir.Null{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompileLiteral(tt.lit, tt.typ, operation.One)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileLiteralRejects(t *testing.T) {
	tests := []struct {
		name string
		typ  ir.ValueType
		lit  parsetree.Literal
	}{
		{"integer for string", ir.TypeString, num("3")},
		{"string for integer", ir.TypeInteger, str("3")},
		{"integer overflow", ir.TypeInteger, num("2147483648")},
		{"long for integer", ir.TypeInteger, num("7L")},
		{"double suffix", ir.TypeLong, num("7LL")},
		{"integer for double", ir.TypeDouble, num("3")},
		{"two characters", ir.TypeCharacter, parsetree.Scalar(parsetree.KindCharacter, "'ab'")},
		{"string for character", ir.TypeCharacter, str("a")},
		{"bad escape", ir.TypeString, parsetree.Scalar(parsetree.KindString, `"\q"`)},
		{"short unicode escape", ir.TypeString, parsetree.Scalar(parsetree.KindString, `"\u00"`)},
		{"bad instant", ir.TypeInstant, str("yesterday")},
		{"bad date", ir.TypeLocalDate, str("2023-02-29")},
		{"boolean for string", ir.TypeString, parsetree.Scalar(parsetree.KindBoolean, "true")},
		{"list for scalar", ir.TypeString, parsetree.ListOf(str("a"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileLiteral(tt.lit, tt.typ, operation.One)
			require.Error(t, err)
			assert.True(t, IsTypeError(err), "got %T", err)
		})
	}
}

func TestCompileLiteralLists(t *testing.T) {
	got, err := CompileLiteral(parsetree.ListOf(num("3"), num("1"), num("3")), ir.TypeInteger, operation.Many)
	require.NoError(t, err)
	assert.Equal(t, ir.List{Elem: ir.TypeInteger, Values: []ir.Value{ir.Integer(3), ir.Integer(1), ir.Integer(3)}}, got,
		"order and duplicates are preserved")

	got, err = CompileLiteral(parsetree.ListOf(), ir.TypeString, operation.Many)
	require.NoError(t, err)
	assert.Equal(t, ir.List{Elem: ir.TypeString, Values: []ir.Value{}}, got)

	got, err = CompileLiteral(parsetree.ListOf(str("2024-01-01T00:00:00Z")), ir.TypeAsOf, operation.Many)
	require.NoError(t, err)
	assert.Equal(t, ir.TypeInstant, got.(ir.List).Elem)

	_, err = CompileLiteral(str("east"), ir.TypeString, operation.Many)
	assert.True(t, IsTypeError(err))

	_, err = CompileLiteral(parsetree.ListOf(num("1"), str("2")), ir.TypeInteger, operation.Many)
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Integer", te.Expected)
	assert.Equal(t, `"2"`, te.Found)

	_, err = CompileLiteral(parsetree.ListOf(parsetree.Scalar(parsetree.KindNull, "null")), ir.TypeInteger, operation.Many)
	assert.True(t, IsTypeError(err), "null is not a list element")
}

func TestCompileLiteralQuotedStrings(t *testing.T) {
	for _, s := range []string{"", "plain", "tab\tand\nnewline", `quote " and \ backslash`, "bell\a vt\v nul\x00 del\x7f", "smile 😀", "é"} {
		t.Run(s, func(t *testing.T) {
			got, err := CompileLiteral(parsetree.Scalar(parsetree.KindString, parsetree.QuoteString(s)), ir.TypeString, operation.One)
			require.NoError(t, err)
			assert.Equal(t, ir.String(s), got)
		})
	}
}
