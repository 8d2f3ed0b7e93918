package compiler

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/operation"
	"github.com/roach88/opql/internal/parsetree"
)

// scalarStrategy converts one scalar literal to a value of a fixed type.
// It reports false when the literal's kind or lexical form does not fit.
type scalarStrategy func(lit parsetree.Literal) (ir.Value, bool)

// literalStrategies holds one strategy per expected type. AsOf literals
// are Instants.
var literalStrategies = map[ir.ValueType]scalarStrategy{
	ir.TypeString:    compileString,
	ir.TypeBoolean:   compileBoolean,
	ir.TypeCharacter: compileCharacter,
	ir.TypeInteger:   compileInteger,
	ir.TypeLong:      compileLong,
	ir.TypeFloat:     compileFloat,
	ir.TypeDouble:    compileDouble,
	ir.TypeInstant:   compileInstant,
	ir.TypeLocalDate: compileLocalDate,
	ir.TypeAsOf:      compileInstant,
}

// CompileLiteral converts a literal to a typed value for an attribute of
// type t. With cardinality Many the literal must be a list and the result
// is an ir.List; with One it must be a scalar (or null, giving ir.Null).
// Nulls inside lists are rejected.
func CompileLiteral(lit parsetree.Literal, t ir.ValueType, card operation.Cardinality) (ir.Value, error) {
	strategy, ok := literalStrategies[t]
	if !ok {
		return nil, &TypeError{Expected: t.String(), Found: parsetree.FormatLiteral(lit)}
	}
	elemType := literalType(t)

	if card == operation.Many {
		if !lit.List {
			return nil, &TypeError{Expected: "list of " + elemType.String(), Found: parsetree.FormatLiteral(lit)}
		}
		values := make([]ir.Value, 0, len(lit.Elements))
		for _, elem := range lit.Elements {
			v, ok := strategy(elem)
			if !ok {
				return nil, &TypeError{Expected: elemType.String(), Found: parsetree.FormatLiteral(elem)}
			}
			values = append(values, v)
		}
		return ir.List{Elem: elemType, Values: values}, nil
	}

	if lit.List {
		return nil, &TypeError{Expected: elemType.String(), Found: parsetree.FormatLiteral(lit)}
	}
	if lit.Kind == parsetree.KindNull {
		return ir.Null{}, nil
	}
	v, ok := strategy(lit)
	if !ok {
		return nil, &TypeError{Expected: elemType.String(), Found: lit.Token}
	}
	return v, nil
}

// literalType is the type of literals compared with attributes of type t.
func literalType(t ir.ValueType) ir.ValueType {
	if t == ir.TypeAsOf {
		return ir.TypeInstant
	}
	return t
}

func compileString(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindString {
		return nil, false
	}
	s, ok := unquote(lit.Token, '"')
	if !ok {
		return nil, false
	}
	return ir.String(s), true
}

func compileBoolean(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindBoolean {
		return nil, false
	}
	switch lit.Token {
	case "true":
		return ir.Boolean(true), true
	case "false":
		return ir.Boolean(false), true
	}
	return nil, false
}

func compileCharacter(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindCharacter {
		return nil, false
	}
	s, ok := unquote(lit.Token, '\'')
	if !ok || utf8.RuneCountInString(s) != 1 {
		return nil, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return ir.Character(r), true
}

func compileInteger(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindInteger {
		return nil, false
	}
	n, err := strconv.ParseInt(lit.Token, 10, 32)
	if err != nil {
		return nil, false
	}
	return ir.Integer(n), true
}

func compileLong(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindInteger {
		return nil, false
	}
	tok := strings.TrimRight(lit.Token, "lL")
	if len(lit.Token)-len(tok) > 1 {
		return nil, false
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return nil, false
	}
	return ir.Long(n), true
}

func compileFloat(lit parsetree.Literal) (ir.Value, bool) {
	f, ok := parseFloatingPoint(lit, 32)
	if !ok {
		return nil, false
	}
	return ir.Float(f), true
}

func compileDouble(lit parsetree.Literal) (ir.Value, bool) {
	f, ok := parseFloatingPoint(lit, 64)
	if !ok {
		return nil, false
	}
	return ir.Double(f), true
}

func parseFloatingPoint(lit parsetree.Literal, bits int) (float64, bool) {
	if lit.Kind != parsetree.KindFloatingPoint {
		return 0, false
	}
	tok := strings.TrimRight(lit.Token, "fFdD")
	if len(lit.Token)-len(tok) > 1 {
		return 0, false
	}
	f, err := strconv.ParseFloat(tok, bits)
	if err != nil {
		return 0, false
	}
	return f, true
}

func compileInstant(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindString {
		return nil, false
	}
	s, ok := unquote(lit.Token, '"')
	if !ok {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, false
	}
	return ir.NewInstant(t), true
}

func compileLocalDate(lit parsetree.Literal) (ir.Value, bool) {
	if lit.Kind != parsetree.KindString {
		return nil, false
	}
	s, ok := unquote(lit.Token, '"')
	if !ok {
		return nil, false
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, false
	}
	return ir.LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
}

// unquote strips the surrounding quote characters and resolves the
// grammar's backslash escapes: \" \' \\ \n \t \r \b \f and \uXXXX.
func unquote(tok string, quote byte) (string, bool) {
	if len(tok) < 2 || tok[0] != quote || tok[len(tok)-1] != quote {
		return "", false
	}
	body := tok[1 : len(tok)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", false
		}
		switch body[i] {
		case '"', '\'', '\\':
			b.WriteByte(body[i])
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, ok := hexRune(body, i+1)
			if !ok {
				return "", false
			}
			i += 4
			if utf16.IsSurrogate(r) && i+2 < len(body) && body[i+1] == '\\' && body[i+2] == 'u' {
				if low, ok := hexRune(body, i+3); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	return b.String(), true
}

// hexRune reads the four hex digits of a \uXXXX escape starting at i.
func hexRune(s string, i int) (rune, bool) {
	if i+4 > len(s) {
		return 0, false
	}
	n, err := strconv.ParseUint(s[i:i+4], 16, 16)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
