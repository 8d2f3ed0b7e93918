package parsetree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed serialized tree.
type DecodeError struct {
	Line    int
	Column  int
	Message string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func decodeErr(n *yaml.Node, format string, args ...any) error {
	e := &DecodeError{Message: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

// Decode reads one YAML document holding a serialized compilation unit:
//
//	class: Employee
//	operation:
//	  and:
//	    - binary: {attribute: age, operator: greaterThan, literal: 18}
//	    - binary: {attribute: age, operator: lessThan, literal: 65}
func Decode(r io.Reader) (CompilationUnit, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return CompilationUnit{}, &DecodeError{Message: "empty document"}
		}
		return CompilationUnit{}, fmt.Errorf("parsing tree: %w", err)
	}
	var unit CompilationUnit
	if err := unit.UnmarshalYAML(&doc); err != nil {
		return CompilationUnit{}, err
	}
	return unit, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (CompilationUnit, error) {
	return Decode(bytes.NewReader(data))
}

// UnmarshalYAML implements yaml.Unmarshaler so compilation units can be
// embedded in larger documents such as test scenarios.
func (u *CompilationUnit) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) > 0 {
		value = value.Content[0]
	}
	if value.Kind != yaml.MappingNode {
		return decodeErr(value, "compilation unit must be a mapping")
	}
	fields, err := mappingFields(value, "class", "operation")
	if err != nil {
		return err
	}
	classNode, ok := fields["class"]
	if !ok || classNode.Value == "" {
		return decodeErr(value, "compilation unit requires class")
	}
	opNode, ok := fields["operation"]
	if !ok {
		return decodeErr(value, "compilation unit requires operation")
	}
	op, err := DecodeNode(opNode)
	if err != nil {
		return err
	}
	u.Class = classNode.Value
	u.Operation = op
	return nil
}

// DecodeNode decodes a single serialized operation node.
// A node is a one-key mapping naming its kind, or the scalars all/none.
func DecodeNode(n *yaml.Node) (Node, error) {
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "all":
			return All{}, nil
		case "none":
			return None{}, nil
		}
		return nil, decodeErr(n, "unknown operation %q", n.Value)
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, decodeErr(n, "operation must be a one-key mapping")
	}
	key, body := n.Content[0], n.Content[1]

	switch key.Value {
	case "and", "or":
		operands, source, err := decodeOperands(body)
		if err != nil {
			return nil, err
		}
		if key.Value == "and" {
			return And{Operands: operands, Source: source}, nil
		}
		return Or{Operands: operands, Source: source}, nil
	case "group":
		inner, err := DecodeNode(body)
		if err != nil {
			return nil, err
		}
		return Group{Operation: inner}, nil
	case "all":
		return All{Source: optionalSource(body)}, nil
	case "none":
		return None{Source: optionalSource(body)}, nil
	case "unary":
		return decodeUnary(body)
	case "binary":
		return decodeBinary(body)
	case "exists":
		return decodeExists(body)
	default:
		return nil, decodeErr(key, "unknown operation %q", key.Value)
	}
}

func decodeOperands(body *yaml.Node) ([]Node, string, error) {
	seq := body
	var source string
	if body.Kind == yaml.MappingNode {
		fields, err := mappingFields(body, "operands", "source")
		if err != nil {
			return nil, "", err
		}
		seq = fields["operands"]
		if seq == nil {
			return nil, "", decodeErr(body, "operands are required")
		}
		if s, ok := fields["source"]; ok {
			source = s.Value
		}
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, "", decodeErr(seq, "operands must be a sequence")
	}
	if len(seq.Content) == 0 {
		return nil, "", decodeErr(seq, "at least one operand is required")
	}
	operands := make([]Node, 0, len(seq.Content))
	for _, item := range seq.Content {
		op, err := DecodeNode(item)
		if err != nil {
			return nil, "", err
		}
		operands = append(operands, op)
	}
	return operands, source, nil
}

func decodeUnary(body *yaml.Node) (Node, error) {
	fields, err := mappingFields(body, "attribute", "operator", "source")
	if err != nil {
		return nil, err
	}
	attr, op, err := attributeAndOperator(body, fields)
	if err != nil {
		return nil, err
	}
	return UnaryOperatorApplication{Attribute: attr, Operator: op, Source: scalarValue(fields["source"])}, nil
}

func decodeBinary(body *yaml.Node) (Node, error) {
	fields, err := mappingFields(body, "attribute", "operator", "literal", "source")
	if err != nil {
		return nil, err
	}
	attr, op, err := attributeAndOperator(body, fields)
	if err != nil {
		return nil, err
	}
	litNode, ok := fields["literal"]
	if !ok {
		return nil, decodeErr(body, "binary operation requires literal")
	}
	lit, err := DecodeLiteral(litNode)
	if err != nil {
		return nil, err
	}
	return BinaryOperatorApplication{Attribute: attr, Operator: op, Literal: lit, Source: scalarValue(fields["source"])}, nil
}

func decodeExists(body *yaml.Node) (Node, error) {
	fields, err := mappingFields(body, "navigation", "operator", "operation", "source")
	if err != nil {
		return nil, err
	}
	navNode, ok := fields["navigation"]
	if !ok {
		return nil, decodeErr(body, "exists requires navigation")
	}
	nav, err := DecodeAttribute(navNode)
	if err != nil {
		return nil, err
	}
	exists := ExistsApplication{Navigation: nav, Operator: "exists", Source: scalarValue(fields["source"])}
	if opNode, ok := fields["operator"]; ok {
		exists.Operator = opNode.Value
	}
	if inner, ok := fields["operation"]; ok {
		if exists.Operation, err = DecodeNode(inner); err != nil {
			return nil, err
		}
	}
	return exists, nil
}

func attributeAndOperator(body *yaml.Node, fields map[string]*yaml.Node) (Attribute, string, error) {
	attrNode, ok := fields["attribute"]
	if !ok {
		return Attribute{}, "", decodeErr(body, "attribute is required")
	}
	opNode, ok := fields["operator"]
	if !ok || opNode.Value == "" {
		return Attribute{}, "", decodeErr(body, "operator is required")
	}
	attr, err := DecodeAttribute(attrNode)
	if err != nil {
		return Attribute{}, "", err
	}
	return attr, opNode.Value, nil
}

// DecodeAttribute decodes either the shorthand string form
// ("this.department.name", "toLowerCase(name)", "substring(name, 0, 3)")
// or a mapping {class, path, functions}.
func DecodeAttribute(n *yaml.Node) (Attribute, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		attr, err := ParseAttribute(n.Value)
		if err != nil {
			return Attribute{}, decodeErr(n, "%v", err)
		}
		return attr, nil
	case yaml.MappingNode:
		var raw struct {
			Class     string   `yaml:"class"`
			Path      []string `yaml:"path"`
			Functions []struct {
				Name string   `yaml:"name"`
				Args []string `yaml:"args"`
			} `yaml:"functions"`
		}
		if err := n.Decode(&raw); err != nil {
			return Attribute{}, decodeErr(n, "attribute: %v", err)
		}
		if len(raw.Path) == 0 {
			return Attribute{}, decodeErr(n, "attribute path is required")
		}
		attr := Attribute{Class: raw.Class, Path: raw.Path}
		for _, fn := range raw.Functions {
			attr.Functions = append(attr.Functions, FunctionCall{Name: fn.Name, Args: fn.Args})
		}
		return attr, nil
	default:
		return Attribute{}, decodeErr(n, "attribute must be a string or mapping")
	}
}

// ParseAttribute parses the shorthand attribute form. A leading segment of
// "this" or a capitalized name is taken as the class qualifier.
func ParseAttribute(s string) (Attribute, error) {
	s = strings.TrimSpace(s)
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		name := strings.TrimSpace(s[:open])
		args := splitArgs(s[open+1 : len(s)-1])
		if len(args) == 0 || args[0] == "" {
			return Attribute{}, fmt.Errorf("function %s requires an attribute argument", name)
		}
		inner, err := ParseAttribute(args[0])
		if err != nil {
			return Attribute{}, err
		}
		inner.Functions = append(inner.Functions, FunctionCall{Name: name, Args: args[1:]})
		return inner, nil
	}

	if s == "" {
		return Attribute{}, fmt.Errorf("empty attribute")
	}
	segments := strings.Split(s, ".")
	for _, seg := range segments {
		if seg == "" {
			return Attribute{}, fmt.Errorf("malformed attribute path %q", s)
		}
	}
	var attr Attribute
	if first := segments[0]; len(segments) > 1 && (first == "this" || unicode.IsUpper([]rune(first)[0])) {
		attr.Class = first
		segments = segments[1:]
	}
	attr.Path = segments
	return attr, nil
}

// splitArgs splits a comma-separated argument list at the top nesting level.
func splitArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

var (
	integerToken = regexp.MustCompile(`^[+-]?[0-9]+[lL]?$`)
	floatToken   = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)([eE][+-]?[0-9]+)?[fFdD]?$`)
)

// DecodeLiteral decodes a literal. Plain scalars are raw tokens whose kind
// is inferred; quoted YAML scalars are string literals; sequences are list
// literals; mappings give {kind, token} or {kind, list} explicitly.
func DecodeLiteral(n *yaml.Node) (Literal, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarLiteral(n, 0)
	case yaml.SequenceNode:
		return listLiteral(n.Content, 0)
	case yaml.MappingNode:
		fields, err := mappingFields(n, "kind", "token", "list")
		if err != nil {
			return Literal{}, err
		}
		var kind LiteralKind
		if kn, ok := fields["kind"]; ok {
			if kind, ok = ParseLiteralKind(kn.Value); !ok {
				return Literal{}, decodeErr(kn, "unknown literal kind %q", kn.Value)
			}
		}
		if ln, ok := fields["list"]; ok {
			if ln.Kind != yaml.SequenceNode {
				return Literal{}, decodeErr(ln, "list must be a sequence")
			}
			return listLiteral(ln.Content, kind)
		}
		tn, ok := fields["token"]
		if !ok {
			if kind == KindNull {
				return Scalar(KindNull, "null"), nil
			}
			return Literal{}, decodeErr(n, "literal requires token or list")
		}
		if kind == 0 {
			return inferLiteral(tn, tn.Value)
		}
		return Scalar(kind, tn.Value), nil
	default:
		return Literal{}, decodeErr(n, "unsupported literal")
	}
}

func listLiteral(items []*yaml.Node, kind LiteralKind) (Literal, error) {
	lit := Literal{Kind: kind, List: true, Elements: make([]Literal, 0, len(items))}
	for _, item := range items {
		if item.Kind != yaml.ScalarNode && item.Kind != yaml.MappingNode {
			return Literal{}, decodeErr(item, "list elements must be scalars")
		}
		var (
			elem Literal
			err  error
		)
		if item.Kind == yaml.MappingNode {
			elem, err = DecodeLiteral(item)
		} else {
			elem, err = scalarLiteral(item, kind)
		}
		if err != nil {
			return Literal{}, err
		}
		if elem.List {
			return Literal{}, decodeErr(item, "nested list literals are not allowed")
		}
		lit.Elements = append(lit.Elements, elem)
	}
	if lit.Kind == 0 && len(lit.Elements) > 0 {
		lit.Kind = lit.Elements[0].Kind
	}
	return lit, nil
}

func scalarLiteral(n *yaml.Node, kind LiteralKind) (Literal, error) {
	if kind != 0 {
		return Scalar(kind, n.Value), nil
	}
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return Scalar(KindString, QuoteString(n.Value)), nil
	}
	return inferLiteral(n, n.Value)
}

// inferLiteral classifies a raw token the way the lexer would.
func inferLiteral(n *yaml.Node, tok string) (Literal, error) {
	switch {
	case tok == "null" || tok == "~" || tok == "":
		return Scalar(KindNull, "null"), nil
	case tok == "true" || tok == "false":
		return Scalar(KindBoolean, tok), nil
	case strings.HasPrefix(tok, `"`):
		return Scalar(KindString, tok), nil
	case strings.HasPrefix(tok, "'"):
		return Scalar(KindCharacter, tok), nil
	case integerToken.MatchString(tok):
		return Scalar(KindInteger, tok), nil
	case floatToken.MatchString(tok):
		return Scalar(KindFloatingPoint, tok), nil
	default:
		return Literal{}, decodeErr(n, "cannot infer literal kind of %q", tok)
	}
}

// mappingFields indexes a mapping's values by key, rejecting unknown keys.
func mappingFields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, decodeErr(n, "expected a mapping")
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		known := false
		for _, a := range allowed {
			if k.Value == a {
				known = true
				break
			}
		}
		if !known {
			return nil, decodeErr(k, "unknown field %q (allowed: %s)", k.Value, strings.Join(allowed, ", "))
		}
		fields[k.Value] = n.Content[i+1]
	}
	return fields, nil
}

func optionalSource(body *yaml.Node) string {
	if body.Kind != yaml.MappingNode {
		return ""
	}
	fields, err := mappingFields(body, "source")
	if err != nil {
		return ""
	}
	return scalarValue(fields["source"])
}

func scalarValue(n *yaml.Node) string {
	if n == nil {
		return ""
	}
	return n.Value
}
