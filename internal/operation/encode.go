package operation

import (
	"fmt"

	"github.com/roach88/opql/internal/ir"
)

// Encode converts an operation tree to the canonical map form accepted by
// ir.MarshalCanonical.
func Encode(op Operation) (map[string]any, error) {
	switch o := op.(type) {
	case And:
		children, err := encodeChildren(o.Children)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "and", "children": children}, nil
	case Or:
		children, err := encodeChildren(o.Children)
		if err != nil {
			return nil, err
		}
		return map[string]any{"kind": "or", "children": children}, nil
	case All:
		return map[string]any{"kind": "all"}, nil
	case None:
		return map[string]any{"kind": "none"}, nil
	case Compare:
		value, err := ir.EncodeValue(o.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":      "compare",
			"attribute": encodeAttribute(o.Attribute),
			"operator":  string(o.Operator),
			"value":     value,
		}, nil
	case SetMembership:
		values, err := ir.EncodeValue(o.Values)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":      "setMembership",
			"attribute": encodeAttribute(o.Attribute),
			"operator":  string(o.Operator),
			"values":    values,
		}, nil
	case StringPattern:
		return map[string]any{
			"kind":      "stringPattern",
			"attribute": encodeAttribute(o.Attribute),
			"operator":  string(o.Operator),
			"pattern":   o.Pattern,
		}, nil
	case Null:
		return map[string]any{
			"kind":      "null",
			"attribute": encodeAttribute(o.Attribute),
			"isNull":    o.IsNull,
		}, nil
	case Exists:
		nested, err := Encode(o.Operation)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"kind":         "exists",
			"relationship": encodePath(o.Relationship),
			"operation":    nested,
			"negated":      o.Negated,
		}, nil
	case EdgePointEquals:
		return map[string]any{
			"kind":      "edgePointEquals",
			"attribute": encodeAttribute(o.Attribute),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported operation type: %T", op)
	}
}

// MarshalCanonical encodes op as canonical JSON.
func MarshalCanonical(op Operation) ([]byte, error) {
	m, err := Encode(op)
	if err != nil {
		return nil, err
	}
	return ir.MarshalCanonical(m)
}

func encodeChildren(ops []Operation) ([]any, error) {
	out := make([]any, len(ops))
	for i, child := range ops {
		enc, err := Encode(child)
		if err != nil {
			return nil, fmt.Errorf("children[%d]: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

func encodeAttribute(a AttributeRef) map[string]any {
	fns := make([]any, len(a.Functions))
	for i, fn := range a.Functions {
		fns[i] = fn.String()
	}
	path := make([]any, len(a.Path))
	for i, rel := range a.Path {
		path[i] = rel.Name
	}
	return map[string]any{
		"class":     a.Attribute.Class,
		"name":      a.Attribute.Name,
		"path":      path,
		"functions": fns,
		"type":      a.Type.String(),
	}
}

func encodePath(r RelationshipRef) []any {
	path := make([]any, len(r.Path))
	for i, rel := range r.Path {
		path[i] = rel.Class + "." + rel.Name
	}
	return path
}

// Walk visits op and its descendants in pre-order. When fn returns false
// the children of that node are skipped.
func Walk(op Operation, fn func(Operation) bool) {
	if op == nil || !fn(op) {
		return
	}
	switch o := op.(type) {
	case And:
		for _, child := range o.Children {
			Walk(child, fn)
		}
	case Or:
		for _, child := range o.Children {
			Walk(child, fn)
		}
	case Exists:
		Walk(o.Operation, fn)
	}
}
