package parsetree

import (
	"fmt"
	"strings"
)

// Fragment returns the recorded source text of n, or its canonical
// rendering when no source was recorded.
func Fragment(n Node) string {
	if src := SourceOf(n); src != "" {
		return src
	}
	return Format(n)
}

// Format renders a node as a canonical source fragment.
func Format(n Node) string {
	switch node := n.(type) {
	case nil:
		return ""
	case And:
		return joinNodes(node.Operands, " and ")
	case *And:
		return joinNodes(node.Operands, " and ")
	case Or:
		return joinNodes(node.Operands, " or ")
	case *Or:
		return joinNodes(node.Operands, " or ")
	case Group:
		return "(" + Format(node.Operation) + ")"
	case *Group:
		return "(" + Format(node.Operation) + ")"
	case All, *All:
		return "all"
	case None, *None:
		return "none"
	case UnaryOperatorApplication:
		return FormatAttribute(node.Attribute) + " " + node.Operator
	case *UnaryOperatorApplication:
		return FormatAttribute(node.Attribute) + " " + node.Operator
	case BinaryOperatorApplication:
		return FormatAttribute(node.Attribute) + " " + node.Operator + " " + FormatLiteral(node.Literal)
	case *BinaryOperatorApplication:
		return FormatAttribute(node.Attribute) + " " + node.Operator + " " + FormatLiteral(node.Literal)
	case ExistsApplication:
		return formatExists(node)
	case *ExistsApplication:
		return formatExists(*node)
	default:
		return fmt.Sprintf("<%T>", n)
	}
}

// FormatUnit renders a whole compilation unit.
func FormatUnit(u CompilationUnit) string {
	return u.Class + ": " + Format(u.Operation)
}

// FormatAttribute renders an attribute path with its functions applied.
func FormatAttribute(a Attribute) string {
	segments := a.Path
	if a.Class != "" {
		segments = append([]string{a.Class}, a.Path...)
	}
	s := strings.Join(segments, ".")
	for _, fn := range a.Functions {
		args := append([]string{s}, fn.Args...)
		s = fn.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return s
}

// FormatLiteral renders a literal token or list of tokens.
func FormatLiteral(l Literal) string {
	if !l.List {
		return l.Token
	}
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = FormatLiteral(e)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatExists(e ExistsApplication) string {
	s := FormatAttribute(e.Navigation) + " " + e.Operator
	if e.Operation != nil {
		s += " (" + Format(e.Operation) + ")"
	}
	return s
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = Format(n)
	}
	return strings.Join(parts, sep)
}

// QuoteString renders s as a string literal token using only the
// grammar's escapes: \" \\ \n \t \r \b \f, and \uXXXX for the remaining
// control characters. Other runes are written as they are.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
