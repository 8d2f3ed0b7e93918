package parsetree

// Node is a sealed interface for operation-level parse nodes.
// Only the types in this file implement it.
type Node interface {
	parseNode() // Sealed - only these types implement it
}

// CompilationUnit is the root of a parse: the class the predicate is
// evaluated against and its operation tree.
type CompilationUnit struct {
	Class     string
	Operation Node
}

// And joins operands with boolean AND.
type And struct {
	Operands []Node
	Source   string
}

func (And) parseNode() {}

// Or joins operands with boolean OR.
type Or struct {
	Operands []Node
	Source   string
}

func (Or) parseNode() {}

// Group is a parenthesized operation.
type Group struct {
	Operation Node
	Source    string
}

func (Group) parseNode() {}

// All is the always-true predicate.
type All struct {
	Source string
}

func (All) parseNode() {}

// None is the always-false predicate.
type None struct {
	Source string
}

func (None) parseNode() {}

// UnaryOperatorApplication applies an operand-less operator such as isNull.
type UnaryOperatorApplication struct {
	Attribute Attribute
	Operator  string
	Source    string
}

func (UnaryOperatorApplication) parseNode() {}

// BinaryOperatorApplication compares an attribute with a literal.
type BinaryOperatorApplication struct {
	Attribute Attribute
	Operator  string
	Literal   Literal
	Source    string
}

func (BinaryOperatorApplication) parseNode() {}

// ExistsApplication tests a relationship navigation for related rows,
// optionally filtered by a nested operation evaluated against the
// navigation's target class.
type ExistsApplication struct {
	Navigation Attribute
	Operator   string
	Operation  Node // nil when no nested predicate is given
	Source     string
}

func (ExistsApplication) parseNode() {}

// Attribute is a dotted path: zero or more relationship names followed by
// an attribute name (or, for navigations, relationship names only).
// Class is the optional leading qualifier ("this" or a class name).
// Functions wrap the path, innermost first.
type Attribute struct {
	Class     string
	Path      []string
	Functions []FunctionCall
}

// FunctionCall is a scalar function applied to an attribute. Args hold the
// raw integer tokens of extra arguments, e.g. substring's bounds.
type FunctionCall struct {
	Name string
	Args []string
}

// LiteralKind is the lexical category of a literal token.
type LiteralKind int

const (
	KindString LiteralKind = iota + 1
	KindBoolean
	KindCharacter
	KindInteger
	KindFloatingPoint
	KindNull
)

var literalKindNames = map[LiteralKind]string{
	KindString:        "string",
	KindBoolean:       "boolean",
	KindCharacter:     "character",
	KindInteger:       "integer",
	KindFloatingPoint: "floatingPoint",
	KindNull:          "null",
}

func (k LiteralKind) String() string {
	if name, ok := literalKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseLiteralKind resolves a kind name as written in serialized trees.
func ParseLiteralKind(name string) (LiteralKind, bool) {
	for k, n := range literalKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Literal is a scalar token or a parenthesized list of scalar tokens.
// Token keeps the raw lexical text, including quotes for string and
// character literals.
type Literal struct {
	Kind     LiteralKind
	Token    string
	List     bool
	Elements []Literal
}

// Scalar builds a scalar literal.
func Scalar(kind LiteralKind, token string) Literal {
	return Literal{Kind: kind, Token: token}
}

// ListOf builds a list literal.
func ListOf(elems ...Literal) Literal {
	return Literal{List: true, Elements: elems}
}

// SourceOf returns the original fragment text recorded on a node.
func SourceOf(n Node) string {
	switch node := n.(type) {
	case And:
		return node.Source
	case *And:
		return node.Source
	case Or:
		return node.Source
	case *Or:
		return node.Source
	case Group:
		return node.Source
	case *Group:
		return node.Source
	case All:
		return node.Source
	case *All:
		return node.Source
	case None:
		return node.Source
	case *None:
		return node.Source
	case UnaryOperatorApplication:
		return node.Source
	case *UnaryOperatorApplication:
		return node.Source
	case BinaryOperatorApplication:
		return node.Source
	case *BinaryOperatorApplication:
		return node.Source
	case ExistsApplication:
		return node.Source
	case *ExistsApplication:
		return node.Source
	default:
		return ""
	}
}
