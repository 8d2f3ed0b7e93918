package operation

// Operator is a grammar operator token.
type Operator string

const (
	Eq                Operator = "eq"
	NotEq             Operator = "notEq"
	GreaterThan       Operator = "greaterThan"
	GreaterThanEquals Operator = "greaterThanEquals"
	LessThan          Operator = "lessThan"
	LessThanEquals    Operator = "lessThanEquals"
	In                Operator = "in"
	NotIn             Operator = "notIn"
	StartsWith        Operator = "startsWith"
	NotStartsWith     Operator = "notStartsWith"
	EndsWith          Operator = "endsWith"
	NotEndsWith       Operator = "notEndsWith"
	Contains          Operator = "contains"
	NotContains       Operator = "notContains"
	WildCardEquals    Operator = "wildCardEquals"
	WildCardNotEquals Operator = "wildCardNotEquals"
	WildCardIn        Operator = "wildCardIn"
	IsNull            Operator = "isNull"
	IsNotNull         Operator = "isNotNull"
	EqualsEdgePoint   Operator = "equalsEdgePoint"
	OpExists          Operator = "exists"
	NotExists         Operator = "notExists"
)

// Arity is the operand shape an operator takes.
type Arity int

const (
	Unary Arity = iota + 1
	Binary
	Existence
)

// Cardinality is the number of values a binary operator's operand holds.
type Cardinality int

const (
	One Cardinality = iota + 1
	Many
)

func (c Cardinality) String() string {
	if c == Many {
		return "list"
	}
	return "scalar"
}

var operators = []Operator{
	Eq, NotEq, GreaterThan, GreaterThanEquals, LessThan, LessThanEquals,
	In, NotIn, StartsWith, NotStartsWith, EndsWith, NotEndsWith,
	Contains, NotContains, WildCardEquals, WildCardNotEquals, WildCardIn,
	IsNull, IsNotNull, EqualsEdgePoint, OpExists, NotExists,
}

// Alternate spellings accepted from older parsers.
var operatorAliases = map[string]Operator{
	"wildcardEq":    WildCardEquals,
	"wildcardNotEq": WildCardNotEquals,
	"wildcardIn":    WildCardIn,
}

// Operators returns every operator in declaration order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// ParseOperator resolves a grammar token.
func ParseOperator(token string) (Operator, bool) {
	for _, op := range operators {
		if string(op) == token {
			return op, true
		}
	}
	op, ok := operatorAliases[token]
	return op, ok
}

// Arity reports whether the operator is unary, binary or an existence test.
func (o Operator) Arity() Arity {
	switch o {
	case IsNull, IsNotNull, EqualsEdgePoint:
		return Unary
	case OpExists, NotExists:
		return Existence
	default:
		return Binary
	}
}

// Cardinality reports whether a binary operator expects a scalar or a list.
func (o Operator) Cardinality() Cardinality {
	switch o {
	case In, NotIn, WildCardIn:
		return Many
	default:
		return One
	}
}
