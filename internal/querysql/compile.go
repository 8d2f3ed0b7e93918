package querysql

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/operation"
)

// EdgePoint is the stored value of an as-of column on the latest version
// of a row.
const EdgePoint = "9999-12-01T23:59:00.000Z"

// SQLCompiler renders compiled operations to parameterized SQLite SQL.
//
// Every query selects the root class's primary key and orders by it, so
// results are deterministic. Values are never interpolated.
type SQLCompiler struct {
	provider metadata.Provider
}

// NewSQLCompiler creates a new SQLCompiler over the given metadata.
func NewSQLCompiler(provider metadata.Provider) *SQLCompiler {
	return &SQLCompiler{provider: provider}
}

// Compile renders op, rooted at className, to a SELECT of matching primary
// keys. Returns (sql, params, error).
func (c *SQLCompiler) Compile(className string, op operation.Operation) (string, []any, error) {
	if op == nil {
		return "", nil, fmt.Errorf("cannot compile nil operation")
	}
	cls, ok := c.provider.Class(className)
	if !ok {
		return "", nil, fmt.Errorf("unknown class %q", className)
	}
	pk := cls.PrimaryKey()
	if pk == nil {
		return "", nil, fmt.Errorf("class %s has no primary key", className)
	}

	r := &renderer{provider: c.provider}
	root := scope{class: cls, alias: r.nextAlias()}
	key := root.column(pk)

	query := sq.Select(key).From(cls.Table + " AS " + root.alias)
	if _, all := op.(operation.All); !all {
		pred, err := r.predicate(root, op)
		if err != nil {
			return "", nil, err
		}
		query = query.Where(pred)
	}
	query = query.OrderBy(key + " ASC")

	sql, params, err := query.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build sql: %w", err)
	}
	return sql, params, nil
}

// scope is a class bound to a table alias.
type scope struct {
	class *metadata.Class
	alias string
}

func (s scope) column(attr *metadata.Attribute) string {
	return s.alias + "." + attr.Column
}

// renderer hands out table aliases t0, t1, ... in the order subqueries
// are opened.
type renderer struct {
	provider metadata.Provider
	next     int
}

func (r *renderer) nextAlias() string {
	alias := "t" + strconv.Itoa(r.next)
	r.next++
	return alias
}

var (
	sqlTrue  = sq.Expr("1 = 1")
	sqlFalse = sq.Expr("1 = 0")
)

func (r *renderer) predicate(s scope, op operation.Operation) (sq.Sqlizer, error) {
	switch o := op.(type) {
	case operation.And:
		conj := make(sq.And, 0, len(o.Children))
		for _, child := range o.Children {
			pred, err := r.predicate(s, child)
			if err != nil {
				return nil, err
			}
			conj = append(conj, pred)
		}
		return conj, nil
	case operation.Or:
		disj := make(sq.Or, 0, len(o.Children))
		for _, child := range o.Children {
			pred, err := r.predicate(s, child)
			if err != nil {
				return nil, err
			}
			disj = append(disj, pred)
		}
		return disj, nil
	case operation.All:
		return sqlTrue, nil
	case operation.None:
		return sqlFalse, nil
	case operation.Compare:
		return r.onAttribute(s, o.Attribute, func(col string) (sq.Sqlizer, error) {
			return compareSQL(col, o.Operator, o.Value)
		})
	case operation.SetMembership:
		return r.onAttribute(s, o.Attribute, func(col string) (sq.Sqlizer, error) {
			return membershipSQL(col, o.Operator, o.Values)
		})
	case operation.StringPattern:
		return r.onAttribute(s, o.Attribute, func(col string) (sq.Sqlizer, error) {
			return patternSQL(col, o.Operator, o.Pattern)
		})
	case operation.Null:
		return r.onAttribute(s, o.Attribute, func(col string) (sq.Sqlizer, error) {
			if o.IsNull {
				return sq.Eq{col: nil}, nil
			}
			return sq.NotEq{col: nil}, nil
		})
	case operation.EdgePointEquals:
		return r.onAttribute(s, o.Attribute, func(col string) (sq.Sqlizer, error) {
			return sq.Eq{col: EdgePoint}, nil
		})
	case operation.Exists:
		sub, err := r.navigate(s, o.Relationship.Path, func(inner scope) (sq.Sqlizer, error) {
			if _, all := o.Operation.(operation.All); all {
				return nil, nil
			}
			return r.predicate(inner, o.Operation)
		})
		if err != nil {
			return nil, err
		}
		sub.negated = o.Negated
		return sub, nil
	default:
		return nil, fmt.Errorf("unsupported operation type: %T", op)
	}
}

// onAttribute renders a leaf predicate on ref. Attributes reached through
// relationships are tested inside correlated EXISTS subqueries, one per hop.
func (r *renderer) onAttribute(s scope, ref operation.AttributeRef, leaf func(col string) (sq.Sqlizer, error)) (sq.Sqlizer, error) {
	build := func(inner scope) (sq.Sqlizer, error) {
		return leaf(applyFunctions(inner.alias+"."+ref.Attribute.Column, ref.Functions))
	}
	if len(ref.Path) == 0 {
		return build(s)
	}
	return r.navigate(s, ref.Path, build)
}

// navigate opens one subquery per relationship in path, correlated on the
// relationship's join columns, and applies build at the innermost scope.
// A nil predicate from build leaves the innermost subquery unfiltered.
func (r *renderer) navigate(s scope, path []*metadata.Relationship, build func(scope) (sq.Sqlizer, error)) (*existsExpr, error) {
	rel := path[0]
	target, ok := r.provider.Class(rel.Target)
	if !ok {
		return nil, fmt.Errorf("unknown class %q", rel.Target)
	}
	from, ok := s.class.Attribute(rel.Join.From)
	if !ok {
		return nil, fmt.Errorf("relationship %s.%s: unknown join attribute %q", rel.Class, rel.Name, rel.Join.From)
	}
	to, ok := target.Attribute(rel.Join.To)
	if !ok {
		return nil, fmt.Errorf("relationship %s.%s: unknown join attribute %q", rel.Class, rel.Name, rel.Join.To)
	}

	inner := scope{class: target, alias: r.nextAlias()}
	var pred sq.Sqlizer
	var err error
	if len(path) > 1 {
		pred, err = r.navigate(inner, path[1:], build)
	} else {
		pred, err = build(inner)
	}
	if err != nil {
		return nil, err
	}

	sub := sq.Select("1").
		From(target.Table + " AS " + inner.alias).
		Where(inner.column(to) + " = " + s.column(from))
	if pred != nil {
		sub = sub.Where(pred)
	}
	return &existsExpr{query: sub}, nil
}

// existsExpr renders [NOT] EXISTS (subquery).
type existsExpr struct {
	query   sq.SelectBuilder
	negated bool
}

func (e *existsExpr) ToSql() (string, []any, error) {
	sql, args, err := e.query.ToSql()
	if err != nil {
		return "", nil, err
	}
	if e.negated {
		return "NOT EXISTS (" + sql + ")", args, nil
	}
	return "EXISTS (" + sql + ")", args, nil
}

// notExpr renders NOT (pred).
type notExpr struct {
	pred sq.Sqlizer
}

func (n notExpr) ToSql() (string, []any, error) {
	sql, args, err := n.pred.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}

// applyFunctions wraps a column expression in SQLite equivalents of the
// attribute functions, innermost first.
func applyFunctions(expr string, fns []operation.FunctionCall) string {
	for _, fn := range fns {
		switch fn.Function {
		case operation.ToLowerCase:
			expr = "LOWER(" + expr + ")"
		case operation.Substring:
			expr = fmt.Sprintf("SUBSTR(%s, %d, %d)", expr, fn.Start+1, fn.End-fn.Start)
		case operation.Abs:
			expr = "ABS(" + expr + ")"
		case operation.Year:
			expr = "CAST(strftime('%Y', " + expr + ") AS INTEGER)"
		case operation.Month:
			expr = "CAST(strftime('%m', " + expr + ") AS INTEGER)"
		case operation.DayOfMonth:
			expr = "CAST(strftime('%d', " + expr + ") AS INTEGER)"
		}
	}
	return expr
}

func compareSQL(col string, op operation.Operator, v ir.Value) (sq.Sqlizer, error) {
	param, err := SQLValue(v)
	if err != nil {
		return nil, err
	}
	switch op {
	case operation.Eq:
		return sq.Eq{col: param}, nil
	case operation.NotEq:
		return sq.NotEq{col: param}, nil
	case operation.GreaterThan:
		return sq.Gt{col: param}, nil
	case operation.GreaterThanEquals:
		return sq.GtOrEq{col: param}, nil
	case operation.LessThan:
		return sq.Lt{col: param}, nil
	case operation.LessThanEquals:
		return sq.LtOrEq{col: param}, nil
	default:
		return nil, fmt.Errorf("operator %s is not a comparison", op)
	}
}

func membershipSQL(col string, op operation.Operator, list ir.List) (sq.Sqlizer, error) {
	params := make([]any, 0, len(list.Values))
	for _, v := range list.Values {
		param, err := SQLValue(v)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	switch op {
	case operation.In:
		return sq.Eq{col: params}, nil
	case operation.NotIn:
		return sq.NotEq{col: params}, nil
	case operation.WildCardIn:
		disj := make(sq.Or, 0, len(params))
		for _, p := range params {
			disj = append(disj, sq.Expr(col+" GLOB ?", wildcardGlob(p.(string))))
		}
		return disj, nil
	default:
		return nil, fmt.Errorf("operator %s is not a membership test", op)
	}
}

// patternSQL renders substring and wildcard tests as case-sensitive GLOB.
func patternSQL(col string, op operation.Operator, pattern string) (sq.Sqlizer, error) {
	var glob string
	negated := false
	switch op {
	case operation.StartsWith, operation.NotStartsWith:
		glob = escapeGlob(pattern) + "*"
		negated = op == operation.NotStartsWith
	case operation.EndsWith, operation.NotEndsWith:
		glob = "*" + escapeGlob(pattern)
		negated = op == operation.NotEndsWith
	case operation.Contains, operation.NotContains:
		glob = "*" + escapeGlob(pattern) + "*"
		negated = op == operation.NotContains
	case operation.WildCardEquals, operation.WildCardNotEquals:
		glob = wildcardGlob(pattern)
		negated = op == operation.WildCardNotEquals
	default:
		return nil, fmt.Errorf("operator %s is not a string pattern", op)
	}
	var pred sq.Sqlizer = sq.Expr(col+" GLOB ?", glob)
	if negated {
		pred = notExpr{pred: pred}
	}
	return pred, nil
}

// escapeGlob makes every GLOB metacharacter in s match literally.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wildcardGlob keeps * and ? as wildcards and escapes the rest.
func wildcardGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '[' {
			b.WriteString("[[]")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
