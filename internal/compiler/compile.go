package compiler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/operation"
	"github.com/roach88/opql/internal/parsetree"
)

// Compiler compiles parse trees against a metadata provider.
type Compiler struct {
	provider metadata.Provider
	logger   *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug output. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a Compiler.
func New(provider metadata.Provider, opts ...Option) *Compiler {
	c := &Compiler{provider: provider}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Compile compiles a whole compilation unit. On failure the returned error
// is a *CompileError wrapping the first error encountered.
func (c *Compiler) Compile(unit parsetree.CompilationUnit) (operation.Operation, error) {
	return c.CompileOperation(unit.Class, unit.Operation)
}

// CompileOperation compiles node against the named class.
func (c *Compiler) CompileOperation(className string, node parsetree.Node) (operation.Operation, error) {
	cls, ok := c.provider.Class(className)
	if !ok {
		return nil, &CompileError{Class: className, Err: &UnknownClassError{Class: className}}
	}

	op, err := c.compileNode(cls, node)
	if err != nil {
		c.logger.Debug("compilation failed",
			"class", className,
			"code", Code(err),
			"error", err)
		return nil, &CompileError{Class: className, Fragment: fragmentOf(err), Err: err}
	}

	c.logger.Debug("compiled operation",
		"class", className,
		"operation", op.String())
	return op, nil
}

// compileNode compiles one parse node depth-first. Leaves (attributes and
// literals) compile before the node that applies them.
func (c *Compiler) compileNode(cls *metadata.Class, node parsetree.Node) (operation.Operation, error) {
	switch n := node.(type) {
	case parsetree.And:
		return c.compileJunction(cls, n.Operands, composeAnd)
	case *parsetree.And:
		return c.compileJunction(cls, n.Operands, composeAnd)
	case parsetree.Or:
		return c.compileJunction(cls, n.Operands, composeOr)
	case *parsetree.Or:
		return c.compileJunction(cls, n.Operands, composeOr)
	case parsetree.Group:
		return c.compileNode(cls, n.Operation)
	case *parsetree.Group:
		return c.compileNode(cls, n.Operation)
	case parsetree.All, *parsetree.All:
		return operation.All{}, nil
	case parsetree.None, *parsetree.None:
		return operation.None{}, nil
	case parsetree.UnaryOperatorApplication:
		op, err := c.compileUnaryApplication(cls, n)
		return op, withFragment(err, parsetree.Fragment(n))
	case *parsetree.UnaryOperatorApplication:
		op, err := c.compileUnaryApplication(cls, *n)
		return op, withFragment(err, parsetree.Fragment(n))
	case parsetree.BinaryOperatorApplication:
		op, err := c.compileBinaryApplication(cls, n)
		return op, withFragment(err, parsetree.Fragment(n))
	case *parsetree.BinaryOperatorApplication:
		op, err := c.compileBinaryApplication(cls, *n)
		return op, withFragment(err, parsetree.Fragment(n))
	case parsetree.ExistsApplication:
		op, err := c.compileExistsApplication(cls, n)
		return op, withFragment(err, parsetree.Fragment(n))
	case *parsetree.ExistsApplication:
		op, err := c.compileExistsApplication(cls, *n)
		return op, withFragment(err, parsetree.Fragment(n))
	case nil:
		return nil, &MalformedTreeError{}
	default:
		return nil, &MalformedTreeError{Node: fmt.Sprintf("%T", node)}
	}
}

func (c *Compiler) compileJunction(cls *metadata.Class, operands []parsetree.Node, compose func([]operation.Operation) operation.Operation) (operation.Operation, error) {
	compiled := make([]operation.Operation, 0, len(operands))
	for _, operand := range operands {
		op, err := c.compileNode(cls, operand)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, op)
	}
	return compose(compiled), nil
}

func (c *Compiler) compileUnaryApplication(cls *metadata.Class, n parsetree.UnaryOperatorApplication) (operation.Operation, error) {
	attr, err := c.resolveAttribute(cls, n.Attribute)
	if err != nil {
		return nil, err
	}
	op, ok := operation.ParseOperator(n.Operator)
	if !ok || op.Arity() != operation.Unary {
		return nil, unsupported(attr, n.Operator)
	}
	return compileUnary(attr, op)
}

// compileBinaryApplication checks the operator against the attribute type
// before the literal compiles, so an illegal pair is an unsupported
// operator whatever the operand.
func (c *Compiler) compileBinaryApplication(cls *metadata.Class, n parsetree.BinaryOperatorApplication) (operation.Operation, error) {
	attr, err := c.resolveAttribute(cls, n.Attribute)
	if err != nil {
		return nil, err
	}
	op, ok := operation.ParseOperator(n.Operator)
	if !ok || op.Arity() != operation.Binary || !Supports(attr.Type, op) {
		return nil, unsupported(attr, n.Operator)
	}
	value, err := CompileLiteral(n.Literal, attr.Type, op.Cardinality())
	if err != nil {
		return nil, err
	}
	return compileBinary(attr, op, value)
}

// compileExistsApplication compiles the nested operation against the
// navigation's target class before wrapping it.
func (c *Compiler) compileExistsApplication(cls *metadata.Class, n parsetree.ExistsApplication) (operation.Operation, error) {
	rel, target, err := c.resolveNavigation(cls, n.Navigation)
	if err != nil {
		return nil, err
	}
	op, ok := operation.ParseOperator(n.Operator)
	if !ok || op.Arity() != operation.Existence {
		return nil, &UnsupportedOperatorError{Operator: n.Operator, Attribute: rel.String()}
	}

	var nested operation.Operation
	if n.Operation != nil {
		if nested, err = c.compileNode(target, n.Operation); err != nil {
			return nil, err
		}
	}
	return composeExists(rel, nested, op == operation.NotExists), nil
}
