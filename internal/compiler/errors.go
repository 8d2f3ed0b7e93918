package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/opql/internal/ir"
)

// Compile error codes (E201-E299)
const (
	CodeTypeError           = "E201" // literal does not fit the expected type or cardinality
	CodeUnknownAttribute    = "E202" // path ends in an unknown attribute
	CodeUnknownRelationship = "E203" // path segment is not a relationship
	CodeFunctionTypeError   = "E204" // function applied to an unsupported type
	CodeUnsupportedOperator = "E205" // operator not implemented for the type
	CodeUnknownClass        = "E206" // class missing from metadata
	CodeClassMismatch       = "E207" // qualifier is neither this nor the class
	CodeUnknownFunction     = "E208" // function name not recognized
	CodeMalformedTree       = "E209" // parse tree node missing or of an unknown kind
)

// TypeError reports a literal whose lexical form does not parse as the
// expected type, or a scalar/list mismatch with the operator.
type TypeError struct {
	Expected string
	Found    string
	Fragment string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Expected <%s> but found: <%s>%s", e.Expected, e.Found, in(e.Fragment))
}

// UnknownAttributeError reports a final path segment that names no
// attribute on the class in scope.
type UnknownAttributeError struct {
	Class       string
	Name        string
	Valid       []string
	Suggestions []string
	Fragment    string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("Could not find attribute '%s' on type '%s'%s.%s Valid attributes: [%s]",
		e.Name, e.Class, in(e.Fragment), didYouMean(e.Suggestions), strings.Join(e.Valid, ", "))
}

// UnknownRelationshipError reports a navigation segment that names no
// relationship on the class in scope.
type UnknownRelationshipError struct {
	Class       string
	Name        string
	Valid       []string
	Suggestions []string
	Fragment    string
}

func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("Could not find relationship '%s' on type '%s'%s.%s Valid relationships: [%s]",
		e.Name, e.Class, in(e.Fragment), didYouMean(e.Suggestions), strings.Join(e.Valid, ", "))
}

// FunctionTypeError reports a function applied to an attribute whose type
// it does not support, or called with the wrong arguments.
type FunctionTypeError struct {
	Function  string
	Attribute string
	Type      ir.ValueType
	Accepts   string
	Detail    string
	Fragment  string
}

func (e *FunctionTypeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("Function '%s' %s%s", e.Function, e.Detail, in(e.Fragment))
	}
	return fmt.Sprintf("Function '%s' applies to %s attributes but attribute '%s' is a %s%s",
		e.Function, e.Accepts, e.Attribute, e.Type, in(e.Fragment))
}

// UnsupportedOperatorError reports an operator the attribute's value type
// does not implement.
type UnsupportedOperatorError struct {
	Operator  string
	Attribute string
	Type      ir.ValueType
	Fragment  string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("Operator '%s' is not supported for attribute '%s' of type %s%s",
		e.Operator, e.Attribute, e.Type, in(e.Fragment))
}

// UnknownClassError reports a class name the metadata provider does not know.
type UnknownClassError struct {
	Class string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("Could not find class '%s'", e.Class)
}

// ClassMismatchError reports a path qualifier that is neither "this" nor
// the class in scope.
type ClassMismatchError struct {
	Expected string
	Found    string
	Fragment string
}

func (e *ClassMismatchError) Error() string {
	return fmt.Sprintf("Expected 'this' or '%s' but found: '%s'%s", e.Expected, e.Found, in(e.Fragment))
}

// UnknownFunctionError reports an unrecognized function name.
type UnknownFunctionError struct {
	Name     string
	Fragment string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("Unknown function '%s'%s", e.Name, in(e.Fragment))
}

// MalformedTreeError reports a parse tree the compiler cannot walk: a
// missing operation or a node type outside the grammar.
type MalformedTreeError struct {
	Node string
}

func (e *MalformedTreeError) Error() string {
	if e.Node == "" {
		return "Missing operation"
	}
	return fmt.Sprintf("Unsupported parse node %s", e.Node)
}

func (*TypeError) Code() string                { return CodeTypeError }
func (*UnknownAttributeError) Code() string    { return CodeUnknownAttribute }
func (*UnknownRelationshipError) Code() string { return CodeUnknownRelationship }
func (*FunctionTypeError) Code() string        { return CodeFunctionTypeError }
func (*UnsupportedOperatorError) Code() string { return CodeUnsupportedOperator }
func (*UnknownClassError) Code() string        { return CodeUnknownClass }
func (*ClassMismatchError) Code() string       { return CodeClassMismatch }
func (*UnknownFunctionError) Code() string     { return CodeUnknownFunction }
func (*MalformedTreeError) Code() string       { return CodeMalformedTree }

// CompileError is the umbrella failure returned by Compile. It wraps the
// first underlying error encountered.
type CompileError struct {
	Class    string
	Fragment string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s: %v", e.Class, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Code returns the code of the wrapped error.
func (e *CompileError) Code() string { return Code(e.Err) }

// Code extracts the error code from any compiler error in err's chain.
// Returns "" for errors that carry no code.
func Code(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// IsTypeError returns true if err wraps a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}

// IsUnsupportedOperator returns true if err wraps an *UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	var ue *UnsupportedOperatorError
	return errors.As(err, &ue)
}

// withFragment records the source fragment on errors that do not carry one
// yet. The innermost (most specific) fragment wins.
func withFragment(err error, fragment string) error {
	switch e := err.(type) {
	case *TypeError:
		setIfEmpty(&e.Fragment, fragment)
	case *UnknownAttributeError:
		setIfEmpty(&e.Fragment, fragment)
	case *UnknownRelationshipError:
		setIfEmpty(&e.Fragment, fragment)
	case *FunctionTypeError:
		setIfEmpty(&e.Fragment, fragment)
	case *UnsupportedOperatorError:
		setIfEmpty(&e.Fragment, fragment)
	case *ClassMismatchError:
		setIfEmpty(&e.Fragment, fragment)
	case *UnknownFunctionError:
		setIfEmpty(&e.Fragment, fragment)
	}
	return err
}

// fragmentOf returns the fragment recorded on a compiler error.
func fragmentOf(err error) string {
	switch e := err.(type) {
	case *TypeError:
		return e.Fragment
	case *UnknownAttributeError:
		return e.Fragment
	case *UnknownRelationshipError:
		return e.Fragment
	case *FunctionTypeError:
		return e.Fragment
	case *UnsupportedOperatorError:
		return e.Fragment
	case *ClassMismatchError:
		return e.Fragment
	case *UnknownFunctionError:
		return e.Fragment
	default:
		return ""
	}
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func in(fragment string) string {
	if fragment == "" {
		return ""
	}
	return " in " + fragment
}

func didYouMean(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return " Did you mean: " + strings.Join(suggestions, ", ") + "?"
}
