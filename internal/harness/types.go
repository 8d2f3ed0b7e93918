package harness

import (
	"github.com/roach88/opql/internal/operation"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation holds.
	Pass bool `json:"pass"`

	// Operation is the compiled tree, nil when compilation failed.
	Operation operation.Operation `json:"-"`

	// SQL and Params are the rendered query for Operation.
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	// IDs are the primary keys returned by executing SQL against the
	// fixtures. Nil when the scenario was not executed.
	IDs []string `json:"ids,omitempty"`

	// CompileError is the compiler's failure, if any.
	CompileError error `json:"-"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
