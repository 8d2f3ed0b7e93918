package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/opql/internal/compiler"
)

// AssertionError represents a failed expectation.
type AssertionError struct {
	Type     string // "operation", "sql", "ids", "error"
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s assertion failed: expected %v, got %v", e.Type, e.Expected, e.Actual)
}

// checkExpectations evaluates every expectation set on the scenario and
// records failures on result.
func checkExpectations(scenario *Scenario, result *Result) {
	expect := scenario.Expect

	if result.CompileError != nil {
		if expect.Error == nil {
			result.AddError(fmt.Sprintf("unexpected compile error: %v", result.CompileError))
			return
		}
		for _, err := range assertError(*expect.Error, result.CompileError) {
			result.AddError(err.Error())
		}
		return
	}

	if expect.Error != nil {
		result.AddError((&AssertionError{
			Type:     "error",
			Expected: expect.Error.Code,
			Actual:   result.Operation.String(),
		}).Error())
		return
	}

	if expect.Operation != "" {
		if got := result.Operation.String(); got != expect.Operation {
			result.AddError((&AssertionError{Type: "operation", Expected: expect.Operation, Actual: got}).Error())
		}
	}

	if expect.SQL != "" && result.SQL != expect.SQL {
		result.AddError((&AssertionError{Type: "sql", Expected: expect.SQL, Actual: result.SQL}).Error())
	}

	if expect.IDs != nil {
		if err := assertIDs(expect.IDs, result.IDs); err != nil {
			result.AddError(err.Error())
		}
	}
}

// assertError checks a compile failure against its expectation.
func assertError(expect ErrorExpectation, err error) []error {
	var failures []error

	if code := compiler.Code(err); code != expect.Code {
		failures = append(failures, &AssertionError{Type: "error code", Expected: expect.Code, Actual: code})
	}

	if expect.Contains != "" && !strings.Contains(err.Error(), expect.Contains) {
		failures = append(failures, &AssertionError{Type: "error message", Expected: expect.Contains, Actual: err.Error()})
	}

	if expect.Fragment != "" {
		var ce *compiler.CompileError
		fragment := ""
		if errors.As(err, &ce) {
			fragment = ce.Fragment
		}
		if fragment != expect.Fragment {
			failures = append(failures, &AssertionError{Type: "error fragment", Expected: expect.Fragment, Actual: fragment})
		}
	}

	return failures
}

// assertIDs compares primary keys in order. Expected values may be any
// YAML scalar; they are compared by their printed form.
func assertIDs(expected []any, actual []string) error {
	want := make([]string, len(expected))
	for i, v := range expected {
		want[i] = fmt.Sprint(v)
	}
	if len(want) != len(actual) {
		return &AssertionError{Type: "ids", Expected: want, Actual: actual}
	}
	for i := range want {
		if want[i] != actual[i] {
			return &AssertionError{Type: "ids", Expected: want, Actual: actual}
		}
	}
	return nil
}
