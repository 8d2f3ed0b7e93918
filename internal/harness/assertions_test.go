package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/compiler"
	"github.com/roach88/opql/internal/ir"
)

func TestAssertIDs(t *testing.T) {
	tests := []struct {
		name     string
		expected []any
		actual   []string
		wantErr  bool
	}{
		{"equal ints", []any{1, 2}, []string{"1", "2"}, false},
		{"string ids", []any{"a-1"}, []string{"a-1"}, false},
		{"both empty", []any{}, []string{}, false},
		{"order matters", []any{2, 1}, []string{"1", "2"}, true},
		{"missing", []any{1, 2}, []string{"1"}, true},
		{"extra", []any{}, []string{"1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertIDs(tt.expected, tt.actual)
			if tt.wantErr {
				var ae *AssertionError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "ids", ae.Type)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAssertError_MatchesEverything(t *testing.T) {
	err := &compiler.CompileError{
		Class:    "Employee",
		Fragment: "age startsWith 5",
		Err:      &compiler.UnsupportedOperatorError{Operator: "startsWith", Attribute: "age", Type: ir.TypeInteger},
	}

	failures := assertError(ErrorExpectation{Code: "E205", Contains: "not supported", Fragment: "age startsWith 5"}, err)
	assert.Empty(t, failures)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{Type: "sql", Expected: "SELECT 1", Actual: "SELECT 2"}
	assert.Equal(t, "sql assertion failed: expected SELECT 1, got SELECT 2", err.Error())
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
