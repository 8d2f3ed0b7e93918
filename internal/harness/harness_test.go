package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/parsetree"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadSuite("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func itemScenario(t *testing.T, tree string, expect Expectation) *Scenario {
	t.Helper()
	unit, err := parsetree.DecodeBytes([]byte(tree))
	require.NoError(t, err)
	return &Scenario{
		Name:        "items",
		Description: "item scenario",
		Schema:      inlineSchema,
		Tree:        unit,
		Fixtures: map[string][]map[string]any{
			"Item": {
				{"id": 1, "label": "a"},
				{"id": 2, "label": "b"},
				{"id": 3},
			},
		},
		Expect: expect,
	}
}

func TestRun_Executes(t *testing.T) {
	scenario := itemScenario(t, `
class: Item
operation:
  unary: {attribute: label, operator: isNull}
`, Expectation{IDs: []any{3}})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"3"}, result.IDs)
	assert.Equal(t, "Null(label isNull)", result.Operation.String())
	assert.Equal(t, "SELECT t0.id FROM item AS t0 WHERE t0.label IS NULL ORDER BY t0.id ASC", result.SQL)
	assert.Empty(t, result.Params)
}

func TestRun_EmptyIDsExpectsNoMatches(t *testing.T) {
	scenario := itemScenario(t, "class: Item\noperation: none\n", Expectation{IDs: []any{}})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{}, result.IDs)
}

func TestRun_SkipsExecutionWithoutIDs(t *testing.T) {
	scenario := itemScenario(t, "class: Item\noperation: all\n", Expectation{Operation: "All"})
	scenario.Fixtures = nil

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Nil(t, result.IDs)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	scenario := itemScenario(t, `
class: Item
operation:
  binary: {attribute: label, operator: eq, literal: "a"}
`, Expectation{
		Operation: `Compare(label eq "b")`,
		SQL:       "SELECT 1",
		IDs:       []any{2},
	})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "operation assertion failed")
	assert.Contains(t, result.Errors[1], "sql assertion failed")
	assert.Contains(t, result.Errors[2], "ids assertion failed: expected [2], got [1]")
}

func TestRun_UnexpectedCompileError(t *testing.T) {
	scenario := itemScenario(t, `
class: Item
operation:
  binary: {attribute: lable, operator: eq, literal: "a"}
`, Expectation{IDs: []any{1}})

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected compile error")
	assert.Contains(t, result.Errors[0], "Did you mean")
}

func TestRun_ExpectedErrorButCompiled(t *testing.T) {
	scenario := itemScenario(t, "class: Item\noperation: all\n", Expectation{Error: &ErrorExpectation{Code: "E201"}})
	scenario.Fixtures = nil

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "error assertion failed: expected E201, got All", result.Errors[0])
}

func TestRun_WrongErrorDetails(t *testing.T) {
	scenario := itemScenario(t, `
class: Item
operation:
  binary: {attribute: label, operator: eq, literal: 3}
`, Expectation{Error: &ErrorExpectation{Code: "E205", Contains: "nope", Fragment: "label eq 4"}})
	scenario.Fixtures = nil

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "error code assertion failed: expected E205, got E201", result.Errors[0])
	assert.Contains(t, result.Errors[1], "error message assertion failed")
	assert.Equal(t, "error fragment assertion failed: expected label eq 4, got label eq 3", result.Errors[2])
}

func TestRun_SetupErrors(t *testing.T) {
	t.Run("invalid schema", func(t *testing.T) {
		scenario := itemScenario(t, "class: Item\noperation: all\n", Expectation{IDs: []any{}})
		scenario.Schema = "class: {"
		_, err := Run(context.Background(), scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema:")
	})

	t.Run("fixture for unknown class", func(t *testing.T) {
		scenario := itemScenario(t, "class: Item\noperation: all\n", Expectation{IDs: []any{}})
		scenario.Fixtures["Ghost"] = []map[string]any{{"id": 1}}
		_, err := Run(context.Background(), scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown class "Ghost"`)
	})

	t.Run("fixture with unknown attribute", func(t *testing.T) {
		scenario := itemScenario(t, "class: Item\noperation: all\n", Expectation{IDs: []any{}})
		scenario.Fixtures["Item"] = append(scenario.Fixtures["Item"], map[string]any{"id": 4, "colour": "red"})
		_, err := Run(context.Background(), scenario)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fixtures: Item[3]")
	})
}

func TestRunWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	scenario := itemScenario(t, "class: Item\noperation: all\n", Expectation{Operation: "All"})
	scenario.Fixtures = nil

	_, err := RunWithLogger(context.Background(), scenario, logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "compiled operation")
}
