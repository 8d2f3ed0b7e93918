package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/parsetree"
)

const inlineSchema = `
class: Item: {
	attribute: {
		id:    {type: "Long", primaryKey: true}
		label: "String"
	}
}
`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.cue"), []byte(inlineSchema), 0644))
	path := writeScenario(t, dir, "test.yaml", `
name: label_eq
description: "Label equality"
schema_file: items.cue
tree:
  class: Item
  operation:
    binary: {attribute: label, operator: eq, literal: "x"}
fixtures:
  Item:
    - {id: 1, label: x}
expect:
  operation: Compare(label eq "x")
  ids: [1]
`)

	scenario, err := LoadScenarioWithBasePath(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "label_eq", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "items.cue"), scenario.SchemaFile)
	assert.Equal(t, "Item", scenario.Tree.Class)
	require.IsType(t, parsetree.BinaryOperatorApplication{}, scenario.Tree.Operation)
	assert.Equal(t, "label eq \"x\"", parsetree.Format(scenario.Tree.Operation))
	assert.Len(t, scenario.Fixtures["Item"], 1)
	assert.Equal(t, []any{1}, scenario.Expect.IDs)
}

func TestLoadScenario_EmptyIDsMeansNoMatches(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: none
description: d
schema: "class: Item: attribute: id: {type: \"Long\", primaryKey: true}"
tree: {class: Item, operation: none}
expect:
  ids: []
`))
	require.NoError(t, err)
	require.NotNil(t, scenario.Expect.IDs)
	assert.Empty(t, scenario.Expect.IDs)
	assert.NoError(t, validateScenario(scenario))
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "typo.yaml", `
name: typo
description: d
schema: x
tree: {class: Item, operation: all}
expectt:
  ids: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MalformedTree(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "bad.yaml", `
name: bad
description: d
schema: x
tree: {class: Item, operation: {between: {}}}
expect: {ids: []}
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown operation "between"`)
}

func TestValidateScenario(t *testing.T) {
	tree := parsetree.CompilationUnit{Class: "Item", Operation: parsetree.All{}}
	valid := func() *Scenario {
		return &Scenario{
			Name:        "n",
			Description: "d",
			Schema:      inlineSchema,
			Tree:        tree,
			Expect:      Expectation{Operation: "All"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{"valid", func(*Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"missing schema", func(s *Scenario) { s.Schema = "" }, "schema or schema_file is required"},
		{"both schemas", func(s *Scenario) { s.SchemaFile = "x.cue" }, "mutually exclusive"},
		{"schema file not found", func(s *Scenario) { s.Schema, s.SchemaFile = "", "/does/not/exist.cue" }, "schema file not found"},
		{"missing tree", func(s *Scenario) { s.Tree = parsetree.CompilationUnit{} }, "tree with class and operation is required"},
		{"no expectations", func(s *Scenario) { s.Expect = Expectation{} }, "at least one of"},
		{"error without code", func(s *Scenario) { s.Expect = Expectation{Error: &ErrorExpectation{}} }, "code is required"},
		{"error with operation", func(s *Scenario) { s.Expect.Error = &ErrorExpectation{Code: "E201"} }, "cannot be combined"},
		{"fixtures without ids", func(s *Scenario) { s.Fixtures = map[string][]map[string]any{"Item": {{"id": 1}}} }, "fixtures require expect.ids"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := validateScenario(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSuite(t *testing.T) {
	scenarios, err := LoadSuite("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"and_of_ranges",
		"authors_without_books",
		"compare_string",
		"edge_point",
		"exists_chain",
		"list_for_scalar",
		"pattern_type_error",
		"set_membership",
		"unsupported_operator",
	}, names)
}

func TestLoadSuite_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	content := `
name: same
description: d
schema: x
tree: {class: Item, operation: all}
expect: {operation: All}
`
	writeScenario(t, dir, "a.yaml", content)
	writeScenario(t, dir, "b.yaml", content)

	_, err := LoadSuite(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate scenario name "same"`)
}

func TestLoadSuite_Empty(t *testing.T) {
	_, err := LoadSuite(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenarios found")
}
