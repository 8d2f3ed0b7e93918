package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Text(t *testing.T) {
	out, _, err := execute(t, "schema", hrSchemaDir(t))
	require.NoError(t, err)
	assert.Equal(t, "✓ Loaded 3 class(es) from 1 file(s)\n\n"+
		"Department (department): 4 attribute(s), 1 relationship(s)\n"+
		"Employee (employee): 15 attribute(s), 3 relationship(s)\n"+
		"Project (project): 5 attribute(s), 1 relationship(s)\n",
		out)
}

func TestSchema_VerboseListsMembers(t *testing.T) {
	out, _, err := execute(t, "schema", hrSchemaDir(t), "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "  id Long [pk]\n")
	assert.Contains(t, out, "  projects -> Project (many, id = leadId)\n")
}

func TestSchema_JSON(t *testing.T) {
	out, _, err := execute(t, "schema", hrSchemaDir(t), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SchemaOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Classes, 3)

	project := resp.Data.Classes[2]
	assert.Equal(t, "Project", project.Name)
	assert.Equal(t, AttributeOutput{Name: "leadId", Type: "Long", Column: "lead_id"}, project.Attributes[2])
	assert.Equal(t, []RelationshipOutput{{Name: "lead", Target: "Employee", Cardinality: "one", From: "leadId", To: "id"}}, project.Relationships)
}

func TestSchema_ValidationError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `package bad

class: Order: {
	attribute: {
		id: {type: "Long", primaryKey: true}
		customerId: "Long"
	}
	relationship: customer: {target: "Customer", join: {from: "customerId", to: "id"}}
}
`)

	out, _, err := execute(t, "schema", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E106", resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)
}

func TestSchema_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.cue", "package broken\n\nclass: {\n")

	out, _, err := execute(t, "schema", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestSchema_NotFound(t *testing.T) {
	out, _, err := execute(t, "schema", "/nonexistent/schema")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "Error [E005]: schema directory not found: /nonexistent/schema\n", out)
}
