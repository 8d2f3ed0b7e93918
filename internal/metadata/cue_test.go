package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/ir"
)

const orgSchema = `
class: Employee: {
	attribute: {
		id:           {type: "Long", primaryKey: true}
		name:         "String"
		departmentId: "Long"
		asOf:         {type: "AsOf", column: "as_of_ts"}
	}
	relationship: department: {
		target: "Department"
		join: {from: "departmentId", to: "id"}
	}
}

class: Department: {
	table: "departments"
	attribute: {
		id:   {type: "Long", primaryKey: true}
		name: "String"
	}
	relationship: employees: {
		target:      "Employee"
		cardinality: "many"
		join: {from: "id", to: "departmentId"}
	}
}
`

func TestParseSchema(t *testing.T) {
	cat, err := ParseSchema([]byte(orgSchema), "org.cue")
	require.NoError(t, err)

	emp, ok := cat.Class("Employee")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "departmentId", "asOf"}, emp.AttributeNames())
	assert.Equal(t, "id", emp.PrimaryKey().Name)

	asOf, _ := emp.Attribute("asOf")
	assert.Equal(t, ir.TypeAsOf, asOf.Type)
	assert.Equal(t, "as_of_ts", asOf.Column)

	dept, ok := cat.Class("Department")
	require.True(t, ok)
	assert.Equal(t, "departments", dept.Table)
	rel, ok := dept.Relationship("employees")
	require.True(t, ok)
	assert.Equal(t, Many, rel.Cardinality)
	assert.Equal(t, "Employee", rel.Target)
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "no classes",
			src:   `other: 1`,
			field: "class",
		},
		{
			name:  "no attributes",
			src:   `class: Empty: {table: "empty"}`,
			field: "attribute",
		},
		{
			name:  "unknown type",
			src:   `class: A: attribute: id: "Decimal"`,
			field: "attribute.id.type",
		},
		{
			name:  "struct without type",
			src:   `class: A: attribute: id: {primaryKey: true}`,
			field: "attribute.id.type",
		},
		{
			name: "bad cardinality",
			src: `class: A: {
				attribute: id: {type: "Long", primaryKey: true}
				relationship: self: {target: "A", cardinality: "lots", join: {from: "id", to: "id"}}
			}`,
			field: "relationship.self.cardinality",
		},
		{
			name: "missing join",
			src: `class: A: {
				attribute: id: {type: "Long", primaryKey: true}
				relationship: self: {target: "A"}
			}`,
			field: "relationship.self.join.from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema([]byte(tt.src), "bad.cue")
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestParseSchemaSyntaxError(t *testing.T) {
	_, err := ParseSchema([]byte(`class: {`), "broken.cue")
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cue", ce.Field)
	assert.Contains(t, err.Error(), "broken.cue")
}

func TestParseSchemaValidationError(t *testing.T) {
	_, err := ParseSchema([]byte(`class: A: attribute: name: "String"`), "nokey.cue")
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrPrimaryKey, se.Errors[0].Code)
}
