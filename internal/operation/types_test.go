package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/testutil"
)

func ref(t *testing.T, class, name string, path ...*metadata.Relationship) AttributeRef {
	t.Helper()
	attr := testutil.Attribute(t, class, name)
	return AttributeRef{Path: path, Attribute: attr, Type: attr.Type}
}

func TestOperationString(t *testing.T) {
	age := ref(t, "Employee", "age")
	dept := testutil.Relationship(t, "Employee", "department")
	emps := testutil.Relationship(t, "Department", "employees")

	lowerName := ref(t, "Employee", "name")
	lowerName.Functions = []FunctionCall{{Function: Substring, Start: 0, End: 3}, {Function: ToLowerCase}}

	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{
			name: "and of compares",
			op: And{Children: []Operation{
				Compare{Attribute: age, Operator: GreaterThan, Value: ir.Integer(18)},
				Compare{Attribute: age, Operator: LessThan, Value: ir.Integer(65)},
			}},
			want: "And[Compare(age greaterThan 18), Compare(age lessThan 65)]",
		},
		{
			name: "or with constants",
			op:   Or{Children: []Operation{All{}, None{}}},
			want: "Or[All, None]",
		},
		{
			name: "set membership",
			op: SetMembership{
				Attribute: ref(t, "Employee", "region"),
				Operator:  In,
				Values:    ir.List{Elem: ir.TypeString, Values: []ir.Value{ir.String("east"), ir.String("west")}},
			},
			want: `SetMembership(region in ("east", "west"))`,
		},
		{
			name: "string pattern with functions",
			op:   StringPattern{Attribute: lowerName, Operator: StartsWith, Pattern: "jo"},
			want: `StringPattern(toLowerCase(substring(name, 0, 3)) startsWith "jo")`,
		},
		{
			name: "null through relationship",
			op:   Null{Attribute: ref(t, "Department", "name", dept), IsNull: true},
			want: "Null(department.name isNull)",
		},
		{
			name: "exists",
			op: Exists{
				Relationship: RelationshipRef{Path: []*metadata.Relationship{dept, emps}},
				Operation:    Compare{Attribute: ref(t, "Employee", "salary"), Operator: GreaterThan, Value: ir.Long(100000)},
			},
			want: "Exists(department.employees, Compare(salary greaterThan 100000))",
		},
		{
			name: "not exists",
			op: Exists{
				Relationship: RelationshipRef{Path: []*metadata.Relationship{testutil.Relationship(t, "Employee", "projects")}},
				Operation:    All{},
				Negated:      true,
			},
			want: "NotExists(projects, All)",
		},
		{
			name: "edge point",
			op:   EdgePointEquals{Attribute: ref(t, "Employee", "processingDate")},
			want: "EdgePointEquals(processingDate)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestRelationshipRefTarget(t *testing.T) {
	r := RelationshipRef{Path: []*metadata.Relationship{
		testutil.Relationship(t, "Employee", "department"),
		testutil.Relationship(t, "Department", "employees"),
	}}
	assert.Equal(t, "Employee", r.Target())
	assert.Equal(t, "", RelationshipRef{}.Target())
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators() {
		got, ok := ParseOperator(string(op))
		assert.True(t, ok, op)
		assert.Equal(t, op, got)
	}

	got, ok := ParseOperator("wildcardIn")
	assert.True(t, ok)
	assert.Equal(t, WildCardIn, got)

	_, ok = ParseOperator("like")
	assert.False(t, ok)
}

func TestOperatorShape(t *testing.T) {
	assert.Equal(t, Unary, IsNull.Arity())
	assert.Equal(t, Unary, EqualsEdgePoint.Arity())
	assert.Equal(t, Existence, NotExists.Arity())
	assert.Equal(t, Binary, StartsWith.Arity())

	assert.Equal(t, Many, In.Cardinality())
	assert.Equal(t, Many, WildCardIn.Cardinality())
	assert.Equal(t, One, Eq.Cardinality())
	assert.Equal(t, "list", Many.String())
}

func TestParseFunction(t *testing.T) {
	for _, f := range Functions() {
		got, ok := ParseFunction(string(f))
		assert.True(t, ok)
		assert.Equal(t, f, got)
	}
	_, ok := ParseFunction("toUpperCase")
	assert.False(t, ok)
	assert.Equal(t, "substring(1, 4)", FunctionCall{Function: Substring, Start: 1, End: 4}.String())
}
