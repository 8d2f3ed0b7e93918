package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/opql/internal/ir"
	"github.com/roach88/opql/internal/metadata"
	"github.com/roach88/opql/internal/testutil"
)

func TestMarshalCanonical(t *testing.T) {
	op := And{Children: []Operation{
		Compare{Attribute: ref(t, "Employee", "bonus"), Operator: GreaterThanEquals, Value: ir.Double(1.5)},
		Null{Attribute: ref(t, "Employee", "managerId"), IsNull: false},
	}}

	got, err := MarshalCanonical(op)
	require.NoError(t, err)
	assert.Equal(t,
		`{"children":[`+
			`{"attribute":{"class":"Employee","functions":[],"name":"bonus","path":[],"type":"Double"},"kind":"compare","operator":"greaterThanEquals","value":{"type":"Double","value":"1.5"}},`+
			`{"attribute":{"class":"Employee","functions":[],"name":"managerId","path":[],"type":"Long"},"isNull":false,"kind":"null"}`+
			`],"kind":"and"}`,
		string(got))
}

func TestMarshalCanonicalExists(t *testing.T) {
	op := Exists{
		Relationship: RelationshipRef{Path: []*metadata.Relationship{testutil.Relationship(t, "Employee", "projects")}},
		Operation:    None{},
		Negated:      true,
	}
	got, err := MarshalCanonical(op)
	require.NoError(t, err)
	assert.Equal(t, `{"kind":"exists","negated":true,"operation":{"kind":"none"},"relationship":["Employee.projects"]}`, string(got))
}

func TestEncodeDeterministic(t *testing.T) {
	op := SetMembership{
		Attribute: ref(t, "Employee", "grade"),
		Operator:  NotIn,
		Values:    ir.List{Elem: ir.TypeCharacter, Values: []ir.Value{ir.Character('A'), ir.Character('B')}},
	}
	first, err := MarshalCanonical(op)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(op)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWalk(t *testing.T) {
	inner := Compare{Attribute: ref(t, "Employee", "age"), Operator: Eq, Value: ir.Integer(1)}
	op := Or{Children: []Operation{
		Exists{
			Relationship: RelationshipRef{Path: []*metadata.Relationship{testutil.Relationship(t, "Employee", "manager")}},
			Operation:    inner,
		},
		And{Children: []Operation{All{}, None{}}},
	}}

	var visited []string
	Walk(op, func(o Operation) bool {
		visited = append(visited, o.String())
		return true
	})
	assert.Equal(t, []string{
		op.String(),
		op.Children[0].String(),
		inner.String(),
		op.Children[1].String(),
		"All",
		"None",
	}, visited)

	count := 0
	Walk(op, func(o Operation) bool {
		count++
		_, isExists := o.(Exists)
		return !isExists
	})
	assert.Equal(t, 5, count, "children of Exists are skipped")
}
