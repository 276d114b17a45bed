package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Group {
	return NewGroup(And,
		NewCondition("revenue", "gt", Str("1000")),
		NewGroup(Or,
			NewCondition("name", "like", Str("%contoso%")),
			NewCondition("revenue", "null", nil),
		),
		NewCondition("statecode", "in", Strs("0", "1")),
	)
}

func TestParseConjunction(t *testing.T) {
	assert.Equal(t, And, ParseConjunction("and"))
	assert.Equal(t, And, ParseConjunction("AND"))
	assert.Equal(t, Or, ParseConjunction("Or"))
	assert.Equal(t, Or, ParseConjunction(" or "))
	assert.Equal(t, And, ParseConjunction(""))
	assert.Equal(t, And, ParseConjunction("xor"))
}

func TestNewCondition_NilValueIsAbsent(t *testing.T) {
	c := NewCondition("name", "null", nil)
	assert.Equal(t, Absent{}, c.Value)

	bare := &Condition{Field: "name", Operator: "null"}
	assert.Equal(t, Absent{}, bare.ValueOrAbsent())
}

func TestNewGroup_Defaults(t *testing.T) {
	g := NewGroup("")
	assert.Equal(t, And, g.Conjunction)
	assert.NotNil(t, g.Children)
	assert.Empty(t, g.Children)
}

func TestNode_SealedSwitch(t *testing.T) {
	var n Node = NewCondition("a", "eq", Str("1"))
	switch n.(type) {
	case *Condition:
		// Expected
	case *Group:
		t.Fatal("unexpected type")
	}
}

func TestClone_IsDeep(t *testing.T) {
	orig := sampleTree()
	cp := Clone(orig).(*Group)
	require.Equal(t, orig, cp)

	cp.Children[0].(*Condition).Field = "changed"
	cp.Children[1].(*Group).Children = nil
	cp.Children[2].(*Condition).Value.(Sequence)[0] = Str("9")

	assert.Equal(t, "revenue", orig.Children[0].(*Condition).Field)
	assert.Len(t, orig.Children[1].(*Group).Children, 2)
	assert.Equal(t, Str("0"), orig.Children[2].(*Condition).Value.(Sequence)[0])
}

func TestClone_Nil(t *testing.T) {
	assert.Nil(t, Clone(nil))
	var g *Group
	assert.Nil(t, Clone(g))
}

func TestReferencedFields_DocumentOrderDistinct(t *testing.T) {
	assert.Equal(t, []string{"revenue", "name", "statecode"}, ReferencedFields(sampleTree()))
}

func TestReferencedFields_SkipsEmptyField(t *testing.T) {
	g := NewGroup(And, NewCondition("", "eq", Str("x")))
	assert.Empty(t, ReferencedFields(g))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(NewGroup(And)))
	assert.True(t, IsEmpty(NewGroup(And, NewGroup(Or), NewGroup(And, NewGroup(Or)))))
	assert.False(t, IsEmpty(sampleTree()))
	assert.True(t, IsEmpty(nil))
}

func TestCountConditions(t *testing.T) {
	assert.Equal(t, 4, CountConditions(sampleTree()))
	assert.Equal(t, 0, CountConditions(NewGroup(Or)))
}

func TestWalk_SkipsNilChildren(t *testing.T) {
	g := NewGroup(And, nil, NewCondition("a", "eq", Str("1")))
	var visited int
	Walk(g, func(Node) { visited++ })
	assert.Equal(t, 2, visited)
}
