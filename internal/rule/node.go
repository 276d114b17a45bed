package rule

import "strings"

// Node is a sealed interface for rule tree nodes.
// Only *Group and *Condition implement it.
type Node interface {
	ruleNode() // Marker method - seals interface to this package
}

// Conjunction combines the children of a Group.
type Conjunction string

const (
	And Conjunction = "and"
	Or  Conjunction = "or"
)

// ParseConjunction reads a conjunction token case-insensitively.
// Anything other than "or" is treated as "and".
func ParseConjunction(s string) Conjunction {
	if strings.EqualFold(strings.TrimSpace(s), string(Or)) {
		return Or
	}
	return And
}

// Group is an and/or combinator over an ordered list of children.
// An empty group is valid.
type Group struct {
	Conjunction Conjunction
	Children    []Node
}

func (*Group) ruleNode() {}

// Condition is a leaf comparing Field with Operator and Value.
//
// Value is Absent for nullary operators, a Sequence for set and range
// operators, and a scalar otherwise. A nil Value is read as Absent.
type Condition struct {
	Field    string
	Operator string
	Value    Value
}

func (*Condition) ruleNode() {}

// NewGroup creates a group with the given children.
func NewGroup(conj Conjunction, children ...Node) *Group {
	if conj == "" {
		conj = And
	}
	if children == nil {
		children = []Node{}
	}
	return &Group{Conjunction: conj, Children: children}
}

// NewCondition creates a condition leaf. A nil value becomes Absent.
func NewCondition(field, operator string, value Value) *Condition {
	if value == nil {
		value = Absent{}
	}
	return &Condition{Field: field, Operator: operator, Value: value}
}

// ValueOrAbsent returns the condition value, mapping nil to Absent.
func (c *Condition) ValueOrAbsent() Value {
	if c.Value == nil {
		return Absent{}
	}
	return c.Value
}

// Clone returns a deep copy of n. Edits to the copy never reach n.
func Clone(n Node) Node {
	switch node := n.(type) {
	case *Group:
		if node == nil {
			return nil
		}
		children := make([]Node, 0, len(node.Children))
		for _, child := range node.Children {
			children = append(children, Clone(child))
		}
		return &Group{Conjunction: node.Conjunction, Children: children}
	case *Condition:
		if node == nil {
			return nil
		}
		return &Condition{Field: node.Field, Operator: node.Operator, Value: cloneValue(node.Value)}
	default:
		return nil
	}
}

func cloneValue(v Value) Value {
	if seq, ok := v.(Sequence); ok {
		out := make(Sequence, len(seq))
		copy(out, seq)
		return out
	}
	return v
}
