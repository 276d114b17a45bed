package rule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The wire shape follows the host rule editor:
//
//	{"condition": "and", "rules": [ ... ]}                 - group
//	{"field": "revenue", "operator": "gt", "value": 1000} - condition
//
// A map with a "rules" key is a group; anything else is a condition.

// MarshalJSON encodes a group in the host rule shape.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(g))
}

// MarshalJSON encodes a condition in the host rule shape.
// Absent values are omitted.
func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(c))
}

func toWire(n Node) map[string]any {
	switch node := n.(type) {
	case *Group:
		rules := make([]any, 0, len(node.Children))
		for _, child := range node.Children {
			if w := toWire(child); w != nil {
				rules = append(rules, w)
			}
		}
		conj := node.Conjunction
		if conj == "" {
			conj = And
		}
		return map[string]any{"condition": string(conj), "rules": rules}
	case *Condition:
		m := map[string]any{"field": node.Field, "operator": node.Operator}
		if v := valueToAny(node.ValueOrAbsent()); v != nil {
			m["value"] = v
		}
		return m
	default:
		return nil
	}
}

// UnmarshalNode decodes a rule tree from JSON.
// Numbers keep full precision through json.Number.
func UnmarshalNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rule JSON: %w", err)
	}
	return NodeFrom(raw)
}

// DecodeYAML decodes a rule tree from YAML using the same shape as JSON.
func DecodeYAML(data []byte) (Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rule YAML: %w", err)
	}
	return NodeFrom(raw)
}

// NodeFrom converts a generic decoded document into a rule tree.
func NodeFrom(raw any) (Node, error) {
	return nodeFrom(raw, "$")
}

func nodeFrom(raw any, path string) (Node, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %T", path, raw)
	}

	if rulesRaw, isGroup := m["rules"]; isGroup {
		conj, _ := m["condition"].(string)
		g := NewGroup(ParseConjunction(conj))
		if rulesRaw == nil {
			return g, nil
		}
		rules, ok := rulesRaw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s.rules: expected array, got %T", path, rulesRaw)
		}
		for i, r := range rules {
			child, err := nodeFrom(r, fmt.Sprintf("%s.rules[%d]", path, i))
			if err != nil {
				return nil, err
			}
			g.Children = append(g.Children, child)
		}
		return g, nil
	}

	field, _ := m["field"].(string)
	op, _ := m["operator"].(string)
	value, err := ValueFrom(m["value"])
	if err != nil {
		return nil, fmt.Errorf("%s.value: %w", path, err)
	}
	return NewCondition(field, op, value), nil
}
