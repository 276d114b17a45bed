package fetchxml

import (
	"fmt"
	"strings"

	"github.com/roach88/fetchqb/internal/rule"
)

// EmptyQuery is emitted by Serialize when encoding fails.
const EmptyQuery = "<fetch />"

// Encoder writes rule trees as FetchXML.
type Encoder struct {
	// Indent is repeated once per nesting level.
	Indent string

	// EntityPlaceholder replaces an empty entity name.
	EntityPlaceholder string
}

// NewEncoder creates an Encoder with two-space indentation.
func NewEncoder() *Encoder {
	return &Encoder{
		Indent:            "  ",
		EntityPlaceholder: DefaultEntityName,
	}
}

var defaultEncoder = NewEncoder()

// Encode writes root with the default encoder.
func Encode(root rule.Node, entityName string, fields []rule.Field) (string, error) {
	return defaultEncoder.Encode(root, entityName, fields)
}

// Serialize is the total form of Encode: any encode error yields EmptyQuery.
func Serialize(root rule.Node, entityName string, fields []rule.Field) string {
	return defaultEncoder.Serialize(root, entityName, fields)
}

// Serialize is the total form of Encode: any encode error yields EmptyQuery.
func (e *Encoder) Serialize(root rule.Node, entityName string, fields []rule.Field) string {
	out, err := e.Encode(root, entityName, fields)
	if err != nil {
		return EmptyQuery
	}
	return out
}

// Encode writes a complete FetchXML document.
//
// The entity projects every supplied field plus every field referenced by a
// condition, in that order. The root filter is omitted when the tree holds
// no condition. Errors are *EncodeError.
func (e *Encoder) Encode(root rule.Node, entityName string, fields []rule.Field) (string, error) {
	group, ok := root.(*rule.Group)
	if !ok || group == nil {
		return "", &EncodeError{Path: "$", Message: fmt.Sprintf("root must be a group, got %T", root)}
	}

	if entityName == "" {
		entityName = e.EntityPlaceholder
	}

	var inner []string
	for _, name := range AttributeSet(group, fields) {
		inner = append(inner, e.indent(2)+fmt.Sprintf(`<attribute name="%s" />`, Escape(name)))
	}

	if !rule.IsEmpty(group) {
		filter, err := e.encodeGroup(group, 2, "$")
		if err != nil {
			return "", err
		}
		inner = append(inner, filter)
	}

	var b strings.Builder
	b.WriteString(`<fetch mapping="logical">` + "\n")
	b.WriteString(e.wrap(1, fmt.Sprintf(`<entity name="%s">`, Escape(entityName)), "</entity>", inner))
	b.WriteString("\n</fetch>")
	return b.String(), nil
}

// AttributeSet returns the names to project: supplied field names followed
// by every field referenced in tree, without duplicates.
func AttributeSet(tree rule.Node, fields []rule.Field) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, f := range fields {
		add(f.Name)
	}
	for _, name := range rule.ReferencedFields(tree) {
		add(name)
	}
	return names
}

func (e *Encoder) indent(depth int) string {
	return strings.Repeat(e.Indent, depth)
}

// wrap renders open/close tags around pre-indented inner lines. Without
// inner lines both tags share one line.
func (e *Encoder) wrap(depth int, openTag, closeTag string, inner []string) string {
	pad := e.indent(depth)
	if len(inner) == 0 {
		return pad + openTag + closeTag
	}
	return pad + openTag + "\n" + strings.Join(inner, "\n") + "\n" + pad + closeTag
}

func (e *Encoder) encodeNode(n rule.Node, depth int, path string) (string, error) {
	switch node := n.(type) {
	case *rule.Group:
		if node == nil {
			return "", nil
		}
		return e.encodeGroup(node, depth, path)
	case *rule.Condition:
		if node == nil {
			return "", nil
		}
		return e.encodeCondition(node, depth, path)
	case nil:
		return "", nil
	default:
		return "", &EncodeError{Path: path, Message: fmt.Sprintf("unsupported node type %T", n)}
	}
}

// encodeGroup writes a filter element. Children that encode to nothing
// (nil nodes) are dropped.
func (e *Encoder) encodeGroup(g *rule.Group, depth int, path string) (string, error) {
	conj := g.Conjunction
	if conj == "" {
		conj = rule.And
	}

	var children []string
	for i, child := range g.Children {
		out, err := e.encodeNode(child, depth+1, fmt.Sprintf("%s.rules[%d]", path, i))
		if err != nil {
			return "", err
		}
		if out != "" {
			children = append(children, out)
		}
	}

	open := fmt.Sprintf(`<filter type="%s">`, Escape(strings.ToLower(string(conj))))
	return e.wrap(depth, open, "</filter>", children), nil
}

func (e *Encoder) encodeCondition(c *rule.Condition, depth int, path string) (string, error) {
	token := Translate(c.Operator)
	pad := e.indent(depth)
	field := Escape(c.Field)
	value := c.ValueOrAbsent()

	switch {
	case IsNullary(token):
		return fmt.Sprintf(`%s<condition attribute="%s" operator="%s" />`,
			pad, field, Escape(strings.ToLower(token))), nil

	case IsMultiValue(token):
		values, err := sequenceOf(value, path)
		if err != nil {
			return "", err
		}
		var inner []string
		for _, v := range values {
			inner = append(inner, e.indent(depth+1)+"<value>"+Escape(v)+"</value>")
		}
		open := fmt.Sprintf(`<condition attribute="%s" operator="%s">`, field, Escape(strings.ToLower(token)))
		return e.wrap(depth, open, "</condition>", inner), nil
	}

	text, err := scalarText(value, path)
	if err != nil {
		return "", err
	}
	if flavor, ok := lookupPattern(c.Operator); ok {
		token = flavor.token
		text = flavor.wrap(text)
	}
	return fmt.Sprintf(`%s<condition attribute="%s" operator="%s" value="%s" />`,
		pad, field, Escape(token), Escape(text)), nil
}

// sequenceOf coerces a value to the list form of set and range operators.
// A scalar is split on commas and each part trimmed; a blank scalar or an
// absent value yields no values.
func sequenceOf(v rule.Value, path string) ([]string, error) {
	switch val := v.(type) {
	case rule.Sequence:
		return rule.Texts(val), nil
	case rule.Absent:
		return nil, nil
	case rule.Scalar:
		s := rule.Text(val)
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, &EncodeError{Path: path, Message: fmt.Sprintf("unsupported value type %T", v)}
	}
}

// scalarText coerces a value to the single text of scalar operators.
// Absent becomes empty text and a Sequence is joined with commas.
func scalarText(v rule.Value, path string) (string, error) {
	switch val := v.(type) {
	case rule.Scalar:
		return rule.Text(val), nil
	case rule.Sequence:
		return strings.Join(rule.Texts(val), ","), nil
	case rule.Absent:
		return "", nil
	default:
		return "", &EncodeError{Path: path, Message: fmt.Sprintf("unsupported value type %T", v)}
	}
}
