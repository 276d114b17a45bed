package fetchxml

import (
	"errors"
	"strings"

	"github.com/beevik/etree"

	"github.com/roach88/fetchqb/internal/rule"
)

// DefaultEntityName is used when an entity element has no name attribute,
// and by the encoder when no entity name is supplied.
const DefaultEntityName = "entity"

// Result is the outcome of decoding a FetchXML document.
type Result struct {
	Rule       *rule.Group
	Fields     []rule.Field
	EntityName string
}

// ZeroResult is returned by Parse for absent or unusable input: an empty
// AND group, no fields and an empty entity name.
func ZeroResult() Result {
	return Result{
		Rule:   rule.NewGroup(rule.And),
		Fields: []rule.Field{},
	}
}

// Decoder decodes FetchXML into a rule tree.
// The zero value follows the default wildcard policy.
type Decoder struct {
	// PreserveWildcards keeps like values verbatim instead of stripping
	// leading and trailing wildcards.
	PreserveWildcards bool
}

var defaultDecoder = &Decoder{}

// Decode parses xmlText with the default decoder.
func Decode(xmlText string) (Result, error) {
	return defaultDecoder.Decode(xmlText)
}

// Parse is the total form of Decode: any decode error yields ZeroResult.
func Parse(xmlText string) Result {
	return defaultDecoder.Parse(xmlText)
}

// Parse is the total form of Decode: any decode error yields ZeroResult.
func (d *Decoder) Parse(xmlText string) Result {
	res, err := d.Decode(xmlText)
	if err != nil {
		return ZeroResult()
	}
	return res
}

// Decode parses xmlText into a rule tree, the inferred field list and the
// entity name. Errors are *DecodeError.
func (d *Decoder) Decode(xmlText string) (Result, error) {
	if strings.TrimSpace(xmlText) == "" {
		return ZeroResult(), &DecodeError{Reason: ReasonEmpty}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return ZeroResult(), &DecodeError{Reason: ReasonMalformed, Err: err}
	}
	if doc.Root() == nil {
		return ZeroResult(), &DecodeError{Reason: ReasonMalformed, Err: errors.New("document has no root element")}
	}

	fetchEl := doc.FindElement("//fetch")
	if fetchEl == nil {
		return ZeroResult(), &DecodeError{Reason: ReasonNoFetch}
	}
	entityEl := fetchEl.FindElement(".//entity")
	if entityEl == nil {
		return ZeroResult(), &DecodeError{Reason: ReasonNoEntity}
	}

	res := Result{
		EntityName: entityEl.SelectAttrValue("name", DefaultEntityName),
	}

	var projected []rule.Field
	for _, attr := range entityEl.SelectElements("attribute") {
		if name := attr.SelectAttrValue("name", ""); name != "" {
			projected = append(projected, rule.NewField(name))
		}
	}

	// Sibling filters under the entity are implicitly ANDed.
	filters := entityEl.SelectElements("filter")
	switch len(filters) {
	case 0:
		res.Rule = rule.NewGroup(rule.And)
	case 1:
		res.Rule = d.decodeFilter(filters[0])
	default:
		root := rule.NewGroup(rule.And)
		for _, f := range filters {
			root.Children = append(root.Children, d.decodeFilter(f))
		}
		res.Rule = root
	}

	res.Fields = InferFields(projected, res.Rule)
	return res, nil
}

// InferFields returns projected followed by an inferred descriptor for every
// field referenced in tree that projected does not already name.
func InferFields(projected []rule.Field, tree rule.Node) []rule.Field {
	referenced := rule.ReferencedFields(tree)
	inferred := make([]rule.Field, 0, len(referenced))
	for _, name := range referenced {
		inferred = append(inferred, rule.NewField(name))
	}
	return rule.UnionFields(projected, inferred)
}

// decodeFilter converts a filter element and its nested filters into a
// group. Children other than condition and filter are ignored.
func (d *Decoder) decodeFilter(el *etree.Element) *rule.Group {
	g := rule.NewGroup(rule.ParseConjunction(el.SelectAttrValue("type", "and")))
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "condition":
			g.Children = append(g.Children, d.decodeCondition(child))
		case "filter":
			g.Children = append(g.Children, d.decodeFilter(child))
		}
	}
	return g
}

// decodeCondition reads a condition element. The value comes from the value
// attribute when present, otherwise from nested value elements.
func (d *Decoder) decodeCondition(el *etree.Element) *rule.Condition {
	field := el.SelectAttrValue("attribute", "")
	op := el.SelectAttrValue("operator", "eq")

	var value rule.Value = rule.Absent{}
	if attr := el.SelectAttr("value"); attr != nil {
		value = rule.Str(attr.Value)
	} else if valueEls := el.SelectElements("value"); len(valueEls) > 0 {
		seq := make(rule.Sequence, 0, len(valueEls))
		for _, v := range valueEls {
			seq = append(seq, rule.Str(v.Text()))
		}
		value = seq
	}

	if s, ok := value.(rule.Str); ok && strings.EqualFold(op, "like") && !d.PreserveWildcards {
		value = rule.Str(StripWildcards(string(s)))
	}

	return rule.NewCondition(field, op, value)
}
