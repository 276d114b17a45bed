package fields

import "github.com/roach88/fetchqb/internal/rule"

// Operator is one entry of an editor operator menu.
type Operator struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

var (
	opEq       = Operator{Key: "eq", Text: "Equals"}
	opNe       = Operator{Key: "ne", Text: "Not equals"}
	opLt       = Operator{Key: "lt", Text: "Less than"}
	opGt       = Operator{Key: "gt", Text: "Greater than"}
	opLe       = Operator{Key: "le", Text: "Less or equal"}
	opGe       = Operator{Key: "ge", Text: "Greater or equal"}
	opBetween  = Operator{Key: "between", Text: "Between"}
	opIn       = Operator{Key: "in", Text: "In"}
	opNotIn    = Operator{Key: "not-in", Text: "Not in"}
	opNull     = Operator{Key: "null", Text: "Null"}
	opNotNull  = Operator{Key: "not-null", Text: "Not null"}
	opEqual    = Operator{Key: "equal", Text: "Equals"}
	opNotEqual = Operator{Key: "notequal", Text: "Not equals"}
	opContains = Operator{Key: "contains", Text: "Contains"}
	opNotCont  = Operator{Key: "notcontains", Text: "Not contains"}
	opStarts   = Operator{Key: "startswith", Text: "Starts with"}
	opEnds     = Operator{Key: "endswith", Text: "Ends with"}
)

// menus holds the operator menu for each field type. String fields use the
// editor's own names, which the serializer translates; the other types use
// FetchXML tokens directly.
var menus = map[rule.FieldType][]Operator{
	rule.TypeDate:    {opEq, opNe, opLt, opGt, opLe, opGe, opBetween, opNull, opNotNull},
	rule.TypeNumber:  {opEq, opNe, opLt, opGt, opLe, opGe, opIn, opNotIn, opNull, opNotNull},
	rule.TypeBoolean: {opEq, opNe, opNull, opNotNull},
	rule.TypeString:  {opEqual, opNotEqual, opContains, opNotCont, opStarts, opEnds, opNull, opNotNull},
}

// OperatorsFor returns a copy of the operator menu for t.
// Invalid types get the string menu.
func OperatorsFor(t rule.FieldType) []Operator {
	menu, ok := menus[t]
	if !ok {
		menu = menus[rule.TypeString]
	}
	return append([]Operator(nil), menu...)
}

// Supports reports whether op appears in the menu for t.
func Supports(t rule.FieldType, op string) bool {
	for _, o := range OperatorsFor(t) {
		if o.Key == op {
			return true
		}
	}
	return false
}

// BooleanValues returns the fixed value choices for boolean fields and nil
// for every other type.
func BooleanValues(t rule.FieldType) []rule.Bool {
	if t != rule.TypeBoolean {
		return nil
	}
	return []rule.Bool{true, false}
}
