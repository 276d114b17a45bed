package fetchxml

import "strings"

// Wildcard is the FetchXML "any sequence" marker used by like.
const Wildcard = "%"

// operatorTable maps rule editor operator names (lower-case) to FetchXML
// operator tokens. Tokens that are already FetchXML pass through Translate
// unchanged, so they are not listed.
var operatorTable = map[string]string{
	"equal":              "eq",
	"=":                  "eq",
	"notequal":           "ne",
	"!=":                 "ne",
	"lessthan":           "lt",
	"greaterthan":        "gt",
	"lessthanorequal":    "le",
	"greaterthanorequal": "ge",
	"contains":           "like",
	"notcontains":        "not-like",
	"like":               "like",
	"startswith":         "like",
	"endswith":           "like",
	"in":                 "in",
	"not-in":             "not-in",
	"notin":              "not-in",
	"null":               "null",
	"isnull":             "null",
	"not-null":           "not-null",
	"isnotnull":          "not-null",
	"between":            "between",
	"notbetween":         "not-between",
	"not-between":        "not-between",
}

// Translate maps a rule editor operator to its FetchXML token.
// Lookup is case-insensitive. An empty operator is equality; unmapped
// operators pass through unchanged.
func Translate(op string) string {
	if op == "" {
		return "eq"
	}
	if mapped, ok := operatorTable[strings.ToLower(op)]; ok {
		return mapped
	}
	return op
}

// IsNullary reports whether the FetchXML token takes no value.
func IsNullary(token string) bool {
	switch strings.ToLower(token) {
	case "null", "not-null":
		return true
	default:
		return false
	}
}

// IsSetMembership reports whether the FetchXML token takes a value list.
func IsSetMembership(token string) bool {
	switch strings.ToLower(token) {
	case "in", "not-in":
		return true
	default:
		return false
	}
}

// IsRange reports whether the FetchXML token takes a lower and upper bound.
// Range conditions are encoded with nested value elements like set membership.
func IsRange(token string) bool {
	switch strings.ToLower(token) {
	case "between", "not-between":
		return true
	default:
		return false
	}
}

// IsMultiValue reports whether conditions with this token carry a Sequence.
func IsMultiValue(token string) bool {
	return IsSetMembership(token) || IsRange(token)
}

// patternFlavor records which side(s) of a value get a wildcard.
type patternFlavor struct {
	token    string
	leading  bool
	trailing bool
}

// patternFlavors is keyed by the lower-cased rule editor operator.
var patternFlavors = map[string]patternFlavor{
	"like":        {token: "like"},
	"contains":    {token: "like", leading: true, trailing: true},
	"startswith":  {token: "like", trailing: true},
	"endswith":    {token: "like", leading: true},
	"notcontains": {token: "not-like", leading: true, trailing: true},
}

// lookupPattern returns the pattern flavor for a rule editor operator.
func lookupPattern(op string) (patternFlavor, bool) {
	f, ok := patternFlavors[strings.ToLower(op)]
	return f, ok
}

// IsPattern reports whether the rule editor operator belongs to the
// pattern-match family.
func IsPattern(op string) bool {
	_, ok := lookupPattern(op)
	return ok
}

// wrap applies the flavor's wildcards to s.
func (f patternFlavor) wrap(s string) string {
	if f.leading {
		s = Wildcard + s
	}
	if f.trailing {
		s += Wildcard
	}
	return s
}

// StripWildcards removes every leading and trailing wildcard from s.
func StripWildcards(s string) string {
	return strings.TrimRight(strings.TrimLeft(s, Wildcard), Wildcard)
}
