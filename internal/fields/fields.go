// Package fields maps host attribute metadata onto rule field descriptors
// and provides the per-type operator menus offered by the rule editor.
package fields

import (
	"strings"

	"github.com/roach88/fetchqb/internal/rule"
)

// attributeTypes maps lower-cased host attribute type names to field types.
// The canonical field type names map to themselves.
var attributeTypes = map[string]rule.FieldType{
	"string":         rule.TypeString,
	"memo":           rule.TypeString,
	"sstring":        rule.TypeString,
	"number":         rule.TypeNumber,
	"integer":        rule.TypeNumber,
	"int":            rule.TypeNumber,
	"bigint":         rule.TypeNumber,
	"decimal":        rule.TypeNumber,
	"double":         rule.TypeNumber,
	"money":          rule.TypeNumber,
	"date":           rule.TypeDate,
	"datetime":       rule.TypeDate,
	"dateandtime":    rule.TypeDate,
	"datetimeoffset": rule.TypeDate,
	"boolean":        rule.TypeBoolean,
	"bool":           rule.TypeBoolean,
}

// Normalize maps a host attribute type name to a field type.
// Unknown and empty names are strings.
func Normalize(attributeType string) rule.FieldType {
	if t, ok := attributeTypes[strings.ToLower(strings.TrimSpace(attributeType))]; ok {
		return t
	}
	return rule.TypeString
}

// Descriptor builds a field descriptor from host metadata. An empty display
// name falls back to the logical name.
func Descriptor(logicalName, displayName, attributeType string) rule.Field {
	label := displayName
	if label == "" {
		label = logicalName
	}
	return rule.Field{
		Name:  logicalName,
		Label: label,
		Type:  Normalize(attributeType),
	}
}

// Resolve returns the field list visible to the editor: external
// descriptors first, then inferred ones. Uniqueness is by name and the
// first occurrence wins, so external descriptors take precedence for label
// and type.
func Resolve(external, inferred []rule.Field) []rule.Field {
	return rule.UnionFields(external, inferred)
}
