package rule

// FieldType is the coarse data type of a queryable attribute.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeDate    FieldType = "date"
	TypeBoolean FieldType = "boolean"
)

// Valid reports whether t is one of the four known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeDate, TypeBoolean:
		return true
	default:
		return false
	}
}

// Field describes a queryable attribute. Name is the unique key.
// The JSON shape matches the host's {field, label, type} column tuples.
type Field struct {
	Name  string    `json:"field" yaml:"field"`
	Label string    `json:"label,omitempty" yaml:"label,omitempty"`
	Type  FieldType `json:"type,omitempty" yaml:"type,omitempty"`
}

// NewField returns the inferred descriptor for name: label=name, type=string.
func NewField(name string) Field {
	return Field{Name: name, Label: name, Type: TypeString}
}

// DisplayLabel returns Label, or Name when no label is set.
func (f Field) DisplayLabel() string {
	if f.Label == "" {
		return f.Name
	}
	return f.Label
}

// FieldNames returns the names of fields in order, skipping empty names.
func FieldNames(fields []Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// UnionFields merges descriptor lists by name. The first occurrence of a
// name wins for label and type; order is first-seen order. Missing types
// default to string.
func UnionFields(lists ...[]Field) []Field {
	seen := make(map[string]bool)
	out := []Field{}
	for _, list := range lists {
		for _, f := range list {
			if f.Name == "" || seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			if f.Type == "" {
				f.Type = TypeString
			}
			out = append(out, f)
		}
	}
	return out
}
