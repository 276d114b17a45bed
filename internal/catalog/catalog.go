package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fetchqb/internal/fields"
	"github.com/roach88/fetchqb/internal/rule"
)

// ErrUnknownEntity is returned by FieldsFor for an entity not in the catalog.
var ErrUnknownEntity = errors.New("unknown entity")

// FieldMetadata describes one attribute of an entity as the host reports it.
type FieldMetadata struct {
	Name          string `json:"name" yaml:"name"`
	DisplayName   string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	AttributeType string `json:"attributeType,omitempty" yaml:"attributeType,omitempty"`
}

// Descriptor converts f to a rule field with a normalized type.
func (f FieldMetadata) Descriptor() rule.Field {
	return fields.Descriptor(f.Name, f.DisplayName, f.AttributeType)
}

// EntityMetadata is one entity and its fields.
type EntityMetadata struct {
	Name        string          `json:"name" yaml:"name"`
	DisplayName string          `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Fields      []FieldMetadata `json:"fields" yaml:"fields"`
}

// EntityListItem is an entry of the entity picker.
type EntityListItem struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
}

// Label returns DisplayName, or Name when no display name is set.
func (e EntityListItem) Label() string {
	if e.DisplayName == "" {
		return e.Name
	}
	return e.DisplayName
}

// FieldProvider loads the fields of an entity.
type FieldProvider interface {
	FieldsFor(ctx context.Context, entity string) ([]FieldMetadata, error)
}

// file is the on-disk catalog document.
type file struct {
	Entities []EntityMetadata `json:"entities" yaml:"entities"`
}

// Catalog is an immutable, in-memory metadata catalog.
type Catalog struct {
	entities []EntityMetadata
	byName   map[string]int
}

// New builds a catalog from entities after normalizing and validating them.
// Entity names must be unique and non-empty, as must field names within an
// entity.
func New(entities []EntityMetadata) (*Catalog, error) {
	c := &Catalog{
		entities: make([]EntityMetadata, 0, len(entities)),
		byName:   make(map[string]int, len(entities)),
	}

	for i, e := range entities {
		e = normalizeEntity(e)
		if e.Name == "" {
			return nil, fmt.Errorf("entities[%d]: name is required", i)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("entities[%d]: duplicate entity %q", i, e.Name)
		}

		seen := make(map[string]bool, len(e.Fields))
		for j, f := range e.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("entities[%d].fields[%d]: name is required", i, j)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("entities[%d].fields[%d]: duplicate field %q", i, j, f.Name)
			}
			seen[f.Name] = true
		}

		c.byName[e.Name] = len(c.entities)
		c.entities = append(c.entities, e)
	}
	return c, nil
}

// Load reads a catalog file. The format follows the extension: .yaml and
// .yml are YAML, .cue is CUE.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, filepath.Base(path))
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (expected .yaml, .yml or .cue)", ext)
	}
}

// ParseYAML decodes a YAML catalog document.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog YAML: %w", err)
	}
	return New(doc.Entities)
}

// Entities lists the catalog's entities in file order.
func (c *Catalog) Entities() []EntityListItem {
	items := make([]EntityListItem, len(c.entities))
	for i, e := range c.entities {
		items[i] = EntityListItem{Name: e.Name, DisplayName: e.DisplayName}
	}
	return items
}

// Entity returns a copy of the named entity.
func (c *Catalog) Entity(name string) (EntityMetadata, bool) {
	i, ok := c.byName[norm.NFC.String(name)]
	if !ok {
		return EntityMetadata{}, false
	}
	e := c.entities[i]
	e.Fields = append([]FieldMetadata(nil), e.Fields...)
	return e, true
}

// FieldsFor returns the fields of entity in file order.
func (c *Catalog) FieldsFor(_ context.Context, entity string) ([]FieldMetadata, error) {
	e, ok := c.Entity(entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return e.Fields, nil
}

// Descriptors converts metadata to rule fields.
func Descriptors(meta []FieldMetadata) []rule.Field {
	out := make([]rule.Field, len(meta))
	for i, f := range meta {
		out[i] = f.Descriptor()
	}
	return out
}

func normalizeEntity(e EntityMetadata) EntityMetadata {
	e.Name = norm.NFC.String(strings.TrimSpace(e.Name))
	e.DisplayName = norm.NFC.String(e.DisplayName)

	fs := make([]FieldMetadata, len(e.Fields))
	for i, f := range e.Fields {
		fs[i] = FieldMetadata{
			Name:          norm.NFC.String(strings.TrimSpace(f.Name)),
			DisplayName:   norm.NFC.String(f.DisplayName),
			AttributeType: strings.TrimSpace(f.AttributeType),
		}
	}
	e.Fields = fs
	return e
}
