package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fetchqb/internal/rule"
)

// Scenario is a conversion scenario read from YAML.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the FetchXML document loaded into the session first.
	// An empty source starts from the empty query.
	Source string `yaml:"source,omitempty"`

	// Entity is the placeholder entity name used when the source has none.
	Entity string `yaml:"entity,omitempty"`

	// PreserveWildcards keeps % wildcards when decoding pattern conditions.
	PreserveWildcards bool `yaml:"preserve_wildcards,omitempty"`

	// Fields are external descriptors supplied before any edit.
	Fields []rule.Field `yaml:"fields,omitempty"`

	// Edits are applied in order after loading.
	Edits []Edit `yaml:"edits,omitempty"`

	// Expect is checked against the final session state.
	Expect Expect `yaml:"expect"`
}

// Edit is one step of a scenario.
type Edit struct {
	Op string `yaml:"op"`

	// Path addresses a node by child indices from the root; empty is root.
	Path []int `yaml:"path,omitempty"`

	Field       string       `yaml:"field,omitempty"`
	Operator    string       `yaml:"operator,omitempty"`
	Value       any          `yaml:"value,omitempty"`
	Conjunction string       `yaml:"conjunction,omitempty"`
	Index       int          `yaml:"index,omitempty"`
	Fields      []rule.Field `yaml:"fields,omitempty"`
	Source      string       `yaml:"source,omitempty"`

	// Error, when set, expects the edit to be rejected with a message
	// containing this text. Rejected edits do not emit.
	Error string `yaml:"error,omitempty"`
}

// Expect lists checks against the final state.
type Expect struct {
	// XML is the exact final document, when set.
	XML string `yaml:"xml,omitempty"`

	// Contains lists substrings the final document must contain.
	Contains []string `yaml:"contains,omitempty"`

	// NotContains lists substrings the final document must not contain.
	NotContains []string `yaml:"not_contains,omitempty"`

	// Fields is the expected field name list, in order.
	Fields []string `yaml:"fields,omitempty"`

	// Entity is the expected entity name.
	Entity string `yaml:"entity,omitempty"`

	// Emitted is the expected number of change callbacks. Nil skips the check.
	Emitted *int `yaml:"emitted,omitempty"`

	// Conditions is the expected number of condition leaves. Nil skips the check.
	Conditions *int `yaml:"conditions,omitempty"`
}

// Edit operation names.
const (
	OpAddCondition   = "add_condition"
	OpAddGroup       = "add_group"
	OpRemove         = "remove"
	OpUpdate         = "update"
	OpSetConjunction = "set_conjunction"
	OpMove           = "move"
	OpSetFields      = "set_fields"
	OpLoad           = "load"
	OpRefresh        = "refresh"
)

// LoadScenario reads and validates a scenario file. Unknown keys are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every .yaml and .yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("fields[%d]: field is required", i)
		}
	}

	for i, e := range s.Edits {
		if err := validateEdit(e); err != nil {
			return fmt.Errorf("edits[%d]: %w", i, err)
		}
	}

	if s.Expect.Emitted != nil && *s.Expect.Emitted < 0 {
		return fmt.Errorf("expect.emitted must be non-negative")
	}
	if s.Expect.Conditions != nil && *s.Expect.Conditions < 0 {
		return fmt.Errorf("expect.conditions must be non-negative")
	}
	return nil
}

func validateEdit(e Edit) error {
	switch e.Op {
	case "":
		return fmt.Errorf("op is required")
	case OpAddCondition, OpUpdate:
		if e.Field == "" {
			return fmt.Errorf("field is required for %s", e.Op)
		}
	case OpAddGroup, OpSetConjunction:
		if e.Conjunction == "" {
			return fmt.Errorf("conjunction is required for %s", e.Op)
		}
	case OpRemove, OpMove:
		if len(e.Path) == 0 && e.Error == "" {
			return fmt.Errorf("path is required for %s", e.Op)
		}
	case OpSetFields, OpLoad, OpRefresh:
	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
	return nil
}
