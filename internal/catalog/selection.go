package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roach88/fetchqb/internal/rule"
)

// DefaultSelectedCount is how many fields are preselected when an entity is
// chosen and no field names are selected yet.
const DefaultSelectedCount = 8

// Selection is the field picker state: the entity list, the selected
// entity, its available fields and the selected field names.
type Selection struct {
	mu sync.Mutex

	provider      FieldProvider
	logger        zerolog.Logger
	selectedCount int

	entities      []EntityListItem
	entity        string
	available     []FieldMetadata
	selectedNames []string
}

// SelectionOption configures a Selection.
type SelectionOption func(*Selection)

// WithSelectedCount overrides DefaultSelectedCount. Values below zero are
// ignored.
func WithSelectedCount(n int) SelectionOption {
	return func(s *Selection) {
		if n >= 0 {
			s.selectedCount = n
		}
	}
}

// WithSelectionLogger sets the logger used for provider failures.
func WithSelectionLogger(l zerolog.Logger) SelectionOption {
	return func(s *Selection) {
		s.logger = l
	}
}

// NewSelection creates an empty selection backed by provider, which may be
// nil.
func NewSelection(provider FieldProvider, opts ...SelectionOption) *Selection {
	s := &Selection{
		provider:      provider,
		logger:        zerolog.Nop(),
		selectedCount: DefaultSelectedCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEntityList replaces the entity picker entries.
func (s *Selection) SetEntityList(items []EntityListItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = slices.Clone(items)
}

// EntityList returns the entity picker entries.
func (s *Selection) EntityList() []EntityListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entities)
}

// SelectEntity selects name and loads its fields. When no field names are
// selected, the first fields up to the selected count are selected. An
// empty name, a missing provider or a provider error clears both the
// available and the selected fields; the provider error is returned.
func (s *Selection) SelectEntity(ctx context.Context, name string) error {
	s.mu.Lock()
	s.entity = name
	provider := s.provider
	s.mu.Unlock()

	if name == "" || provider == nil {
		s.clearFields(name)
		return nil
	}

	meta, err := provider.FieldsFor(ctx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("entity", name).Msg("loading fields failed")
		s.clearFields(name)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entity != name {
		// A later selection won.
		return nil
	}
	s.available = slices.Clone(meta)
	if len(s.selectedNames) == 0 {
		n := min(s.selectedCount, len(meta))
		s.selectedNames = make([]string, 0, n)
		for _, f := range meta[:n] {
			s.selectedNames = append(s.selectedNames, f.Name)
		}
	}
	return nil
}

func (s *Selection) clearFields(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entity != name {
		return
	}
	s.available = nil
	s.selectedNames = nil
}

// SelectedEntity returns the selected entity name.
func (s *Selection) SelectedEntity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entity
}

// AvailableFields returns the fields of the selected entity.
func (s *Selection) AvailableFields() []FieldMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.available)
}

// SetSelectedFieldNames replaces the selected field names.
func (s *Selection) SetSelectedFieldNames(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedNames = slices.Clone(names)
}

// SelectedFieldNames returns the selected field names in selection order.
func (s *Selection) SelectedFieldNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selectedNames)
}

// ToggleField selects name, or deselects it when already selected.
func (s *Selection) ToggleField(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := slices.Index(s.selectedNames, name); i >= 0 {
		s.selectedNames = slices.Delete(slices.Clone(s.selectedNames), i, i+1)
		return
	}
	s.selectedNames = append(slices.Clone(s.selectedNames), name)
}

// SelectedFields returns descriptors for the selected names in selection
// order. Names without metadata get an inferred string descriptor.
func (s *Selection) SelectedFields() []rule.Field {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]FieldMetadata, len(s.available))
	for _, f := range s.available {
		byName[f.Name] = f
	}

	out := make([]rule.Field, 0, len(s.selectedNames))
	for _, name := range s.selectedNames {
		if f, ok := byName[name]; ok {
			out = append(out, f.Descriptor())
			continue
		}
		out = append(out, rule.NewField(name))
	}
	return out
}
