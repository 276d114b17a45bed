package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fetchqb/internal/rule"
)

type stubProvider struct {
	fields map[string][]FieldMetadata
	err    error
	calls  int
}

func (p *stubProvider) FieldsFor(_ context.Context, entity string) ([]FieldMetadata, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.fields[entity], nil
}

func manyFields(n int) []FieldMetadata {
	out := make([]FieldMetadata, n)
	for i := range out {
		out[i] = FieldMetadata{Name: fmt.Sprintf("f%d", i), AttributeType: "int"}
	}
	return out
}

func TestSelection_SelectEntityPreselects(t *testing.T) {
	p := &stubProvider{fields: map[string][]FieldMetadata{"account": manyFields(10)}}
	s := NewSelection(p)

	require.NoError(t, s.SelectEntity(context.Background(), "account"))

	assert.Equal(t, "account", s.SelectedEntity())
	assert.Len(t, s.AvailableFields(), 10)
	assert.Equal(t, []string{"f0", "f1", "f2", "f3", "f4", "f5", "f6", "f7"}, s.SelectedFieldNames())
}

func TestSelection_KeepsExistingSelection(t *testing.T) {
	p := &stubProvider{fields: map[string][]FieldMetadata{"account": manyFields(3)}}
	s := NewSelection(p)
	s.SetSelectedFieldNames([]string{"f2"})

	require.NoError(t, s.SelectEntity(context.Background(), "account"))
	assert.Equal(t, []string{"f2"}, s.SelectedFieldNames())
}

func TestSelection_SelectedCountOption(t *testing.T) {
	p := &stubProvider{fields: map[string][]FieldMetadata{"account": manyFields(3)}}

	s := NewSelection(p, WithSelectedCount(2))
	require.NoError(t, s.SelectEntity(context.Background(), "account"))
	assert.Equal(t, []string{"f0", "f1"}, s.SelectedFieldNames())

	s = NewSelection(p, WithSelectedCount(20))
	require.NoError(t, s.SelectEntity(context.Background(), "account"))
	assert.Equal(t, []string{"f0", "f1", "f2"}, s.SelectedFieldNames())
}

func TestSelection_ProviderFailureClears(t *testing.T) {
	p := &stubProvider{fields: map[string][]FieldMetadata{"account": manyFields(3)}}
	s := NewSelection(p)
	require.NoError(t, s.SelectEntity(context.Background(), "account"))

	p.err = errors.New("metadata unavailable")
	err := s.SelectEntity(context.Background(), "contact")
	assert.EqualError(t, err, "metadata unavailable")

	assert.Equal(t, "contact", s.SelectedEntity())
	assert.Empty(t, s.AvailableFields())
	assert.Empty(t, s.SelectedFieldNames())
}

func TestSelection_EmptyNameOrNoProviderClears(t *testing.T) {
	p := &stubProvider{fields: map[string][]FieldMetadata{"account": manyFields(3)}}
	s := NewSelection(p)
	require.NoError(t, s.SelectEntity(context.Background(), "account"))

	require.NoError(t, s.SelectEntity(context.Background(), ""))
	assert.Empty(t, s.AvailableFields())
	assert.Empty(t, s.SelectedFieldNames())
	assert.Equal(t, 1, p.calls)

	s = NewSelection(nil)
	require.NoError(t, s.SelectEntity(context.Background(), "account"))
	assert.Empty(t, s.AvailableFields())
}

func TestSelection_ToggleField(t *testing.T) {
	s := NewSelection(nil)
	s.ToggleField("a")
	s.ToggleField("b")
	s.ToggleField("c")
	s.ToggleField("b")
	assert.Equal(t, []string{"a", "c"}, s.SelectedFieldNames())
}

func TestSelection_SelectedFields(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)

	s := NewSelection(c)
	s.SetEntityList(c.Entities())
	require.NoError(t, s.SelectEntity(context.Background(), "account"))

	s.ToggleField("name")
	s.ToggleField("custom")

	assert.Equal(t, []rule.Field{
		{Name: "revenue", Label: "Annual Revenue", Type: rule.TypeNumber},
		{Name: "createdon", Label: "Created On", Type: rule.TypeDate},
		{Name: "donotemail", Label: "donotemail", Type: rule.TypeBoolean},
		rule.NewField("custom"),
	}, s.SelectedFields())
	assert.Len(t, s.EntityList(), 2)
}

func TestSelection_UnknownCatalogEntity(t *testing.T) {
	c, err := Load("testdata/catalog.yaml")
	require.NoError(t, err)

	s := NewSelection(c)
	err = s.SelectEntity(context.Background(), "lead")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.Empty(t, s.AvailableFields())
}
