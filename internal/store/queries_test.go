package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fetchqb/internal/catalog"
)

const accountFetch = `<fetch><entity name="account"><attribute name="name"/></entity></fetch>`

func TestSaveAndLoadQuery(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveQuery(ctx, "big-accounts", accountFetch))

	q, err := s.LoadQuery(ctx, "big-accounts")
	require.NoError(t, err)
	assert.Equal(t, SavedQuery{Name: "big-accounts", XML: accountFetch, EntityName: "account", Seq: 1}, q)
}

func TestSaveQuery_ReplacesAndAdvancesSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveQuery(ctx, "a", accountFetch))
	require.NoError(t, s.SaveQuery(ctx, "b", accountFetch))
	require.NoError(t, s.SaveQuery(ctx, "a", `<fetch><entity name="contact"/></fetch>`))

	q, err := s.LoadQuery(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "contact", q.EntityName)
	assert.Equal(t, int64(3), q.Seq)
}

func TestSaveQuery_UndecodableText(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveQuery(ctx, "draft", "<fetch"))
	q, err := s.LoadQuery(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, "<fetch", q.XML)
	assert.Equal(t, "", q.EntityName)

	assert.Error(t, s.SaveQuery(ctx, "", accountFetch))
}

func TestLoadQuery_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LoadQuery(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListQueries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListQueries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"b", "a", "C"} {
		require.NoError(t, s.SaveQuery(ctx, name, accountFetch))
	}
	require.NoError(t, s.SaveQuery(ctx, "d", `<fetch><entity name="contact"/></fetch>`))

	all, err := s.ListQueries(ctx)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, q := range all {
		names[i] = q.Name
	}
	// Binary collation sorts upper case first.
	assert.Equal(t, []string{"C", "a", "b", "d"}, names)

	contacts, err := s.ListQueriesFor(ctx, "contact")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "d", contacts[0].Name)
}

func TestDeleteQuery(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveQuery(ctx, "a", accountFetch))
	require.NoError(t, s.DeleteQuery(ctx, "a"))

	_, err := s.LoadQuery(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteQuery(ctx, "a"), ErrNotFound)
}

func TestFieldCache(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.FieldsFor(ctx, "account")
	assert.ErrorIs(t, err, ErrNotFound)

	fields := []catalog.FieldMetadata{
		{Name: "revenue", DisplayName: "Annual Revenue", AttributeType: "money"},
		{Name: "name", DisplayName: "Account Name", AttributeType: "string"},
		{Name: "createdon"},
	}
	require.NoError(t, s.PutFields(ctx, "account", fields))

	got, err := s.FieldsFor(ctx, "account")
	require.NoError(t, err)
	assert.Equal(t, fields, got)

	require.NoError(t, s.PutFields(ctx, "account", fields[:1]))
	got, err = s.FieldsFor(ctx, "account")
	require.NoError(t, err)
	assert.Equal(t, fields[:1], got)
}

func TestPutFields_DuplicateRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	original := []catalog.FieldMetadata{{Name: "a"}}
	require.NoError(t, s.PutFields(ctx, "e", original))

	err := s.PutFields(ctx, "e", []catalog.FieldMetadata{{Name: "x"}, {Name: "x"}})
	assert.Error(t, err)

	got, err := s.FieldsFor(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

type countingProvider struct {
	fields []catalog.FieldMetadata
	err    error
	calls  int
}

func (p *countingProvider) FieldsFor(context.Context, string) ([]catalog.FieldMetadata, error) {
	p.calls++
	return p.fields, p.err
}

func TestCachingProvider(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	upstream := &countingProvider{fields: []catalog.FieldMetadata{{Name: "name", AttributeType: "string"}}}
	p := &CachingProvider{Store: s, Upstream: upstream}

	for i := 0; i < 3; i++ {
		got, err := p.FieldsFor(ctx, "account")
		require.NoError(t, err)
		assert.Equal(t, upstream.fields, got)
	}
	assert.Equal(t, 1, upstream.calls)
}

func TestCachingProvider_UpstreamError(t *testing.T) {
	s := createTestStore(t)
	upstream := &countingProvider{err: catalog.ErrUnknownEntity}
	p := &CachingProvider{Store: s, Upstream: upstream}

	_, err := p.FieldsFor(context.Background(), "lead")
	assert.ErrorIs(t, err, catalog.ErrUnknownEntity)

	_, err = s.FieldsFor(context.Background(), "lead")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingProvider_NoUpstream(t *testing.T) {
	p := &CachingProvider{Store: createTestStore(t)}
	_, err := p.FieldsFor(context.Background(), "account")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ImplementsFieldProvider(t *testing.T) {
	var _ catalog.FieldProvider = createTestStore(t)
	var _ catalog.FieldProvider = &CachingProvider{}
}
