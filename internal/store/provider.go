package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/roach88/fetchqb/internal/catalog"
)

// CachingProvider serves fields from the store and falls back to Upstream
// on a cache miss, caching what Upstream returns.
type CachingProvider struct {
	Store    *Store
	Upstream catalog.FieldProvider
	Logger   zerolog.Logger
}

// FieldsFor implements catalog.FieldProvider.
func (p *CachingProvider) FieldsFor(ctx context.Context, entity string) ([]catalog.FieldMetadata, error) {
	fields, err := p.Store.FieldsFor(ctx, entity)
	if err == nil {
		p.Logger.Debug().Str("entity", entity).Int("fields", len(fields)).Msg("field cache hit")
		return fields, nil
	}
	if !errors.Is(err, ErrNotFound) || p.Upstream == nil {
		return nil, err
	}

	fields, err = p.Upstream.FieldsFor(ctx, entity)
	if err != nil {
		return nil, err
	}
	if err := p.Store.PutFields(ctx, entity, fields); err != nil {
		p.Logger.Warn().Err(err).Str("entity", entity).Msg("caching fields failed")
	}
	return fields, nil
}
