package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/fetchqb/internal/catalog"
)

// SavedQuery is one row of saved_queries.
type SavedQuery struct {
	Name       string `json:"name"`
	XML        string `json:"xml"`
	EntityName string `json:"entity"`
	Seq        int64  `json:"seq"`
}

// LoadQuery returns the saved query called name.
func (s *Store) LoadQuery(ctx context.Context, name string) (SavedQuery, error) {
	var q SavedQuery
	err := s.db.QueryRowContext(ctx, `
		SELECT name, fetch_xml, entity_name, seq
		FROM saved_queries
		WHERE name = ?
	`, name).Scan(&q.Name, &q.XML, &q.EntityName, &q.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedQuery{}, fmt.Errorf("load query %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return SavedQuery{}, fmt.Errorf("load query %q: %w", name, err)
	}
	return q, nil
}

// ListQueries returns every saved query ordered by name.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListQueries(ctx context.Context) ([]SavedQuery, error) {
	return s.listQueries(ctx, `
		SELECT name, fetch_xml, entity_name, seq
		FROM saved_queries
		ORDER BY name COLLATE BINARY ASC
	`)
}

// ListQueriesFor returns the saved queries over entity ordered by name.
func (s *Store) ListQueriesFor(ctx context.Context, entity string) ([]SavedQuery, error) {
	return s.listQueries(ctx, `
		SELECT name, fetch_xml, entity_name, seq
		FROM saved_queries
		WHERE entity_name = ?
		ORDER BY name COLLATE BINARY ASC
	`, entity)
}

func (s *Store) listQueries(ctx context.Context, query string, args ...any) ([]SavedQuery, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	queries := []SavedQuery{}
	for rows.Next() {
		var q SavedQuery
		if err := rows.Scan(&q.Name, &q.XML, &q.EntityName, &q.Seq); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queries: %w", err)
	}
	return queries, nil
}

// FieldsFor returns the cached fields of entity in their original order.
// An entity with no cached fields returns ErrNotFound.
func (s *Store) FieldsFor(ctx context.Context, entity string) ([]catalog.FieldMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, display_name, attribute_type
		FROM entity_fields
		WHERE entity_name = ?
		ORDER BY position ASC
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("fields for %q: %w", entity, err)
	}
	defer rows.Close()

	var fields []catalog.FieldMetadata
	for rows.Next() {
		var f catalog.FieldMetadata
		if err := rows.Scan(&f.Name, &f.DisplayName, &f.AttributeType); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("fields for %q: %w", entity, ErrNotFound)
	}
	return fields, nil
}
