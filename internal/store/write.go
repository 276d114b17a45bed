package store

import (
	"context"
	"fmt"

	"github.com/roach88/fetchqb/internal/catalog"
	"github.com/roach88/fetchqb/internal/fetchxml"
)

// SaveQuery stores xml under name, replacing any previous text. The entity
// name is captured from the document for listing; undecodable text is
// stored as-is with an empty entity name.
func (s *Store) SaveQuery(ctx context.Context, name, xml string) error {
	if name == "" {
		return fmt.Errorf("save query: name is required")
	}
	entity := fetchxml.Parse(xml).EntityName

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_queries (name, fetch_xml, entity_name, seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM saved_queries))
		ON CONFLICT(name) DO UPDATE SET
			fetch_xml   = excluded.fetch_xml,
			entity_name = excluded.entity_name,
			seq         = excluded.seq
	`, name, xml, entity)
	if err != nil {
		return fmt.Errorf("save query %q: %w", name, err)
	}
	return nil
}

// DeleteQuery removes a saved query. Deleting a missing name returns
// ErrNotFound.
func (s *Store) DeleteQuery(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_queries WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete query %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete query %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete query %q: %w", name, ErrNotFound)
	}
	return nil
}

// PutFields replaces the cached fields of entity in one transaction.
func (s *Store) PutFields(ctx context.Context, entity string, fields []catalog.FieldMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put fields %q: begin: %w", entity, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_fields WHERE entity_name = ?`, entity); err != nil {
		return fmt.Errorf("put fields %q: clear: %w", entity, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entity_fields (entity_name, position, name, display_name, attribute_type)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("put fields %q: prepare: %w", entity, err)
	}
	defer stmt.Close()

	for i, f := range fields {
		if _, err := stmt.ExecContext(ctx, entity, i, f.Name, f.DisplayName, f.AttributeType); err != nil {
			return fmt.Errorf("put fields %q: field %q: %w", entity, f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put fields %q: commit: %w", entity, err)
	}
	return nil
}
