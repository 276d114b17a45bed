// Package store provides SQLite-backed persistence for fetchqb.
//
// Two tables:
//   - saved_queries: named FetchXML documents (the host's bound text field)
//   - entity_fields: a cache of entity field metadata
//
// Ordering is deterministic: saved queries list by name (binary collation)
// and cached fields by their original position. Writes are stamped with a
// logical sequence number instead of wall-clock time.
//
// Store implements catalog.FieldProvider over the field cache, and
// CachingProvider reads through to an upstream provider on a cache miss.
package store
