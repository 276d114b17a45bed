// Package harness runs conversion scenarios against an edit session.
//
// A scenario loads a FetchXML source, optionally supplies field
// descriptors, applies a list of structural edits and then checks the
// emitted documents.
//
// # Scenario Format
//
//	name: add_revenue_filter
//	description: "Adding a condition to an empty query"
//	source: |
//	  <fetch><entity name="account"></entity></fetch>
//	fields:
//	  - field: revenue
//	    label: Revenue
//	    type: number
//	edits:
//	  - op: add_condition
//	    path: []
//	    field: revenue
//	    operator: greaterthan
//	    value: 1000
//	expect:
//	  emitted: 2
//	  contains:
//	    - '<condition attribute="revenue" operator="gt" value="1000" />'
//	  fields: [revenue]
//
// # Edit Operations
//
//   - add_condition: append a condition to the group at path
//   - add_group: append an empty group with conjunction to the group at path
//   - remove: delete the node at path
//   - update: replace field, operator and value of the condition at path
//   - set_conjunction: change the conjunction of the group at path
//   - move: move the node at path to index within its parent
//   - set_fields: replace the external field descriptors
//   - load: reload the session from a new source document
//   - refresh: re-serialize and emit without changing state
//
// # Deterministic Output
//
// Sessions created by Run use a fixed session ID derived from the
// scenario name, so emitted changes are identical across runs and the
// final document can be compared against a golden file.
package harness
