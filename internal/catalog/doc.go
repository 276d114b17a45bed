// Package catalog provides entity and field metadata for the rule editor.
//
// A Catalog is loaded from a YAML or CUE file:
//
//	entities:
//	  - name: account
//	    displayName: Account
//	    fields:
//	      - name: revenue
//	        displayName: Annual Revenue
//	        attributeType: money
//
// CUE files are unified with an embedded schema (schema.cue) before they are
// decoded, so structural mistakes are reported with CUE positions. Names and
// display names are NFC-normalized on load so that visually identical names
// compare equal.
//
// A Selection tracks the entity picked in the editor, the fields available
// for it (through a FieldProvider) and the field names the user selected.
package catalog
