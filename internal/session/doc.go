// Package session holds one editing session over a FetchXML query.
//
// A Session owns the rule tree, the field list and the entity name captured
// from the last loaded source. The rule editor mutates the tree through
// discrete, path-addressed edit operations; every successful mutation
// re-serializes the whole tree and hands the result to a single change
// callback.
//
// Control flow:
//
//	Load(xml) -> fetchxml.Decoder -> tree, fields, entity   (no emit)
//	edit op   -> mutate tree -> fetchxml.Encoder -> onChange(Change)
//
// Load never emits because the caller already holds that text. An edit that
// fails validation (bad path, wrong node kind) changes nothing and emits
// nothing. Serialization failures are recovered to fetchxml.EmptyQuery and
// reported with Change.Recovered set.
//
// Thread-safety: all methods are safe for concurrent use. The change
// callback runs without the session lock held, so it may call back into the
// session; Change.Seq orders emissions.
package session
