// Package rule provides the rule tree model shared by the FetchXML parser,
// the serializer and the edit session.
//
// This package contains type definitions, traversal and codecs only. It
// imports nothing internal, so every other package can depend on it.
//
// A rule tree is built from two node kinds:
//
//	Group     - a conjunction (and/or) over an ordered list of child nodes
//	Condition - a leaf comparing one field with an operator and a value
//
// Node and Value are sealed interfaces using the marker method pattern.
// Only types in this package implement them, which keeps type switches in
// the encoders exhaustive:
//
//	switch n := node.(type) {
//	case *Group:
//	    // encode children
//	case *Condition:
//	    // encode leaf
//	}
//
// Values are a closed variant as well: Str, Num and Bool are scalars,
// Sequence holds the ordered values of set and range operators, and Absent
// marks operators that take no value (null / not-null).
package rule
