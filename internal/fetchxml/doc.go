// Package fetchxml converts between rule trees and FetchXML query text.
//
// The package has two independent halves that share only the rule tree
// shape from package rule:
//
//	[FetchXML text] --Decode/Parse--> [rule.Group + fields + entity name]
//	[rule.Group + entity + fields] --Encode/Serialize--> [FetchXML text]
//
// SUPPORTED GRAMMAR:
//
//	<fetch mapping="logical">
//	  <entity name="account">
//	    <attribute name="name" />
//	    <filter type="and|or">
//	      <condition attribute="revenue" operator="gt" value="1000" />
//	      <condition attribute="statecode" operator="in">
//	        <value>0</value>
//	        <value>1</value>
//	      </condition>
//	      <filter type="or"> ... </filter>
//	    </filter>
//	  </entity>
//	</fetch>
//
// Joins, link-entities, ordering, paging and aggregates are not read or
// written. Elements outside the grammar are ignored on decode.
//
// STRICT AND TOTAL ENTRY POINTS:
//
// Decode and Encode return errors. Parse and Serialize never fail: Parse
// substitutes ZeroResult for any decode error and Serialize substitutes
// EmptyQuery for any encode error. Hosts call the total forms; tests can
// assert on the strict forms to observe the recovery path directly.
//
// OPERATORS:
//
// The serializer translates the rule editor's operator vocabulary through a
// fixed table (see Translate). Pattern operators collapse to "like" with
// wildcard wrapping:
//
//	contains   "abc" -> like "%abc%"
//	startswith "abc" -> like "abc%"
//	endswith   "abc" -> like "%abc"
//	like       "a%c" -> like "a%c"   (used as-is)
//
// The parser records the XML operator token verbatim and, for "like", strips
// leading and trailing wildcards. The flavor (contains, startswith, endswith)
// cannot be recovered from the text, so decoding always yields "like".
// Decoder.PreserveWildcards keeps the wildcards instead.
//
// All functions are pure and safe for concurrent use.
package fetchxml
