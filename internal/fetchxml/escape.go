package fetchxml

import "strings"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML metacharacters in s.
// Every attribute value and text node written by the encoder goes through it.
func Escape(s string) string {
	return xmlEscaper.Replace(s)
}
