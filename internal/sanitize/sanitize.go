package sanitize

import "strings"

// entityReplacer encodes the characters that can break out of an HTML
// context. & must be encoded first so already-encoded entities are not
// double-escaped by a later rule.
var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// String HTML-entity-encodes & < > " ' and trims surrounding whitespace.
func String(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(entityReplacer.Replace(s))
}

// Email normalises an email address: lower-case and trim. Callers apply
// String first; Email adds the address-specific normalisation on top.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
