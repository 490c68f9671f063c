// Package sanitize escapes untrusted text before it is spliced into markup.
package sanitize

import (
	"strings"
)

// escaper rewrites the five HTML-significant characters. The ampersand pair
// comes first so entities produced by the later substitutions are not
// double-escaped.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape returns v with HTML-significant characters replaced by character
// references. Non-string values collapse to the empty string rather than an
// error. No trimming or normalization is applied. Escaping an already-escaped
// string double-escapes its ampersands; callers must escape exactly once.
func Escape(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return escaper.Replace(s)
}
