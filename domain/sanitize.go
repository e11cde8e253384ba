package domain

import "strings"

// titleEscaper neutralizes HTML markup in user-supplied text. The entity
// forms match what clients already round-trip (&#x27; rather than
// html.EscapeString's &#39;).
var titleEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeTitle maps reserved markup characters to their entity equivalents.
// It runs in a single pass, so its own output is never re-escaped within
// one application. Callers apply it exactly once per write.
func EscapeTitle(raw string) string {
	return titleEscaper.Replace(raw)
}
