package preview

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five markup-significant characters with entities
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
