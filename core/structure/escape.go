package structure

import "strings"

// EscapeText prepares plain text for Markdown output. Bare dollar signs are
// escaped so they never pair up as math delimiters, and a < that would open
// a tag is written as an entity so the output never reads as HTML.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "$<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		case c == '$':
			b.WriteString(`\$`)
		case c == '<' && i+1 < len(s) && opensTag(s[i+1]):
			b.WriteString("&lt;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func opensTag(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '/' || c == '!' || c == '?'
}
