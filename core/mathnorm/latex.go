package mathnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	displayStyleRe = regexp.MustCompile(`\\(?:displaystyle|textstyle)\b`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	commandRe      = regexp.MustCompile(`^\\[a-zA-Z]+$`)
)

// Clean canonicalizes a LaTeX fragment: style switches and % comments are
// dropped, whitespace is collapsed and bare dollar signs are escaped so the
// fragment can sit between $ delimiters.
func Clean(latex string) string {
	latex = stripComments(latex)
	latex = displayStyleRe.ReplaceAllString(latex, " ")
	latex = whitespaceRe.ReplaceAllString(latex, " ")
	latex = strings.TrimSpace(latex)
	latex = dropDanglingBackslash(latex)
	return escapeDollars(latex)
}

// dropDanglingBackslash removes a trailing backslash that escapes nothing,
// such as the remains of a trimmed control space. A "\\" line break is kept.
func dropDanglingBackslash(s string) string {
	n := len(s) - len(strings.TrimRight(s, `\`))
	if n%2 == 0 {
		return s
	}
	return strings.TrimSpace(s[:len(s)-1])
}

// stripComments removes unescaped % through the end of the line.
func stripComments(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if c == '%' {
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// escapeDollars prefixes every unescaped $ with a backslash.
func escapeDollars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if c == '$' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// group wraps s in braces unless it is already a single token.
func group(s string) string {
	if utf8.RuneCountInString(s) <= 1 || commandRe.MatchString(s) {
		return s
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && balancedGroup(s) {
		return s
	}
	return "{" + s + "}"
}

// balancedGroup reports whether the outer braces of s enclose all of it.
func balancedGroup(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// concat joins LaTeX pieces, inserting a space where a control word would
// otherwise run into the letter that follows it.
func concat(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 && needsSpace(b.String(), p) {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

func needsSpace(prev, next string) bool {
	first, _ := utf8.DecodeRuneInString(next)
	if !unicode.IsLetter(first) {
		return false
	}
	// find the trailing control word, if any
	i := len(prev)
	for i > 0 && isASCIILetter(prev[i-1]) {
		i--
	}
	return i > 0 && i < len(prev) && prev[i-1] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
