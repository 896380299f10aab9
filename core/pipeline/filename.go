package pipeline

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxNameLength bounds derived filenames.
const DefaultMaxNameLength = 80

// DeriveFilename builds an output name from the paper title: accents are
// folded, letters lowercased and every run of other characters becomes one
// underscore. Without a usable title the source identifier is used, and
// "paper" when that is empty too. The result has no extension.
func DeriveFilename(title, source string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLength
	}
	if name := slug(title, maxLen); name != "" {
		return name
	}
	if name := sanitizeSource(source, maxLen); name != "" {
		return name
	}
	return "paper"
}

func slug(title string, maxLen int) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), title)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	sep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return truncate(b.String(), maxLen, "_")
}

// sanitizeSource keeps the identifier characters of an arXiv id or the base
// name of a file path.
func sanitizeSource(source string, maxLen int) string {
	source = strings.TrimSpace(source)
	if strings.ContainsAny(source, `/\`) || strings.HasSuffix(strings.ToLower(source), ".html") {
		base := filepath.Base(source)
		source = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for _, prefix := range []string{"arXiv:", "arxiv:"} {
		source = strings.TrimPrefix(source, prefix)
	}
	var b strings.Builder
	for _, r := range source {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return truncate(strings.Trim(b.String(), "_.-"), maxLen, "_.-")
}

func truncate(s string, maxLen int, cutset string) string {
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.TrimRight(s, cutset)
}
