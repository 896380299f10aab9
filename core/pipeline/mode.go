package pipeline

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/strip"
	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

var (
	displayMathRe = regexp.MustCompile(`(?s)\$\$.+?\$\$`)
	inlineMathRe  = regexp.MustCompile(`\$[^$\n]+\$`)
	fencedCodeRe  = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`[^`\n]+`")
	tagRe         = regexp.MustCompile(`(?i)<(?:!--|!doctype|/?[a-z][a-z0-9-]*(?:\s[^<>]*)?/?>)`)
	headingLineRe = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	verbatimRe    = regexp.MustCompile("(?s)```.*?```" + `|\$\$.+?\$\$|\$[^$\n]+\$|` + "`[^`\n]+`")
	openTagRe     = regexp.MustCompile(`<([A-Za-z/!?])`)
)

// LooksLikeMarkup reports whether s contains at least one complete HTML tag
// outside math and code. Markdown produced by the converter never does, so
// it is passed through unchanged on a second run.
func LooksLikeMarkup(s string) bool {
	masked := fencedCodeRe.ReplaceAllString(s, "")
	masked = displayMathRe.ReplaceAllString(masked, "")
	masked = inlineMathRe.ReplaceAllString(masked, "")
	masked = inlineCodeRe.ReplaceAllString(masked, "")
	return tagRe.MatchString(masked)
}

// markdownTitle returns the text of the first level-one heading.
func markdownTitle(md string) string {
	if m := headingLineRe.FindStringSubmatch(md); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// decodeEntities decodes the character references in the prose of a
// Markdown document. Code and math keep their text, and a decoded "<" that
// would open a tag is escaped again.
func decodeEntities(md string) string {
	if !strings.Contains(md, "&") {
		return md
	}
	root := &tree.Node{Kind: tree.KindDocument}
	last := 0
	for _, loc := range verbatimRe.FindAllStringIndex(md, -1) {
		root.Children = append(root.Children,
			tree.NewEscapedText(md[last:loc[0]]),
			&tree.Node{Kind: tree.KindMarkdown, Text: md[loc[0]:loc[1]], Protected: true})
		last = loc[1]
	}
	root.Children = append(root.Children, tree.NewEscapedText(md[last:]))
	strip.UnescapeEntities(root)

	var b strings.Builder
	for _, n := range root.Children {
		if n.Kind == tree.KindText {
			b.WriteString(openTagRe.ReplaceAllString(n.Text, "&lt;$1"))
			continue
		}
		b.WriteString(n.Text)
	}
	return b.String()
}
