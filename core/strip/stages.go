package strip

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/tree"
	"golang.org/x/net/html"
)

// 1. Script, style, forms, comments and media carry no text for the reader.
func removeNonContent(root *tree.Node) *tree.Node {
	rewrite(root, func(n *tree.Node) []*tree.Node {
		switch n.Kind {
		case tree.KindNoise, tree.KindComment, tree.KindMedia:
			return nil
		}
		return keep(n)
	})
	return root
}

// 2. Page chrome: navigation, headers, footers and "back to top" links.
func removeBoilerplate(root *tree.Node) *tree.Node {
	rewrite(root, func(n *tree.Node) []*tree.Node {
		if n.Kind == tree.KindNav {
			return nil
		}
		return keep(n)
	})
	return root
}

// 3. Layout wrappers. Inline wrappers are unwrapped; a block wrapper is
// unwrapped when it holds blocks and becomes a paragraph otherwise. A
// paragraph whose only child is a paragraph collapses into it.
func collapseWrappers(root *tree.Node) *tree.Node {
	rewrite(root, func(n *tree.Node) []*tree.Node {
		switch n.Kind {
		case tree.KindSpan:
			return n.Children
		case tree.KindContainer:
			if hasBlockChild(n) || !hasContent(n) {
				return n.Children
			}
			n.Kind = tree.KindParagraph
			n.Tag = "p"
			return keep(n)
		case tree.KindParagraph:
			if len(n.Children) == 1 && n.Children[0].Kind == tree.KindParagraph {
				return n.Children
			}
		}
		return keep(n)
	})
	return root
}

var spaceRe = regexp.MustCompile(`[\s\x{00a0}\x{2000}-\x{200b}\x{202f}\x{3000}]+`)

// 4. Whitespace runs become one space. Whitespace-only text that only
// separates blocks is dropped.
func normalizeWhitespace(root *tree.Node) *tree.Node {
	visit(root, func(n *tree.Node) {
		if n.Kind == tree.KindText {
			n.Text = spaceRe.ReplaceAllString(n.Text, " ")
		}
	})
	visit(root, func(n *tree.Node) {
		if !n.Kind.IsBlock() {
			return
		}
		out := make([]*tree.Node, 0, len(n.Children))
		for i, c := range n.Children {
			if blank(c) && (len(out) == 0 || startsBlock(out[len(out)-1]) || beforeBlock(n.Children[i+1:])) {
				continue
			}
			out = append(out, c)
		}
		n.Children = out
	})
	return root
}

func blank(n *tree.Node) bool {
	return n.Kind == tree.KindText && !n.Protected && strings.TrimSpace(n.Text) == ""
}

// beforeBlock reports whether the next non-blank sibling starts a block or
// there is none.
func beforeBlock(rest []*tree.Node) bool {
	for _, c := range rest {
		if !blank(c) {
			return startsBlock(c)
		}
	}
	return true
}

// 5. Text that still carries character references is decoded exactly once.
// The HTML parser has already decoded everything it produced, so a literal
// "&lt;" written by the author stays as written.
func unescapeEntities(root *tree.Node) *tree.Node {
	visit(root, func(n *tree.Node) {
		if n.Kind != tree.KindText || !n.Escaped {
			return
		}
		n.Text = html.UnescapeString(n.Text)
		n.Escaped = false
	})
	return root
}

// 6. Nodes left without content by earlier stages.
func removeEmpty(root *tree.Node) *tree.Node {
	rewrite(root, func(n *tree.Node) []*tree.Node {
		if removable(n) && !hasContent(n) {
			return nil
		}
		return keep(n)
	})
	return root
}

// 7. Heading numbering: section tags become plain "1.2 " prefixes, line
// breaks become spaces and levels are clamped to 1..6.
func normalizeHeadings(root *tree.Node) *tree.Node {
	visit(root, func(n *tree.Node) {
		if n.Kind != tree.KindHeading {
			return
		}
		n.Level = min(max(n.Level, 1), 6)
		for i, c := range n.Children {
			switch c.Kind {
			case tree.KindTag:
				if label := strings.Join(strings.Fields(c.TextContent()), " "); label != "" {
					n.Children[i] = tree.NewText(label + " ")
				} else {
					n.Children[i] = tree.NewText("")
				}
			case tree.KindBreak:
				n.Children[i] = tree.NewText(" ")
			}
		}
	})
	return root
}

// 8. Presentation attributes; only link targets survive.
func stripAttributes(root *tree.Node) *tree.Node {
	visit(root, func(n *tree.Node) {
		if len(n.Attr) == 0 {
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Key == "href" && n.Kind == tree.KindLink {
				kept = append(kept, a)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		n.Attr = kept
	})
	return root
}

// 9. Footnotes become inline ^[...] text and marks are dropped. Links into
// the paper's own HTML keep only their #anchor, and links with no target are
// reduced to their text.
func resolveReferences(root *tree.Node) *tree.Node {
	rewrite(root, func(n *tree.Node) []*tree.Node {
		switch n.Kind {
		case tree.KindMarker:
			return nil
		case tree.KindFootnote:
			content := inlineContent(n.Children)
			if !hasContent(&tree.Node{Children: content}) {
				return nil
			}
			if first := content[0]; first.Kind == tree.KindText && !first.Protected {
				first.Text = strings.TrimLeft(first.Text, " \t\n")
			}
			if last := content[len(content)-1]; last.Kind == tree.KindText && !last.Protected {
				last.Text = strings.TrimRight(last.Text, " \t\n")
			}
			out := make([]*tree.Node, 0, len(content)+2)
			out = append(out, tree.NewText("^["))
			out = append(out, content...)
			return append(out, tree.NewText("]"))
		case tree.KindLink:
			href := n.Attribute("href")
			if href == "" {
				return n.Children
			}
			if frag, ok := selfLink(href); ok {
				setHref(n, "#"+frag)
			}
		case tree.KindCitation:
			unwrapLinks(n)
		}
		return keep(n)
	})
	return root
}

// inlineContent flattens paragraphs and wrappers inside a footnote.
func inlineContent(nodes []*tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, n := range nodes {
		switch {
		case n.Protected:
			out = append(out, n)
		case n.Kind == tree.KindMarker:
		case n.Kind == tree.KindParagraph, n.Kind == tree.KindContainer, n.Kind == tree.KindSpan:
			if len(out) > 0 {
				out = append(out, tree.NewText(" "))
			}
			out = append(out, inlineContent(n.Children)...)
		default:
			out = append(out, n)
		}
	}
	return out
}

// selfLink returns the fragment of a link into an arXiv HTML page.
func selfLink(href string) (string, bool) {
	if strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil || u.Fragment == "" {
		return "", false
	}
	if !strings.HasSuffix(u.Host, "arxiv.org") || !strings.HasPrefix(u.Path, "/html/") {
		return "", false
	}
	return u.Fragment, true
}

func setHref(n *tree.Node, href string) {
	for i, a := range n.Attr {
		if a.Key == "href" {
			n.Attr[i].Val = href
			return
		}
	}
}

func unwrapLinks(n *tree.Node) {
	rewrite(n, func(c *tree.Node) []*tree.Node {
		if c.Kind == tree.KindLink {
			return c.Children
		}
		return keep(c)
	})
}

var artifactRe = regexp.MustCompile(`\[\s*\]|\(\s*\)|\*\*\s*\*\*`)

// 10. Final pass: adjacent text merges, whitespace collapses again, text is
// trimmed where it meets a block edge and empty bracket artifacts go. Nodes
// emptied by this are removed, and the pass repeats until nothing more is
// removed.
func finalize(root *tree.Node) *tree.Node {
	for {
		visit(root, func(n *tree.Node) {
			n.Children = mergeText(n.Children)
		})
		visit(root, cleanText)
		removed := 0
		rewrite(root, func(n *tree.Node) []*tree.Node {
			if removable(n) && !hasContent(n) {
				removed++
				return nil
			}
			return keep(n)
		})
		if removed == 0 {
			return root
		}
	}
}

func cleanText(n *tree.Node) {
	for i, c := range n.Children {
		if c.Kind != tree.KindText || c.Protected {
			continue
		}
		c.Text = spaceRe.ReplaceAllString(c.Text, " ")
		for {
			next := spaceRe.ReplaceAllString(artifactRe.ReplaceAllString(c.Text, ""), " ")
			if next == c.Text {
				break
			}
			c.Text = next
		}
		if !n.Kind.IsBlock() {
			continue
		}
		if i == 0 || startsBlock(n.Children[i-1]) {
			c.Text = strings.TrimLeft(c.Text, " ")
		}
		if i == len(n.Children)-1 || startsBlock(n.Children[i+1]) {
			c.Text = strings.TrimRight(c.Text, " ")
		}
	}
}

func mergeText(nodes []*tree.Node) []*tree.Node {
	if len(nodes) < 2 {
		return nodes
	}
	out := nodes[:1]
	for _, c := range nodes[1:] {
		prev := out[len(out)-1]
		if c.Kind == tree.KindText && prev.Kind == tree.KindText && !c.Protected && !prev.Protected &&
			c.Escaped == prev.Escaped {
			prev.Text += c.Text
			continue
		}
		out = append(out, c)
	}
	return out
}

// startsBlock mirrors the renderer: display math and block kinds break the
// surrounding paragraph.
func startsBlock(n *tree.Node) bool {
	if n.Kind == tree.KindMath {
		return n.Math != nil && n.Math.Display
	}
	return n.Kind.IsBlock()
}

func hasBlockChild(n *tree.Node) bool {
	for _, c := range n.Children {
		if c.Kind.IsBlock() {
			return true
		}
	}
	return false
}

// removable kinds disappear once they hold no content. Cells stay so table
// columns keep their positions.
func removable(n *tree.Node) bool {
	switch n.Kind {
	case tree.KindParagraph, tree.KindHeading, tree.KindEmphasis, tree.KindStrong,
		tree.KindLink, tree.KindCitation, tree.KindFootnote, tree.KindCaption,
		tree.KindList, tree.KindListItem, tree.KindTable, tree.KindRow,
		tree.KindFigure, tree.KindBlockquote, tree.KindContainer, tree.KindSpan,
		tree.KindSuperscript, tree.KindSubscript, tree.KindTag, tree.KindMarker,
		tree.KindListing, tree.KindListingLine:
		return true
	case tree.KindCode, tree.KindCodeBlock:
		return strings.TrimSpace(n.Text) == ""
	case tree.KindText:
		return n.Text == ""
	}
	return false
}

// hasContent reports whether n holds anything that renders as text.
func hasContent(n *tree.Node) bool {
	found := false
	tree.Walk(n, func(c *tree.Node) bool {
		if found {
			return false
		}
		switch c.Kind {
		case tree.KindText:
			found = strings.TrimSpace(c.Text) != ""
		case tree.KindMath, tree.KindMarkdown, tree.KindRule:
			found = true
		case tree.KindCode, tree.KindCodeBlock:
			found = strings.TrimSpace(c.Text) != ""
		case tree.KindNoise, tree.KindNav, tree.KindMedia, tree.KindComment, tree.KindMarker:
			return false
		}
		return !found
	})
	return found
}
