package structure

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// Block is one ordered unit of Markdown output.
type Block struct {
	Kind tree.Kind
	Text string
}

// Render returns the Markdown for the tree rooted at root.
func Render(root *tree.Node) string {
	return Join(Blocks(root))
}

// Blocks walks root in document order and returns its Markdown blocks.
func Blocks(root *tree.Node) []Block {
	w := &blockWriter{}
	w.node(root)
	w.flush()
	return w.blocks
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// Join concatenates blocks with blank lines and tidies the result.
func Join(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := strings.TrimSpace(b.Text); t != "" {
			parts = append(parts, b.Text)
		}
	}
	return Tidy(strings.Join(parts, "\n\n"))
}

// Tidy normalizes line endings, trailing spaces and blank-line runs. It is
// idempotent, and Markdown produced by Render is a fixed point of it.
func Tidy(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	md = blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.Trim(md, "\n")
}

type blockWriter struct {
	blocks []Block
	inline strings.Builder
}

func (w *blockWriter) emit(kind tree.Kind, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.blocks = append(w.blocks, Block{Kind: kind, Text: text})
}

// flush closes the pending paragraph, if any.
func (w *blockWriter) flush() {
	text := w.inline.String()
	w.inline.Reset()
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	w.emit(tree.KindParagraph, strings.Join(kept, "\n"))
}

func (w *blockWriter) appendInline(s string) {
	appendInline(&w.inline, s)
}

// node routes n either to the pending paragraph or to its own block.
func (w *blockWriter) node(n *tree.Node) {
	if !startsBlock(n) {
		w.appendInline(inline(n))
		return
	}
	w.flush()
	switch n.Kind {
	case tree.KindHeading:
		w.emit(tree.KindHeading, headingLine(n))
	case tree.KindList:
		w.list(n)
	case tree.KindCodeBlock:
		w.emit(tree.KindCodeBlock, fence(strings.Trim(n.Text, "\n"), ""))
	case tree.KindTable:
		w.table(n)
	case tree.KindListing:
		w.listing(n)
	case tree.KindCaption:
		w.emit(tree.KindCaption, caption(n))
	case tree.KindRule:
		w.emit(tree.KindRule, "---")
	case tree.KindMarkdown:
		w.emit(tree.KindMarkdown, n.Text)
	case tree.KindMath:
		w.emit(tree.KindMath, "$$"+n.Math.LaTeX+"$$")
	case tree.KindBlockquote:
		inner := Render(&tree.Node{Kind: tree.KindDocument, Children: n.Children})
		if inner != "" {
			w.emit(tree.KindBlockquote, quote(inner))
		}
	default:
		// paragraphs, figures and layout wrappers
		for _, c := range n.Children {
			w.node(c)
		}
		w.flush()
	}
}

func headingLine(n *tree.Node) string {
	level := min(max(n.Level, 1), 6)
	return strings.Repeat("#", level) + " " + oneLine(inlineChildren(n))
}

func startsBlock(n *tree.Node) bool {
	if n.Kind == tree.KindMath {
		return n.Math != nil && n.Math.Display
	}
	switch n.Kind {
	case tree.KindListItem, tree.KindRow, tree.KindCell:
		return false
	}
	return n.Kind.IsBlock()
}

// inline renders n as inline Markdown.
func inline(n *tree.Node) string {
	switch n.Kind {
	case tree.KindText:
		return EscapeText(n.Text)
	case tree.KindMath:
		if n.Math == nil {
			return ""
		}
		if n.Math.Display {
			return "$$" + n.Math.LaTeX + "$$"
		}
		return "$" + n.Math.LaTeX + "$"
	case tree.KindMarkdown:
		return n.Text
	case tree.KindEmphasis:
		return wrap("*", inlineChildren(n))
	case tree.KindStrong:
		text := inlineChildren(n)
		if _, core, _ := splitSpace(text); strings.HasPrefix(core, "**") && strings.HasSuffix(core, "**") {
			return text // already bold
		}
		return wrap("**", text)
	case tree.KindCode:
		return codeSpan(n.Text)
	case tree.KindCodeBlock:
		return codeSpan(oneLine(n.Text))
	case tree.KindLink:
		text := inlineChildren(n)
		href := n.Attribute("href")
		if strings.TrimSpace(text) == "" {
			return ""
		}
		if href == "" {
			return text
		}
		lead, core, trail := splitSpace(text)
		return lead + "[" + core + "](" + escapeHref(href) + ")" + trail
	case tree.KindCitation:
		lead, text, trail := splitSpace(inlineChildren(n))
		if text == "" {
			return ""
		}
		if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
			text = "[" + text + "]"
		}
		return lead + text + trail
	case tree.KindFootnote:
		text := strings.TrimSpace(inlineChildren(n))
		if text == "" {
			return ""
		}
		return "^[" + text + "]"
	case tree.KindSuperscript:
		if t := strings.TrimSpace(inlineChildren(n)); t != "" {
			return "^{" + t + "}"
		}
		return ""
	case tree.KindSubscript:
		if t := strings.TrimSpace(inlineChildren(n)); t != "" {
			return "_{" + t + "}"
		}
		return ""
	case tree.KindBreak:
		return "\n"
	case tree.KindListingLine:
		return inlineChildren(n) + "\n"
	case tree.KindMarker, tree.KindNoise, tree.KindNav, tree.KindMedia,
		tree.KindComment, tree.KindRule:
		return ""
	}
	if n.Kind.IsBlock() {
		return " " + inlineChildren(n) + " "
	}
	return inlineChildren(n)
}

func inlineChildren(n *tree.Node) string {
	var b strings.Builder
	for _, c := range n.Children {
		appendInline(&b, inline(c))
	}
	return b.String()
}

// appendInline writes s to b without doubling the space at the seam.
func appendInline(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	cur := b.String()
	if strings.HasSuffix(cur, " ") || strings.HasSuffix(cur, "\n") || cur == "" {
		s = strings.TrimLeft(s, " ")
	}
	// adjacent math spans would read as a "$$" delimiter
	if strings.HasSuffix(cur, "$") && strings.HasPrefix(s, "$") {
		b.WriteByte(' ')
	}
	b.WriteString(s)
}

// wrap puts a delimiter around the non-space core of s, keeping the
// surrounding spaces outside it.
func wrap(delim, s string) string {
	lead, core, trail := splitSpace(s)
	if core == "" {
		return s
	}
	return lead + delim + core + delim + trail
}

func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimSpace(s)
	if core == "" {
		return "", "", ""
	}
	i := strings.Index(s, core)
	return s[:i], core, s[i+len(core):]
}

func codeSpan(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}

func fence(body, title string) string {
	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}
	out := marker + "\n" + body + "\n" + marker
	if title != "" {
		out = title + "\n\n" + out
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func escapeHref(href string) string {
	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(href)
}

func quote(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

// caption renders a figure caption as an italic line.
func caption(n *tree.Node) string {
	text := oneLine(inlineChildren(n))
	if text == "" || strings.Contains(text, "*") {
		return text
	}
	return "*" + text + "*"
}

type listLine struct {
	text    string
	heading bool
}

// listLines renders a list with two spaces of indentation per level. Headings
// found inside items come back as unindented heading lines.
func listLines(n *tree.Node, depth int) []listLine {
	var lines []listLine
	indent := strings.Repeat("  ", depth)
	idx := 0
	for _, item := range n.Children {
		if item.Kind == tree.KindText && strings.TrimSpace(item.Text) == "" {
			continue
		}
		if item.Kind == tree.KindList {
			lines = append(lines, listLines(item, depth+1)...)
			continue
		}
		idx++
		marker := "- "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", idx)
		}

		var head strings.Builder
		pending, marked := true, false
		line := func(text string) {
			if pending {
				lines = append(lines, listLine{text: indent + marker + text})
				pending, marked = false, true
				return
			}
			lines = append(lines, listLine{text: indent + "  " + text})
		}
		flushHead := func() {
			text := strings.TrimSpace(head.String())
			head.Reset()
			if text != "" {
				line(strings.ReplaceAll(text, "\n", "\n"+indent+"  "))
			}
		}
		var add func(c *tree.Node)
		add = func(c *tree.Node) {
			switch {
			case c.Kind == tree.KindList:
				flushHead()
				if pending {
					line("")
				}
				lines = append(lines, listLines(c, depth+1)...)
			case c.Kind == tree.KindHeading:
				flushHead()
				lines = append(lines, listLine{text: headingLine(c), heading: true})
				pending = true
			case c.Kind == tree.KindMath && c.Math != nil && c.Math.Display:
				flushHead()
				line("$$" + c.Math.LaTeX + "$$")
			case c.Kind.IsBlock() && hasBreak(c):
				for _, cc := range c.Children {
					add(cc)
				}
			default:
				appendInline(&head, inline(c))
			}
		}
		if item.Kind != tree.KindListItem {
			add(item)
		} else {
			for _, c := range item.Children {
				add(c)
			}
		}
		flushHead()
		if !marked {
			idx--
		}
	}
	return lines
}

// hasBreak reports whether n holds content that cannot stay on a list line.
func hasBreak(n *tree.Node) bool {
	found := false
	tree.Walk(n, func(c *tree.Node) bool {
		if c != n && (c.Kind == tree.KindHeading || c.Kind == tree.KindList ||
			c.Kind == tree.KindMath && c.Math != nil && c.Math.Display) {
			found = true
		}
		return !found
	})
	return found
}

// list emits a list block, split around any headings its items contain.
func (w *blockWriter) list(n *tree.Node) {
	var run []string
	for _, l := range listLines(n, 0) {
		if !l.heading {
			run = append(run, l.text)
			continue
		}
		w.emit(tree.KindList, strings.Join(run, "\n"))
		run = nil
		w.emit(tree.KindHeading, l.text)
	}
	w.emit(tree.KindList, strings.Join(run, "\n"))
}

// table renders a GFM pipe table; the first row is the header.
func (w *blockWriter) table(n *tree.Node) {
	var rows [][]string
	width := 0
	for _, c := range n.Children {
		if c.Kind == tree.KindCaption {
			w.emit(tree.KindCaption, caption(c))
		}
	}
	if layoutTable(n) {
		for _, row := range tableRows(n) {
			for _, c := range row.Children {
				for _, cc := range c.Children {
					w.node(cc)
				}
				w.flush()
			}
		}
		return
	}
	for _, row := range tableRows(n) {
		var cells []string
		for _, c := range row.Children {
			if c.Kind != tree.KindCell {
				continue
			}
			cells = append(cells, strings.ReplaceAll(oneLine(inlineChildren(c)), "|", `\|`))
		}
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, cells)
		width = max(width, len(cells))
	}
	if len(rows) == 0 {
		return
	}
	var b strings.Builder
	for i, cells := range rows {
		for len(cells) < width {
			cells = append(cells, "")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if i == 0 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
		}
	}
	w.emit(tree.KindTable, strings.TrimSuffix(b.String(), "\n"))
}

// layoutTable reports whether n arranges page content rather than data: some
// cell holds a heading, a list or code, or more than one paragraph.
func layoutTable(n *tree.Node) bool {
	for _, row := range tableRows(n) {
		for _, c := range row.Children {
			if c.Kind != tree.KindCell {
				continue
			}
			paras := 0
			for _, cc := range c.Children {
				switch cc.Kind {
				case tree.KindHeading, tree.KindList, tree.KindCodeBlock,
					tree.KindBlockquote, tree.KindListing:
					return true
				case tree.KindParagraph:
					paras++
				}
			}
			if paras > 1 {
				return true
			}
		}
	}
	return false
}

// tableRows collects the rows of a table through row groups, not nested tables.
func tableRows(n *tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, c := range n.Children {
		switch c.Kind {
		case tree.KindRow:
			out = append(out, c)
		case tree.KindContainer, tree.KindSpan, tree.KindParagraph:
			out = append(out, tableRows(c)...)
		}
	}
	return out
}

// listing renders an algorithm float as a bold caption and a fenced block.
func (w *blockWriter) listing(n *tree.Node) {
	var title string
	var lines []string
	var visit func(*tree.Node)
	visit = func(c *tree.Node) {
		switch c.Kind {
		case tree.KindCaption:
			if title == "" {
				title = oneLine(inlineChildren(c))
			}
			return
		case tree.KindListingLine:
			lines = append(lines, strings.TrimRight(inlineChildren(c), " \n"))
			return
		}
		for _, ch := range c.Children {
			visit(ch)
		}
	}
	visit(n)
	head := ""
	if title != "" {
		head = "**" + strings.Trim(title, "*") + "**"
	}
	if len(lines) == 0 {
		// no line structure: keep the body as ordinary blocks
		w.emit(tree.KindCaption, head)
		for _, c := range n.Children {
			if c.Kind != tree.KindCaption {
				w.node(c)
			}
		}
		w.flush()
		return
	}
	w.emit(tree.KindListing, fence(strings.Join(lines, "\n"), head))
}
