// Package tree is the working representation threaded through the converter.
//
// A parsed page starts out as generic KindElement nodes. The math normalizer
// replaces math sources with KindMath nodes, the structural mapper assigns a
// semantic Kind to every remaining element, and the stripper rewrites the
// result until only text, Markdown structure and math are left.
package tree

import (
	"strings"

	"golang.org/x/net/html"
)

// Kind is the closed set of node variants the converter understands.
type Kind int

const (
	KindDocument Kind = iota
	KindText
	KindElement // not yet classified
	KindComment
	KindMath
	KindMarkdown // a finished Markdown block, emitted verbatim
	KindHeading
	KindParagraph
	KindList
	KindListItem
	KindEmphasis
	KindStrong
	KindCode
	KindCodeBlock
	KindLink
	KindMedia
	KindFigure
	KindCaption
	KindCitation
	KindFootnote
	KindTable
	KindRow
	KindCell
	KindBreak
	KindRule
	KindBlockquote
	KindContainer // layout-only block wrapper
	KindSpan      // layout-only inline wrapper
	KindTag       // numbering label such as "1" or "Figure 2:"
	KindMarker    // list bullets and footnote marks
	KindSuperscript
	KindSubscript
	KindListing
	KindListingLine
	KindNoise // script, style, forms and other non-content
	KindNav   // navigation and page chrome
)

var kindNames = [...]string{
	KindDocument:    "document",
	KindText:        "text",
	KindElement:     "element",
	KindComment:     "comment",
	KindMath:        "math",
	KindMarkdown:    "markdown",
	KindHeading:     "heading",
	KindParagraph:   "paragraph",
	KindList:        "list",
	KindListItem:    "list-item",
	KindEmphasis:    "emphasis",
	KindStrong:      "strong",
	KindCode:        "code",
	KindCodeBlock:   "code-block",
	KindLink:        "link",
	KindMedia:       "media",
	KindFigure:      "figure",
	KindCaption:     "caption",
	KindCitation:    "citation",
	KindFootnote:    "footnote",
	KindTable:       "table",
	KindRow:         "row",
	KindCell:        "cell",
	KindBreak:       "break",
	KindRule:        "rule",
	KindBlockquote:  "blockquote",
	KindContainer:   "container",
	KindSpan:        "span",
	KindTag:         "tag",
	KindMarker:      "marker",
	KindSuperscript: "superscript",
	KindSubscript:   "subscript",
	KindListing:     "listing",
	KindListingLine: "listing-line",
	KindNoise:       "noise",
	KindNav:         "nav",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsBlock reports whether nodes of this kind start a new Markdown block.
func (k Kind) IsBlock() bool {
	switch k {
	case KindDocument, KindMarkdown, KindHeading, KindParagraph, KindList,
		KindListItem, KindCodeBlock, KindFigure, KindCaption, KindTable,
		KindRow, KindCell, KindRule, KindBlockquote, KindContainer, KindListing:
		return true
	}
	return false
}

// MathSpan is a resolved mathematical expression.
type MathSpan struct {
	Source  string // raw MathML, LaTeX or cell text it was built from
	LaTeX   string
	Display bool
	Tag     string // equation number, if any
}

// Node is a unit of the document tree. A parent exclusively owns its children.
type Node struct {
	Kind  Kind
	Tag   string
	Attr  []html.Attribute
	Text  string
	Level int // heading level
	// Ordered marks numbered lists.
	Ordered bool
	// Protected nodes are opaque to every later stage.
	Protected bool
	// Escaped text still carries character references. Text from the HTML
	// parser has been decoded already and never sets it.
	Escaped  bool
	Math     *MathSpan
	Children []*Node
}

// NewText returns an unprotected text node.
func NewText(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// NewEscapedText returns a text node whose character references have not
// been decoded yet.
func NewEscapedText(s string) *Node {
	return &Node{Kind: KindText, Text: s, Escaped: true}
}

// NewMath returns a protected math node.
func NewMath(span MathSpan) *Node {
	return &Node{Kind: KindMath, Protected: true, Math: &span}
}

// Attribute returns the value of the named attribute, or "".
func (n *Node) Attribute(key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether the class attribute contains c.
func (n *Node) HasClass(c string) bool {
	for _, f := range strings.Fields(n.Attribute("class")) {
		if f == c {
			return true
		}
	}
	return false
}

// HasClassPrefix reports whether any class starts with prefix.
func (n *Node) HasClassPrefix(prefix string) bool {
	for _, f := range strings.Fields(n.Attribute("class")) {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// TextContent concatenates the text below n. Math contributes its LaTeX,
// code contributes its literal text.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	switch n.Kind {
	case KindText, KindCode, KindCodeBlock, KindMarkdown:
		b.WriteString(n.Text)
		return
	case KindMath:
		if n.Math != nil {
			b.WriteString(n.Math.LaTeX)
		}
		return
	case KindComment:
		return
	}
	if n.Kind == KindElement && (n.Tag == "annotation" || n.Tag == "annotation-xml") {
		return
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Attr != nil {
		c.Attr = append([]html.Attribute(nil), n.Attr...)
	}
	if n.Math != nil {
		m := *n.Math
		c.Math = &m
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// MathSpans returns every math span in document order.
func MathSpans(n *Node) []*MathSpan {
	var spans []*MathSpan
	Walk(n, func(c *Node) bool {
		if c.Kind == KindMath && c.Math != nil {
			spans = append(spans, c.Math)
		}
		return true
	})
	return spans
}
