// Package structure maps a document tree onto Markdown structure.
//
// Map assigns a semantic tree.Kind to every element; Render walks the mapped
// tree in document order and produces Markdown blocks.
package structure

import (
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// navLinks are link texts that only exist for page navigation.
var navLinks = map[string]bool{
	"back to top":                        true,
	"report issue":                       true,
	"report issue for preceding element": true,
	"report github issue":                true,
	"view pdf":                           true,
	"html (experimental)":                true,
}

// Map classifies every unclassified element below root and returns root.
// Elements with no Markdown meaning are unwrapped: their children take their
// place in the parent.
func Map(root *tree.Node) *tree.Node {
	if root.Kind == tree.KindElement {
		if k := classify(root); k != tree.KindElement {
			assign(root, k)
		} else {
			root.Kind = tree.KindContainer
		}
	}
	if !root.Protected {
		root.Children = mapChildren(root.Children)
	}
	return root
}

func mapChildren(nodes []*tree.Node) []*tree.Node {
	out := make([]*tree.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Protected || n.Kind != tree.KindElement {
			out = append(out, n)
			continue
		}
		kind := classify(n)
		if kind == tree.KindElement {
			out = append(out, mapChildren(n.Children)...)
			continue
		}
		assign(n, kind)
		if !n.Protected && kind != tree.KindNoise && kind != tree.KindMedia {
			n.Children = mapChildren(n.Children)
		}
		if kind == tree.KindLink {
			out = append(out, hoistHeadings(n)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// hoistHeadings turns a link wrapped around headings inside out: each
// heading moves up and wraps a copy of the link around its own text. Other
// children keep a copy of the link as well.
func hoistHeadings(link *tree.Node) []*tree.Node {
	nested := false
	for _, c := range link.Children {
		nested = nested || c.Kind == tree.KindHeading
	}
	if !nested {
		return []*tree.Node{link}
	}
	shell := func(children []*tree.Node) *tree.Node {
		return &tree.Node{
			Kind:     tree.KindLink,
			Tag:      link.Tag,
			Attr:     append(link.Attr[:0:0], link.Attr...),
			Children: children,
		}
	}
	var out, run []*tree.Node
	for _, c := range link.Children {
		if c.Kind != tree.KindHeading {
			run = append(run, c)
			continue
		}
		if len(run) > 0 {
			out = append(out, shell(run))
			run = nil
		}
		c.Children = []*tree.Node{shell(c.Children)}
		out = append(out, c)
	}
	if len(run) > 0 {
		out = append(out, shell(run))
	}
	return out
}

func assign(n *tree.Node, kind tree.Kind) {
	n.Kind = kind
	switch kind {
	case tree.KindHeading:
		n.Level = int(n.Tag[1] - '0')
	case tree.KindList:
		n.Ordered = n.Tag == "ol"
	case tree.KindCode, tree.KindCodeBlock:
		n.Text = n.TextContent()
		n.Children = nil
		n.Protected = true
	}
}

// classify is the total mapping from element to Kind. KindElement means
// "unwrap".
func classify(n *tree.Node) tree.Kind {
	if k, ok := classifyClass(n); ok {
		return k
	}
	return classifyTag(n)
}

// classifyClass applies the LaTeXML class vocabulary, which is more specific
// than the tag it sits on.
func classifyClass(n *tree.Node) (tree.Kind, bool) {
	switch {
	case n.HasClass("ltx_ERROR"):
		return tree.KindNoise, true
	case n.HasClass("ltx_page_header"), n.HasClass("ltx_page_footer"),
		n.HasClass("ltx_page_navbar"), n.HasClass("ltx_page_logo"),
		n.HasClass("ltx_TOC"), n.HasClass("ltx_role_navigation"):
		return tree.KindNav, true
	case n.HasClass("ltx_note") && n.Tag != "div":
		return tree.KindFootnote, true
	case n.HasClass("ltx_note_mark"), n.HasClass("ltx_tag_note"), n.HasClass("ltx_tag_item"):
		return tree.KindMarker, true
	case n.HasClass("ltx_tag"):
		return tree.KindTag, true
	case n.HasClass("ltx_cite"):
		return tree.KindCitation, true
	case n.HasClass("ltx_float_algorithm"), n.HasClass("ltx_listing"):
		return tree.KindListing, true
	case n.HasClass("ltx_listingline"):
		return tree.KindListingLine, true
	case n.HasClass("ltx_title_theorem"):
		return tree.KindStrong, true
	case n.Tag == "span" && n.HasClass("ltx_font_bold"):
		return tree.KindStrong, true
	case n.Tag == "span" && n.HasClass("ltx_font_italic"):
		return tree.KindEmphasis, true
	case n.Tag == "span" && n.HasClass("ltx_font_typewriter"):
		return tree.KindCode, true
	}
	return 0, false
}

func classifyTag(n *tree.Node) tree.Kind {
	switch n.Tag {
	case "head", "script", "style", "noscript", "template", "title", "meta",
		"link", "base", "iframe", "object", "embed", "svg", "canvas", "form",
		"input", "button", "select", "option", "textarea", "dialog":
		return tree.KindNoise
	case "img", "picture", "video", "audio", "source", "track", "map", "area":
		return tree.KindMedia
	case "nav", "header", "footer", "aside":
		return tree.KindNav
	case "a":
		if navLinks[strings.ToLower(strings.Join(strings.Fields(n.TextContent()), " "))] {
			return tree.KindNav
		}
		if n.Attribute("href") == "" {
			return tree.KindSpan
		}
		return tree.KindLink
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return tree.KindHeading
	case "p":
		return tree.KindParagraph
	case "ul", "ol", "dl", "menu":
		return tree.KindList
	case "li", "dt", "dd":
		return tree.KindListItem
	case "em", "i", "var", "dfn":
		return tree.KindEmphasis
	case "strong", "b":
		return tree.KindStrong
	case "code", "kbd", "samp", "tt":
		return tree.KindCode
	case "pre", "listing", "xmp":
		return tree.KindCodeBlock
	case "cite":
		return tree.KindCitation
	case "figure":
		return tree.KindFigure
	case "figcaption", "caption":
		return tree.KindCaption
	case "table":
		return tree.KindTable
	case "thead", "tbody", "tfoot", "colgroup":
		return tree.KindContainer
	case "tr":
		return tree.KindRow
	case "td", "th":
		return tree.KindCell
	case "br":
		return tree.KindBreak
	case "hr":
		return tree.KindRule
	case "blockquote":
		return tree.KindBlockquote
	case "sup":
		return tree.KindSuperscript
	case "sub":
		return tree.KindSubscript
	case "html", "body", "main", "article", "section", "div", "center",
		"details", "summary", "address", "hgroup", "fieldset", "math":
		return tree.KindContainer
	case "span", "font", "small", "big", "u", "s", "del", "ins", "abbr",
		"acronym", "time", "mark", "label", "bdi", "bdo", "data", "nobr", "q":
		return tree.KindSpan
	}
	return tree.KindElement
}
