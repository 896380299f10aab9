package tree

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return FromHTML(root)
}

func find(n *Node, tag string) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if found == nil && c.Tag == tag {
			found = c
		}
		return found == nil
	})
	return found
}

func TestFromHTML(t *testing.T) {
	root := parse(t, `<!DOCTYPE html><html><body><!-- note --><P Class="ltx_para x">Hi <b>there</b></P></body></html>`)
	if root.Kind != KindDocument {
		t.Fatalf("root kind = %v", root.Kind)
	}
	p := find(root, "p")
	if p == nil {
		t.Fatal("no p element")
	}
	if p.Kind != KindElement || !p.HasClass("ltx_para") || p.HasClass("ltx") || !p.HasClassPrefix("ltx_") {
		t.Errorf("p = %+v", p)
	}
	if got := p.TextContent(); got != "Hi there" {
		t.Errorf("TextContent = %q", got)
	}
	body := find(root, "body")
	if body.Children[0].Kind != KindComment {
		t.Errorf("first body child = %v, want comment", body.Children[0].Kind)
	}
}

func TestFromHTML_MathKeepsSource(t *testing.T) {
	root := parse(t, `<p><math alttext="x"><mi>x</mi></math></p>`)
	m := find(root, "math")
	if m == nil || !strings.Contains(m.Text, "<mi>x</mi>") {
		t.Fatalf("math source not kept: %+v", m)
	}
}

func TestTextContent(t *testing.T) {
	n := &Node{Kind: KindParagraph, Children: []*Node{
		NewText("a "),
		NewMath(MathSpan{LaTeX: `\alpha`}),
		{Kind: KindComment, Text: "hidden"},
		{Kind: KindCode, Text: " code"},
		{Kind: KindElement, Tag: "annotation", Children: []*Node{NewText("tex")}},
	}}
	if got := n.TextContent(); got != `a \alpha code` {
		t.Errorf("TextContent = %q", got)
	}
}

func TestClone_Deep(t *testing.T) {
	orig := &Node{Kind: KindParagraph, Attr: []html.Attribute{{Key: "id", Val: "p1"}}, Children: []*Node{
		NewMath(MathSpan{LaTeX: "x"}),
		NewText("y"),
	}}
	c := orig.Clone()
	c.Attr[0].Val = "changed"
	c.Children[0].Math.LaTeX = "z"
	c.Children[1].Text = "w"

	if orig.Attribute("id") != "p1" || orig.Children[0].Math.LaTeX != "x" || orig.Children[1].Text != "y" {
		t.Errorf("clone shares state with original: %+v", orig)
	}
}

func TestWalkCountMathSpans(t *testing.T) {
	n := &Node{Kind: KindDocument, Children: []*Node{
		{Kind: KindParagraph, Children: []*Node{NewMath(MathSpan{LaTeX: "a"}), NewText("t")}},
		NewMath(MathSpan{LaTeX: "b", Display: true}),
	}}
	if got := Count(n); got != 5 {
		t.Errorf("Count = %d, want 5", got)
	}
	var got []string
	for _, s := range MathSpans(n) {
		got = append(got, s.LaTeX)
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("MathSpans mismatch (-want +got):\n%s", diff)
	}

	visited := 0
	Walk(n, func(c *Node) bool {
		visited++
		return c.Kind != KindParagraph
	})
	if visited != 3 {
		t.Errorf("Walk visited %d nodes with pruning, want 3", visited)
	}
}

func TestKind(t *testing.T) {
	if KindListingLine.String() != "listing-line" || Kind(-1).String() != "unknown" {
		t.Error("unexpected kind names")
	}
	if !KindParagraph.IsBlock() || KindEmphasis.IsBlock() || KindMath.IsBlock() {
		t.Error("unexpected IsBlock results")
	}
}
