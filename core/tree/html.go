package tree

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// FromHTML converts n and its descendants into generic nodes. Elements keep
// their tag and attributes; classification happens later. Math elements also
// keep their serialized markup so the original source survives conversion.
func FromHTML(n *html.Node) *Node {
	switch n.Type {
	case html.DocumentNode:
		return &Node{Kind: KindDocument, Children: fromChildren(n)}
	case html.TextNode:
		return NewText(n.Data)
	case html.CommentNode:
		return &Node{Kind: KindComment, Text: n.Data}
	case html.ElementNode:
		el := &Node{
			Kind:     KindElement,
			Tag:      strings.ToLower(n.Data),
			Attr:     append([]html.Attribute(nil), n.Attr...),
			Children: fromChildren(n),
		}
		if el.Tag == "math" {
			var buf bytes.Buffer
			if err := html.Render(&buf, n); err == nil {
				el.Text = buf.String()
			}
		}
		return el
	}
	return nil
}

func fromChildren(n *html.Node) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if node := FromHTML(c); node != nil {
			out = append(out, node)
		}
	}
	return out
}
