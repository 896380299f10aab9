// Package mathnorm finds math in a document tree and rewrites it into
// protected LaTeX spans.
//
// Three sources are recognized: MathML elements (inline or display), LaTeX
// already written with $, $$, \( \) or \[ \] delimiters in text, and
// equations laid out as HTML tables. Each recognized source becomes exactly
// one protected KindMath node. Sources that cannot be resolved fall back to
// their plain text and produce a warning wrapping core.ErrUnresolvableMath.
package mathnorm

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// rawText elements never have their text scanned for delimiters.
var rawText = map[string]bool{
	"script": true, "style": true, "pre": true, "code": true,
	"kbd": true, "samp": true, "textarea": true, "title": true,
}

type normalizer struct {
	warnings []error
}

// Normalize rewrites all math below root in place and returns root together
// with the warnings collected along the way.
func Normalize(root *tree.Node) (*tree.Node, []error) {
	n := &normalizer{}
	n.walk(root)
	return root, n.warnings
}

func (m *normalizer) walk(n *tree.Node) {
	if n.Protected {
		return
	}
	out := make([]*tree.Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, m.rewrite(c)...)
	}
	n.Children = out
}

func (m *normalizer) rewrite(n *tree.Node) (out []*tree.Node) {
	if n.Protected {
		return []*tree.Node{n}
	}
	switch n.Kind {
	case tree.KindText:
		return m.scanText(n)
	case tree.KindElement:
	default:
		m.walk(n)
		return []*tree.Node{n}
	}

	switch {
	case n.Tag == "math":
		return m.guard(n, func() []*tree.Node { return m.mathElement(n) })
	case n.Tag == "table" && isEquationTable(n):
		if eq, ok := m.equationTable(n); ok {
			return []*tree.Node{eq}
		}
	case rawText[n.Tag]:
		return []*tree.Node{n}
	}
	m.walk(n)
	return []*tree.Node{n}
}

// guard contains a failure while resolving one math source to that source.
func (m *normalizer) guard(n *tree.Node, fn func() []*tree.Node) (out []*tree.Node) {
	defer func() {
		if r := recover(); r != nil {
			m.warn("math element", fmt.Errorf("%v", r))
			out = degrade(n)
		}
	}()
	return fn()
}

func (m *normalizer) warn(what string, err error) {
	m.warnings = append(m.warnings, fmt.Errorf("%w: %s: %v", core.ErrUnresolvableMath, what, err))
}

func (m *normalizer) mathElement(n *tree.Node) []*tree.Node {
	latex, display := resolve(n)
	if latex == "" {
		m.warn("math element", fmt.Errorf("no LaTeX source in %q", abbreviate(n.Text)))
		return degrade(n)
	}
	return []*tree.Node{tree.NewMath(tree.MathSpan{
		Source:  n.Text,
		LaTeX:   latex,
		Display: display,
	})}
}

// resolve returns the cleaned LaTeX for a <math> element and whether it is
// display math.
func resolve(n *tree.Node) (string, bool) {
	display := n.Attribute("display") == "block" || n.Attribute("mode") == "display"
	if tex := annotation(n); tex != "" {
		if latex := Clean(tex); latex != "" {
			return latex, display
		}
	}
	if alt := n.Attribute("alttext"); alt != "" {
		if latex := Clean(alt); latex != "" {
			return latex, display
		}
	}
	return Clean(translate(n)), display
}

func annotation(n *tree.Node) string {
	var tex string
	tree.Walk(n, func(c *tree.Node) bool {
		if tex != "" {
			return false
		}
		if c.Kind == tree.KindElement && c.Tag == "annotation" &&
			strings.EqualFold(c.Attribute("encoding"), "application/x-tex") {
			// TextContent skips annotations, so read the children.
			var b strings.Builder
			for _, ch := range c.Children {
				b.WriteString(ch.TextContent())
			}
			tex = b.String()
			return false
		}
		return true
	})
	return tex
}

// degrade replaces an unresolvable math source by its visible text.
func degrade(n *tree.Node) []*tree.Node {
	text := strings.Join(strings.Fields(n.TextContent()), " ")
	if text == "" {
		return nil
	}
	return []*tree.Node{tree.NewText(text)}
}

func abbreviate(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
