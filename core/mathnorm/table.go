package mathnorm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// eqnoRe matches an equation number cell such as "(3)" or "(2.1a)".
var eqnoRe = regexp.MustCompile(`^\(\s*([\w.\-]+)\s*\)$`)

// isEquationTable reports whether a table lays out equations rather than
// data. LaTeXML marks these with ltx_equation classes; unmarked tables
// qualify when every non-empty cell holds only math or an equation number.
func isEquationTable(n *tree.Node) bool {
	if n.HasClass("ltx_equation") || n.HasClass("ltx_equationgroup") ||
		n.HasClass("ltx_eqn_table") || n.HasClassPrefix("ltx_eqn_") {
		return true
	}
	cells := tableCells(n)
	if len(cells) == 0 {
		return false
	}
	sawMath := false
	for _, c := range cells {
		switch cellKind(c) {
		case cellText:
			return false
		case cellMath:
			sawMath = true
		}
	}
	return sawMath
}

type kindOfCell int

const (
	cellEmpty kindOfCell = iota
	cellMath
	cellNumber
	cellText
)

func cellKind(c *tree.Node) kindOfCell {
	text := strings.TrimSpace(visibleText(c))
	hasMath := containsMath(c)
	switch {
	case hasMath && text == "":
		return cellMath
	case !hasMath && text == "":
		return cellEmpty
	case !hasMath && eqnoRe.MatchString(text):
		return cellNumber
	}
	return cellText
}

// equationTable rebuilds a single display math span from an equation table.
// Multiple rows become an aligned environment with & between cells; a
// single row is flattened onto one line. The result is best effort: LaTeXML
// splits equations across cells at alignment points, so joining cells with
// & reproduces the alignment in the common cases only.
func (m *normalizer) equationTable(n *tree.Node) (*tree.Node, bool) {
	var (
		rows    [][]string
		tags    []string
		sources []string
	)
	for _, row := range tableRows(n) {
		var cells []string
		tag := ""
		for _, c := range rowCells(row) {
			if isPadding(c) {
				continue
			}
			if c.HasClass("ltx_eqn_eqno") || cellKind(c) == cellNumber {
				if mm := eqnoRe.FindStringSubmatch(strings.TrimSpace(c.TextContent())); mm != nil {
					tag = mm[1]
				}
				continue
			}
			cells = append(cells, m.cellLaTeX(c))
		}
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		if len(cells) == 0 && tag == "" {
			continue
		}
		rows = append(rows, cells)
		tags = append(tags, tag)
		sources = append(sources, strings.Join(cells, " | "))
	}
	if len(rows) == 0 {
		return nil, false
	}

	var latex, tag string
	if len(rows) == 1 {
		latex = strings.Join(nonEmpty(rows[0]), " ")
		tag = tags[0]
		if tag != "" {
			latex += ` \tag{` + tag + `}`
		}
	} else {
		lines := make([]string, len(rows))
		for i, cells := range rows {
			line := strings.Join(cells, " & ")
			if tags[i] != "" {
				line += ` \tag{` + tags[i] + `}`
				if tag == "" {
					tag = tags[i]
				}
			}
			lines[i] = line
		}
		latex = "\\begin{aligned}\n" + strings.Join(lines, " \\\\\n") + "\n\\end{aligned}"
	}
	if strings.TrimSpace(latex) == "" {
		m.warn("equation table", fmt.Errorf("no math in %d rows", len(rows)))
		return nil, false
	}
	return tree.NewMath(tree.MathSpan{
		Source:  strings.Join(sources, "\n"),
		LaTeX:   latex,
		Display: true,
		Tag:     tag,
	}), true
}

// cellLaTeX concatenates the math and text of a cell in reading order.
func (m *normalizer) cellLaTeX(c *tree.Node) string {
	var parts []string
	var visit func(n *tree.Node)
	visit = func(n *tree.Node) {
		switch {
		case n.Kind == tree.KindText:
			if t := strings.TrimSpace(n.Text); t != "" {
				parts = append(parts, escapeDollars(t))
			}
		case n.Kind == tree.KindElement && n.Tag == "math":
			if latex, _ := resolve(n); latex != "" {
				parts = append(parts, latex)
			} else {
				m.warn("equation cell", fmt.Errorf("no LaTeX source in %q", abbreviate(n.Text)))
			}
		case n.Kind == tree.KindMath && n.Math != nil:
			parts = append(parts, n.Math.LaTeX)
		default:
			for _, ch := range n.Children {
				visit(ch)
			}
		}
	}
	visit(c)
	return concat(parts)
}

func isPadding(c *tree.Node) bool {
	return c.HasClass("ltx_eqn_center_padleft") || c.HasClass("ltx_eqn_center_padright") ||
		c.HasClass("ltx_eqn_left_padleft") || c.HasClass("ltx_eqn_left_padright") ||
		c.HasClass("ltx_eqn_right_padleft") || c.HasClass("ltx_eqn_right_padright") ||
		c.HasClass("ltx_eqn_pad")
}

// tableRows returns the rows of n, looking through row groups but not into
// nested tables.
func tableRows(n *tree.Node) []*tree.Node {
	var rows []*tree.Node
	for _, c := range n.Children {
		if c.Kind != tree.KindElement {
			continue
		}
		switch c.Tag {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			rows = append(rows, tableRows(c)...)
		}
	}
	return rows
}

func rowCells(row *tree.Node) []*tree.Node {
	var cells []*tree.Node
	for _, c := range row.Children {
		if c.Kind == tree.KindElement && (c.Tag == "td" || c.Tag == "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

func tableCells(n *tree.Node) []*tree.Node {
	var cells []*tree.Node
	for _, r := range tableRows(n) {
		cells = append(cells, rowCells(r)...)
	}
	return cells
}

func containsMath(n *tree.Node) bool {
	found := false
	tree.Walk(n, func(c *tree.Node) bool {
		if found {
			return false
		}
		if (c.Kind == tree.KindElement && c.Tag == "math") || c.Kind == tree.KindMath {
			found = true
			return false
		}
		return true
	})
	return found
}

// visibleText is the text of n outside math elements.
func visibleText(n *tree.Node) string {
	var b strings.Builder
	tree.Walk(n, func(c *tree.Node) bool {
		switch {
		case c.Kind == tree.KindElement && c.Tag == "math", c.Kind == tree.KindMath:
			return false
		case c.Kind == tree.KindText:
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
