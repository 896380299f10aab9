package mathnorm

import (
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// Segment is a run of plain text or a delimited math expression.
type Segment struct {
	Text    string // plain text, or the LaTeX between delimiters
	Math    bool
	Display bool
	Raw     string // the expression including its delimiters
}

// Scan splits s into text and math segments. Inline $...$ follows the
// Pandoc rules: the opening $ must be followed by a non-space, the closing
// $ must be preceded by a non-space and not followed by a digit. Escaped
// characters never open or close math.
func Scan(s string) []Segment {
	var (
		segs []Segment
		last int
	)
	emit := func(start, end, contentStart, contentEnd int, display bool) {
		if start > last {
			segs = append(segs, Segment{Text: s[last:start]})
		}
		segs = append(segs, Segment{
			Text:    s[contentStart:contentEnd],
			Math:    true,
			Display: display,
			Raw:     s[start:end],
		})
		last = end
	}

	for i := 0; i < len(s); {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && (s[i+1] == '(' || s[i+1] == '[') {
				closer := `\)`
				if s[i+1] == '[' {
					closer = `\]`
				}
				if j := findClose(s, i+2, closer); j > i+2 {
					emit(i, j+2, i+2, j, s[i+1] == '[')
					i = j + 2
					continue
				}
			}
			i += 2
		case '$':
			if i+1 < len(s) && s[i+1] == '$' {
				if j := findClose(s, i+2, "$$"); j > i+2 && strings.TrimSpace(s[i+2:j]) != "" {
					emit(i, j+2, i+2, j, true)
					i = j + 2
					continue
				}
				i += 2
				continue
			}
			if j := inlineClose(s, i); j > 0 {
				emit(i, j+1, i+1, j, false)
				i = j + 1
				continue
			}
			i++
		default:
			i++
		}
	}
	if last == 0 {
		return []Segment{{Text: s}}
	}
	if last < len(s) {
		segs = append(segs, Segment{Text: s[last:]})
	}
	return segs
}

// inlineClose returns the index of the $ closing the inline math opened at
// open, or -1.
func inlineClose(s string, open int) int {
	if open+1 >= len(s) || isSpace(s[open+1]) {
		return -1
	}
	j := findClose(s, open+1, "$")
	if j < 0 || j == open+1 || isSpace(s[j-1]) {
		return -1
	}
	if j+1 < len(s) && s[j+1] >= '0' && s[j+1] <= '9' {
		return -1
	}
	if strings.Contains(s[open+1:j], "\n\n") {
		return -1
	}
	return j
}

// findClose returns the index of the first unescaped closer at or after
// from, or -1.
func findClose(s string, from int, closer string) int {
	for i := from; i < len(s); i++ {
		if strings.HasPrefix(s[i:], closer) {
			return i
		}
		if s[i] == '\\' {
			i++
		}
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// scanText turns the delimited math in a text node into math nodes.
func (m *normalizer) scanText(n *tree.Node) []*tree.Node {
	if !strings.ContainsAny(n.Text, `$\`) {
		return []*tree.Node{n}
	}
	segs := Scan(n.Text)
	if len(segs) == 1 && !segs[0].Math {
		return []*tree.Node{n}
	}
	out := make([]*tree.Node, 0, len(segs))
	for _, seg := range segs {
		if !seg.Math {
			out = append(out, tree.NewText(seg.Text))
			continue
		}
		latex := Clean(seg.Text)
		if latex == "" {
			out = append(out, tree.NewText(seg.Raw))
			continue
		}
		out = append(out, tree.NewMath(tree.MathSpan{
			Source:  seg.Raw,
			LaTeX:   latex,
			Display: seg.Display,
		}))
	}
	return out
}
