package mathnorm

import (
	"errors"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/tree"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func normalize(t *testing.T, src string) (*tree.Node, []error) {
	t.Helper()
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return Normalize(tree.FromHTML(root))
}

func spans(n *tree.Node) []tree.MathSpan {
	var out []tree.MathSpan
	for _, s := range tree.MathSpans(n) {
		out = append(out, tree.MathSpan{LaTeX: s.LaTeX, Display: s.Display, Tag: s.Tag})
	}
	return out
}

func TestNormalize_MathML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []tree.MathSpan
	}{
		{
			name: "annotation wins",
			html: `<p><math alttext="wrong" display="inline"><semantics><msup><mi>x</mi><mn>2</mn></msup><annotation encoding="application/x-tex">\displaystyle x^{2}</annotation></semantics></math></p>`,
			want: []tree.MathSpan{{LaTeX: "x^{2}"}},
		},
		{
			name: "alttext display",
			html: `<p><math alttext="E=mc^{2}" display="block"><mi>E</mi></math></p>`,
			want: []tree.MathSpan{{LaTeX: "E=mc^{2}", Display: true}},
		},
		{
			name: "presentation markup",
			html: `<p><math><mfrac><mi>α</mi><msqrt><mi>n</mi></msqrt></mfrac></math></p>`,
			want: []tree.MathSpan{{LaTeX: `\frac{\alpha}{\sqrt{n}}`}},
		},
		{
			name: "function names",
			html: `<p><math><mrow><mi>sin</mi><mo>&#x2061;</mo><msub><mi>x</mi><mi>i</mi></msub></mrow></math></p>`,
			want: []tree.MathSpan{{LaTeX: `\sin x_{i}`}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, warns := normalize(t, tt.html)
			if len(warns) != 0 {
				t.Errorf("unexpected warnings: %v", warns)
			}
			if diff := cmp.Diff(tt.want, spans(root)); diff != "" {
				t.Errorf("spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_MathIsProtectedAndKeepsSource(t *testing.T) {
	root, _ := normalize(t, `<p><math alttext="y"><mi>y</mi></math></p>`)
	var found *tree.Node
	tree.Walk(root, func(n *tree.Node) bool {
		if n.Kind == tree.KindMath {
			found = n
		}
		return true
	})
	if found == nil || !found.Protected {
		t.Fatalf("math node missing or unprotected: %+v", found)
	}
	if !strings.Contains(found.Math.Source, "<mi>y</mi>") {
		t.Errorf("source = %q", found.Math.Source)
	}
}

func TestNormalize_Unresolvable(t *testing.T) {
	root, warns := normalize(t, `<p>before <math><annotation encoding="text/plain">?</annotation></math> after</p>`)
	if len(warns) != 1 || !errors.Is(warns[0], core.ErrUnresolvableMath) {
		t.Fatalf("warnings = %v, want one unresolvable math warning", warns)
	}
	if len(tree.MathSpans(root)) != 0 {
		t.Error("unresolvable math produced a span")
	}
}

func TestNormalize_DelimitedText(t *testing.T) {
	root, _ := normalize(t, `<p>Energy $E = mc^2$ and \[a+b\] cost $5 and $6.</p><pre>$not math$</pre>`)
	want := []tree.MathSpan{{LaTeX: "E = mc^2"}, {LaTeX: "a+b", Display: true}}
	if diff := cmp.Diff(want, spans(root)); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_EquationGroup(t *testing.T) {
	src := `<table class="ltx_equationgroup ltx_eqn_align"><tbody>
<tr><td class="ltx_eqn_cell ltx_eqn_center_padleft"></td><td><math alttext="a"><mi>a</mi></math></td><td><math alttext="=b+c"><mo>=</mo></math></td><td class="ltx_eqn_cell ltx_eqn_center_padright"></td><td class="ltx_eqn_cell ltx_eqn_eqno">(1)</td></tr>
<tr><td class="ltx_eqn_cell ltx_eqn_center_padleft"></td><td><math alttext="d"><mi>d</mi></math></td><td><math alttext="=e"><mo>=</mo></math></td><td class="ltx_eqn_cell ltx_eqn_center_padright"></td><td class="ltx_eqn_cell ltx_eqn_eqno">(2)</td></tr>
</tbody></table>`
	root, warns := normalize(t, src)
	if len(warns) != 0 {
		t.Errorf("unexpected warnings: %v", warns)
	}
	want := []tree.MathSpan{{
		LaTeX:   "\\begin{aligned}\na & =b+c \\tag{1} \\\\\nd & =e \\tag{2}\n\\end{aligned}",
		Display: true,
		Tag:     "1",
	}}
	if diff := cmp.Diff(want, spans(root)); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	tree.Walk(root, func(n *tree.Node) bool {
		if n.Tag == "table" {
			t.Error("equation table left in tree")
		}
		return true
	})
}

func TestNormalize_SingleRowEquation(t *testing.T) {
	root, _ := normalize(t, `<table><tr><td><math alttext="x=1"></math></td><td>(3)</td></tr></table>`)
	want := []tree.MathSpan{{LaTeX: `x=1 \tag{3}`, Display: true, Tag: "3"}}
	if diff := cmp.Diff(want, spans(root)); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_DataTableKept(t *testing.T) {
	root, _ := normalize(t, `<table><tr><td>Loss</td><td><math alttext="\ell"></math></td></tr></table>`)
	tables := 0
	tree.Walk(root, func(n *tree.Node) bool {
		if n.Tag == "table" {
			tables++
		}
		return true
	})
	if tables != 1 {
		t.Errorf("data table rewritten")
	}
	if diff := cmp.Diff([]tree.MathSpan{{LaTeX: `\ell`}}, spans(root)); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_SkipsProtected(t *testing.T) {
	n := &tree.Node{Kind: tree.KindDocument, Children: []*tree.Node{
		{Kind: tree.KindMarkdown, Text: "$x$", Protected: true},
	}}
	root, _ := Normalize(n)
	if len(tree.MathSpans(root)) != 0 || root.Children[0].Text != "$x$" {
		t.Error("protected node was rewritten")
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		in   string
		want []Segment
	}{
		{"a $x$ b", []Segment{{Text: "a "}, {Text: "x", Math: true, Raw: "$x$"}, {Text: " b"}}},
		{`\(a\) and \[b\]`, []Segment{{Text: "a", Math: true, Raw: `\(a\)`}, {Text: " and "}, {Text: "b", Math: true, Display: true, Raw: `\[b\]`}}},
		{"$$ $$", []Segment{{Text: "$$ $$"}}},
		{"$5 and $6", []Segment{{Text: "$5 and $6"}}},
		{`price \$5 and $y$`, []Segment{{Text: `price \$5 and `}, {Text: "y", Math: true, Raw: "$y$"}}},
		{"$$a\nb$$", []Segment{{Text: "a\nb", Math: true, Display: true, Raw: "$$a\nb$$"}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Scan(tt.in)); diff != "" {
			t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"\\displaystyle x^2 % note\n + y": "x^2 + y",
		`\textstyle\alpha`:                `\alpha`,
		"a$b":                             `a\$b`,
		`a\$b`:                            `a\$b`,
		`100\% sure`:                      `100\% sure`,
		"  \n ":                           "",
		`x\ `:                             "x",
		`x\`:                              "x",
		`a \\ `:                           `a \\`,
		`a \\\ `:                          `a \\`,
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}
