package mathnorm

import (
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// symbols maps Unicode characters common in MathML token elements to LaTeX.
var symbols = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`, 'ε': `\epsilon`,
	'ϵ': `\epsilon`, 'ζ': `\zeta`, 'η': `\eta`, 'θ': `\theta`, 'ϑ': `\vartheta`,
	'ι': `\iota`, 'κ': `\kappa`, 'λ': `\lambda`, 'μ': `\mu`, 'ν': `\nu`,
	'ξ': `\xi`, 'π': `\pi`, 'ρ': `\rho`, 'σ': `\sigma`, 'τ': `\tau`,
	'υ': `\upsilon`, 'φ': `\phi`, 'ϕ': `\phi`, 'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`, 'Ξ': `\Xi`,
	'Π': `\Pi`, 'Σ': `\Sigma`, 'Φ': `\Phi`, 'Ψ': `\Psi`, 'Ω': `\Omega`,
	'≤': `\leq`, '≥': `\geq`, '≠': `\neq`, '≈': `\approx`, '≡': `\equiv`,
	'∼': `\sim`, '≃': `\simeq`, '∝': `\propto`, '≪': `\ll`, '≫': `\gg`,
	'∞': `\infty`, '∑': `\sum`, '∏': `\prod`, '∫': `\int`, '∮': `\oint`,
	'∂': `\partial`, '∇': `\nabla`, '∈': `\in`, '∉': `\notin`, '∋': `\ni`,
	'⊂': `\subset`, '⊆': `\subseteq`, '⊃': `\supset`, '⊇': `\supseteq`,
	'∪': `\cup`, '∩': `\cap`, '∅': `\emptyset`, '∀': `\forall`, '∃': `\exists`,
	'¬': `\neg`, '∧': `\wedge`, '∨': `\vee`, '⊕': `\oplus`, '⊗': `\otimes`,
	'→': `\to`, '←': `\leftarrow`, '↔': `\leftrightarrow`, '⇒': `\Rightarrow`,
	'⇐': `\Leftarrow`, '⇔': `\Leftrightarrow`, '↦': `\mapsto`,
	'×': `\times`, '·': `\cdot`, '⋅': `\cdot`, '∘': `\circ`, '±': `\pm`,
	'∓': `\mp`, '÷': `\div`, '…': `\ldots`, '⋯': `\cdots`, '⋮': `\vdots`,
	'⋱': `\ddots`, '′': `'`, '″': `''`, '∥': `\|`, '‖': `\|`, '⊤': `\top`,
	'⊥': `\perp`, '⟨': `\langle`, '⟩': `\rangle`, '⌈': `\lceil`, '⌉': `\rceil`,
	'⌊': `\lfloor`, '⌋': `\rfloor`, 'ℓ': `\ell`, 'ℏ': `\hbar`,
	'ℝ': `\mathbb{R}`, 'ℕ': `\mathbb{N}`, 'ℤ': `\mathbb{Z}`, 'ℚ': `\mathbb{Q}`,
	'ℂ': `\mathbb{C}`, '−': `-`, '∗': `*`, '∣': `\mid`,
	'{': `\{`, '}': `\}`, '%': `\%`, '#': `\#`, '&': `\&`, '_': `\_`,
	'\u2061': ``, '\u2062': ``, '\u2063': ``, '\u2064': ``, '\u00a0': ` `,
}

// functions are multi-letter identifiers LaTeX has operator commands for.
var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true,
	"tanh": true, "log": true, "ln": true, "exp": true, "max": true, "min": true,
	"lim": true, "sup": true, "inf": true, "det": true, "dim": true, "ker": true,
	"arg": true, "deg": true, "gcd": true, "Pr": true,
}

// accents maps mover operators to accent commands.
var accents = map[string]string{
	"^": `\hat`, "ˆ": `\hat`, "¯": `\bar`, "‾": `\bar`, "~": `\tilde`, "˜": `\tilde`,
	"→": `\vec`, `\to`: `\vec`, "˙": `\dot`, "¨": `\ddot`, "⏞": `\overbrace`,
}

// translate renders a MathML subtree as LaTeX. It covers the presentation
// elements LaTeXML emits; anything else contributes its children.
func translate(n *tree.Node) string {
	if n.Kind == tree.KindText {
		return symbolize(strings.TrimSpace(n.Text))
	}
	if n.Kind != tree.KindElement {
		return ""
	}

	args := func() []string {
		var out []string
		for _, c := range n.Children {
			if c.Kind == tree.KindElement || strings.TrimSpace(c.Text) != "" {
				out = append(out, translate(c))
			}
		}
		return out
	}

	switch n.Tag {
	case "annotation", "annotation-xml":
		return ""
	case "mi":
		return identifier(strings.TrimSpace(n.TextContent()))
	case "mn", "mo":
		return symbolize(strings.TrimSpace(n.TextContent()))
	case "mtext", "ms":
		if t := strings.TrimSpace(n.TextContent()); t != "" {
			return `\text{` + t + `}`
		}
		return ""
	case "mspace":
		return `\,`
	case "msup":
		a := args()
		if len(a) == 2 {
			return group(a[0]) + "^{" + a[1] + "}"
		}
	case "msub":
		a := args()
		if len(a) == 2 {
			return group(a[0]) + "_{" + a[1] + "}"
		}
	case "msubsup", "munderover":
		a := args()
		if len(a) == 3 {
			return group(a[0]) + "_{" + a[1] + "}^{" + a[2] + "}"
		}
	case "mfrac":
		a := args()
		if len(a) == 2 {
			return `\frac{` + a[0] + "}{" + a[1] + "}"
		}
	case "msqrt":
		return `\sqrt{` + concat(args()) + "}"
	case "mroot":
		a := args()
		if len(a) == 2 {
			return `\sqrt[` + a[1] + "]{" + a[0] + "}"
		}
	case "mover":
		a := args()
		if len(a) == 2 {
			if acc, ok := accents[a[1]]; ok {
				return acc + "{" + a[0] + "}"
			}
			return `\overset{` + a[1] + "}{" + a[0] + "}"
		}
	case "munder":
		a := args()
		if len(a) == 2 {
			return `\underset{` + a[1] + "}{" + a[0] + "}"
		}
	case "mfenced":
		open, close := "(", ")"
		if v := n.Attribute("open"); v != "" {
			open = v
		}
		if v := n.Attribute("close"); v != "" {
			close = v
		}
		sep := n.Attribute("separators")
		if sep == "" {
			sep = ","
		}
		return `\left` + fence(open) + strings.Join(args(), sep) + `\right` + fence(close)
	case "mtable":
		return `\begin{matrix}` + strings.Join(args(), ` \\ `) + `\end{matrix}`
	case "mtr", "mlabeledtr":
		return strings.Join(args(), " & ")
	}
	return concat(args())
}

func identifier(s string) string {
	if functions[s] {
		return `\` + s
	}
	sym := symbolize(s)
	if len([]rune(s)) > 1 && sym == s {
		return `\mathrm{` + s + `}`
	}
	return sym
}

func symbolize(s string) string {
	var parts []string
	for _, r := range s {
		if sym, ok := symbols[r]; ok {
			parts = append(parts, sym)
			continue
		}
		parts = append(parts, string(r))
	}
	return concat(parts)
}

func fence(s string) string {
	switch s {
	case "{":
		return `\{`
	case "}":
		return `\}`
	case "":
		return "."
	}
	return symbolize(s)
}
