// Package strip is the progressive stripper: an ordered list of pure tree
// transformations that narrow a mapped document down to text, Markdown
// structure and math.
//
// Every stage skips protected nodes and is idempotent on its own output, so
// Run(Run(t)) renders the same as Run(t).
package strip

import (
	"fmt"

	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// Stage is one named transformation of the working tree.
type Stage struct {
	Name  string
	Apply func(*tree.Node) *tree.Node
}

// Stages returns the ten stages in the order they run.
func Stages() []Stage {
	return []Stage{
		{Name: "remove-non-content", Apply: removeNonContent},
		{Name: "remove-boilerplate", Apply: removeBoilerplate},
		{Name: "collapse-wrappers", Apply: collapseWrappers},
		{Name: "normalize-whitespace", Apply: normalizeWhitespace},
		{Name: "unescape-entities", Apply: unescapeEntities},
		{Name: "remove-empty", Apply: removeEmpty},
		{Name: "normalize-headings", Apply: normalizeHeadings},
		{Name: "strip-attributes", Apply: stripAttributes},
		{Name: "resolve-references", Apply: resolveReferences},
		{Name: "finalize", Apply: finalize},
	}
}

// UnescapeEntities runs the entity stage on its own, for trees built from
// text that never went through the HTML parser.
func UnescapeEntities(root *tree.Node) *tree.Node {
	return unescapeEntities(root)
}

// Run folds all stages over root.
func Run(root *tree.Node) (*tree.Node, []error) {
	var errs []error
	for _, s := range Stages() {
		var stageErrs []error
		root, stageErrs = Apply(s, root)
		errs = append(errs, stageErrs...)
	}
	return root, errs
}

// Apply runs one stage. If the stage fails on the tree as a whole, it is
// retried on each top-level child separately and a child it still fails on
// is replaced by its plain text.
func Apply(s Stage, root *tree.Node) (*tree.Node, []error) {
	backup := root.Clone()
	out, err := safeApply(s, root)
	if err == nil {
		return out, nil
	}

	var errs []error
	children := make([]*tree.Node, 0, len(backup.Children))
	for _, c := range backup.Children {
		raw := c.TextContent()
		holder := &tree.Node{Kind: backup.Kind, Children: []*tree.Node{c.Clone()}}
		res, err := safeApply(s, holder)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: stage %s on %s node: %v",
				core.ErrMalformedInput, s.Name, c.Kind, err))
			children = append(children, tree.NewText(raw))
			continue
		}
		children = append(children, res.Children...)
	}
	backup.Children = children
	return backup, errs
}

func safeApply(s Stage, root *tree.Node) (out *tree.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	out = s.Apply(root)
	if out == nil {
		return nil, fmt.Errorf("stage %s returned no tree", s.Name)
	}
	return out, nil
}

// rewrite replaces every unprotected descendant of n by what fn returns for
// it. Children are rewritten before fn sees their parent.
func rewrite(n *tree.Node, fn func(*tree.Node) []*tree.Node) {
	if n.Protected {
		return
	}
	out := make([]*tree.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Protected {
			out = append(out, c)
			continue
		}
		rewrite(c, fn)
		out = append(out, fn(c)...)
	}
	n.Children = out
}

// visit calls fn on n and every unprotected descendant, parents first.
func visit(n *tree.Node, fn func(*tree.Node)) {
	if n.Protected {
		return
	}
	fn(n)
	for _, c := range n.Children {
		visit(c, fn)
	}
}

func keep(n *tree.Node) []*tree.Node { return []*tree.Node{n} }
