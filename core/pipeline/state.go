package pipeline

import (
	"github.com/gaurav-prasanna/arxiv2md/core"
	"github.com/gaurav-prasanna/arxiv2md/core/tree"
)

// Phase is the position of a conversion run in its state machine:
// Fetched → MathNormalized → StructureMapped → Stripped → Rendered.
type Phase int

const (
	PhaseFetched Phase = iota
	PhaseMathNormalized
	PhaseStructureMapped
	PhaseStripped
	PhaseRendered
)

func (p Phase) String() string {
	switch p {
	case PhaseFetched:
		return "fetched"
	case PhaseMathNormalized:
		return "math-normalized"
	case PhaseStructureMapped:
		return "structure-mapped"
	case PhaseStripped:
		return "stripped"
	case PhaseRendered:
		return "rendered"
	}
	return "unknown"
}

// StageReport records the tree size after one step.
type StageReport struct {
	Phase Phase
	Stage string
	Nodes int
}

// State is threaded through one conversion run and discarded afterwards.
// Protection is carried by the nodes themselves (tree.Node.Protected).
type State struct {
	Source   string
	Phase    Phase
	Tree     *tree.Node
	Reports  []StageReport
	Warnings []core.Warning
}

func (s *State) advance(p Phase, stage string) StageReport {
	s.Phase = p
	r := StageReport{Phase: p, Stage: stage}
	if s.Tree != nil {
		r.Nodes = tree.Count(s.Tree)
	}
	s.Reports = append(s.Reports, r)
	return r
}

func (s *State) warn(stage string, err error) {
	s.Warnings = append(s.Warnings, core.Warning{Stage: stage, Err: err})
}

func (s *State) warnAll(stage string, errs []error) {
	for _, err := range errs {
		s.warn(stage, err)
	}
}
