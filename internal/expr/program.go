package expr

import "github.com/roach88/tactica/internal/pred"

// Program is a compiled expression. It is immutable and safe for concurrent
// use when the underlying leaves are.
type Program[T, C any] struct {
	root *compiled[T, C]
}

type compiled[T, C any] struct {
	kind     Kind
	path     string
	label    string
	p        pred.Pred[T, C]
	children []*compiled[T, C]
}

// Step records one leaf evaluation during Explain.
type Step struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Result bool   `json:"result"`
}

// Test evaluates the program.
func (p *Program[T, C]) Test(t T, c C) bool {
	return p.root.p.Test(t, c)
}

// Pred returns the compiled predicate.
func (p *Program[T, C]) Pred() pred.Pred[T, C] {
	return p.root.p
}

func (p *Program[T, C]) String() string {
	return pred.Describe(p.root.p)
}

// Explain evaluates the program and records every leaf, cel and const node
// that ran, in evaluation order. Short-circuiting matches Test exactly:
// skipped operands do not appear in the steps.
func (p *Program[T, C]) Explain(t T, c C) (bool, []Step) {
	var steps []Step
	result := p.root.explain(t, c, &steps)
	return result, steps
}

func (n *compiled[T, C]) explain(t T, c C, steps *[]Step) bool {
	switch n.kind {
	case KindAll:
		for _, child := range n.children {
			if !child.explain(t, c, steps) {
				return false
			}
		}
		return true
	case KindAny:
		for _, child := range n.children {
			if child.explain(t, c, steps) {
				return true
			}
		}
		return false
	case KindNot:
		return !n.children[0].explain(t, c, steps)
	case KindRef:
		return n.children[0].explain(t, c, steps)
	default:
		result := n.p.Test(t, c)
		*steps = append(*steps, Step{Path: n.path, Label: n.label, Result: result})
		return result
	}
}
