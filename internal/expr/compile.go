package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/tactica/internal/pred"
)

// Compiler turns Nodes into Programs.
//
// Leaves resolves leaf names. CEL may be nil, in which case cel nodes fail to
// compile. Refs holds named nodes that ref nodes may point at.
type Compiler[T, C any] struct {
	Leaves *Registry[T, C]
	CEL    *CELBinding[T, C]
	Refs   map[string]Node
}

// Compile compiles n. root names the node in error paths and explain steps
// (e.g. "when"); an empty root defaults to "$".
func (c *Compiler[T, C]) Compile(root string, n Node) (*Program[T, C], error) {
	if root == "" {
		root = "$"
	}
	tree, err := c.compile(root, n, nil)
	if err != nil {
		return nil, err
	}
	return &Program[T, C]{root: tree}, nil
}

// CompileRef compiles the named entry of Refs. The name itself counts as
// being resolved, so a node referencing its own name is reported as a cycle.
func (c *Compiler[T, C]) CompileRef(name string) (*Program[T, C], error) {
	n, ok := c.Refs[name]
	if !ok {
		return nil, &CompileError{Code: CodeUnknownRef, Path: name, Message: fmt.Sprintf("unknown ref %q", name)}
	}
	tree, err := c.compile(name, n, []string{name})
	if err != nil {
		return nil, err
	}
	return &Program[T, C]{root: tree}, nil
}

// compile builds the subtree at path. resolving lists the refs being
// expanded on the current branch, for cycle detection.
func (c *Compiler[T, C]) compile(path string, n Node, resolving []string) (*compiled[T, C], error) {
	if problem := n.Problem(); problem != "" {
		return nil, &CompileError{Code: CodeInvalidNode, Path: path, Message: problem}
	}

	node := &compiled[T, C]{kind: n.Kind(), path: path, label: n.Label()}

	switch node.kind {
	case KindLeaf:
		if c.Leaves == nil {
			return nil, &CompileError{Code: CodeUnknownLeaf, Path: path, Message: fmt.Sprintf("unknown leaf %q (no registry)", n.Leaf)}
		}
		factory, ok := c.Leaves.Lookup(n.Leaf)
		if !ok {
			return nil, &CompileError{
				Code:    CodeUnknownLeaf,
				Path:    path,
				Message: fmt.Sprintf("unknown leaf %q (known: %s)", n.Leaf, strings.Join(c.Leaves.Names(), ", ")),
			}
		}
		p, err := factory(n.Args)
		if err != nil {
			return nil, &CompileError{Code: CodeLeafArgs, Path: path, Message: fmt.Sprintf("leaf %q: %v", n.Leaf, err), Err: err}
		}
		node.p = pred.Named(node.label, p)

	case KindCEL:
		if c.CEL == nil {
			return nil, &CompileError{Code: CodeCEL, Path: path, Message: "cel expressions are not enabled"}
		}
		p, err := c.CEL.compile(n.CEL)
		if err != nil {
			return nil, &CompileError{Code: CodeCEL, Path: path, Message: err.Error(), Err: err}
		}
		node.p = p

	case KindConst:
		if *n.Const {
			node.p = pred.TruePred[T, C]{}
		} else {
			node.p = pred.FalsePred[T, C]{}
		}

	case KindAll:
		ch := pred.AlwaysTrue[T, C]()
		for i, child := range n.All {
			sub, err := c.compile(fmt.Sprintf("%s.all[%d]", path, i), child, resolving)
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, sub)
			ch = ch.And(sub.p)
		}
		node.p = ch.Build()

	case KindAny:
		ch := pred.AlwaysFalse[T, C]()
		for i, child := range n.Any {
			sub, err := c.compile(fmt.Sprintf("%s.any[%d]", path, i), child, resolving)
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, sub)
			ch = ch.Or(sub.p)
		}
		node.p = ch.Build()

	case KindNot:
		sub, err := c.compile(path+".not", *n.Not, resolving)
		if err != nil {
			return nil, err
		}
		node.children = []*compiled[T, C]{sub}
		node.p = pred.Start(sub.p).Not().Build()

	case KindRef:
		for _, name := range resolving {
			if name == n.Ref {
				cycle := append(append([]string{}, resolving...), n.Ref)
				return nil, &CompileError{
					Code:    CodeRefCycle,
					Path:    path,
					Message: "reference cycle: " + strings.Join(cycle, " -> "),
				}
			}
		}
		target, ok := c.Refs[n.Ref]
		if !ok {
			return nil, &CompileError{Code: CodeUnknownRef, Path: path, Message: fmt.Sprintf("unknown ref %q", n.Ref)}
		}
		sub, err := c.compile(n.Ref, target, append(resolving, n.Ref))
		if err != nil {
			return nil, err
		}
		node.children = []*compiled[T, C]{sub}
		node.p = sub.p
	}

	return node, nil
}
