// Package expr compiles data-driven boolean expressions into pred values.
//
// An expression is a tree of Nodes decoded from YAML or CUE:
//
//	all:
//	  - leaf: movable
//	  - leaf: alive
//	  - any:
//	      - leaf: walkable
//	      - not: { leaf: vacant }
//	  - cel: "actor.hp > 10"
//
// Each node sets exactly one of leaf, all, any, not, cel, const or ref.
// all and any fold their children from the And and Or identities, so an
// empty all passes and an empty any fails.
//
// Compiled programs evaluate through the pred combinators, so they share the
// short-circuit rules documented there. Program.Explain walks the same tree
// and reports which leaves ran.
package expr

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindLeaf
	KindAll
	KindAny
	KindNot
	KindCEL
	KindConst
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindAll:
		return "all"
	case KindAny:
		return "any"
	case KindNot:
		return "not"
	case KindCEL:
		return "cel"
	case KindConst:
		return "const"
	case KindRef:
		return "ref"
	default:
		return "invalid"
	}
}

// Node is one expression tree node. Exactly one variant field is set.
type Node struct {
	Leaf  string         `yaml:"leaf,omitempty" json:"leaf,omitempty"`
	Args  map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
	All   []Node         `yaml:"all,omitempty" json:"all,omitempty"`
	Any   []Node         `yaml:"any,omitempty" json:"any,omitempty"`
	Not   *Node          `yaml:"not,omitempty" json:"not,omitempty"`
	CEL   string         `yaml:"cel,omitempty" json:"cel,omitempty"`
	Const *bool          `yaml:"const,omitempty" json:"const,omitempty"`
	Ref   string         `yaml:"ref,omitempty" json:"ref,omitempty"`
}

// Kind reports the node's variant, or KindInvalid when zero or more than one
// variant is set.
func (n Node) Kind() Kind {
	kinds := n.setKinds()
	if len(kinds) != 1 {
		return KindInvalid
	}
	return kinds[0]
}

func (n Node) setKinds() []Kind {
	var kinds []Kind
	if n.Leaf != "" {
		kinds = append(kinds, KindLeaf)
	}
	if n.All != nil {
		kinds = append(kinds, KindAll)
	}
	if n.Any != nil {
		kinds = append(kinds, KindAny)
	}
	if n.Not != nil {
		kinds = append(kinds, KindNot)
	}
	if n.CEL != "" {
		kinds = append(kinds, KindCEL)
	}
	if n.Const != nil {
		kinds = append(kinds, KindConst)
	}
	if n.Ref != "" {
		kinds = append(kinds, KindRef)
	}
	return kinds
}

// Problem describes why a node is structurally invalid, or "" when it is fine.
// Children are not inspected.
func (n Node) Problem() string {
	kinds := n.setKinds()
	switch {
	case len(kinds) == 0:
		return "node sets none of leaf, all, any, not, cel, const, ref"
	case len(kinds) > 1:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		return fmt.Sprintf("node sets more than one of %s", strings.Join(names, ", "))
	case n.Args != nil && kinds[0] != KindLeaf:
		return "args is only valid on leaf nodes"
	}
	return ""
}

// Walk visits n and its descendants depth-first. fn returning false skips
// the node's children. Ref targets are not followed.
func Walk(path string, n Node, fn func(path string, n Node) bool) {
	if !fn(path, n) {
		return
	}
	for i, child := range n.All {
		Walk(fmt.Sprintf("%s.all[%d]", path, i), child, fn)
	}
	for i, child := range n.Any {
		Walk(fmt.Sprintf("%s.any[%d]", path, i), child, fn)
	}
	if n.Not != nil {
		Walk(path+".not", *n.Not, fn)
	}
}

// Refs returns the names referenced anywhere under n, in first-seen order.
func (n Node) Refs() []string {
	var refs []string
	seen := make(map[string]bool)
	Walk("", n, func(_ string, m Node) bool {
		if m.Ref != "" && !seen[m.Ref] {
			seen[m.Ref] = true
			refs = append(refs, m.Ref)
		}
		return true
	})
	return refs
}

// Canonical converts n to plain maps and slices for canonical JSON encoding.
func (n Node) Canonical() map[string]any {
	out := make(map[string]any)
	if n.Leaf != "" {
		out["leaf"] = n.Leaf
	}
	if n.Args != nil {
		out["args"] = n.Args
	}
	if n.All != nil {
		out["all"] = canonicalList(n.All)
	}
	if n.Any != nil {
		out["any"] = canonicalList(n.Any)
	}
	if n.Not != nil {
		out["not"] = n.Not.Canonical()
	}
	if n.CEL != "" {
		out["cel"] = n.CEL
	}
	if n.Const != nil {
		out["const"] = *n.Const
	}
	if n.Ref != "" {
		out["ref"] = n.Ref
	}
	return out
}

func canonicalList(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n.Canonical()
	}
	return out
}

// Label is the short description used in explain steps.
func (n Node) Label() string {
	switch n.Kind() {
	case KindLeaf:
		if len(n.Args) == 0 {
			return "leaf:" + n.Leaf
		}
		return fmt.Sprintf("leaf:%s%s", n.Leaf, formatArgs(n.Args))
	case KindCEL:
		return "cel:" + n.CEL
	case KindConst:
		return fmt.Sprintf("const:%t", *n.Const)
	case KindRef:
		return "ref:" + n.Ref
	default:
		return n.Kind().String()
	}
}

func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, args[k])
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Leaf, All, Any, Not, CEL, Const and Ref build nodes in Go code.

func Leaf(name string) Node { return Node{Leaf: name} }

func LeafWith(name string, args map[string]any) Node { return Node{Leaf: name, Args: args} }

func All(children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{All: children}
}

func Any(children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{Any: children}
}

func Not(child Node) Node { return Node{Not: &child} }

func CEL(src string) Node { return Node{CEL: src} }

func Const(v bool) Node { return Node{Const: &v} }

func Ref(name string) Node { return Node{Ref: name} }
