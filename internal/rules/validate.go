package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/tactica/internal/expr"
)

// Validation error codes (E200-E299)
const (
	ErrEmptyName     = "E201" // rule name is required
	ErrDuplicateName = "E202" // two rules share a name
	ErrInvalidNode   = "E203" // node sets zero or several variants
	ErrUnknownRef    = "E204" // ref names no rule
	ErrRefCycle      = "E205" // rules reference each other in a loop
	ErrEmptyCEL      = "E206" // cel expression is blank
	ErrMissingWhen   = "E207" // rule has no expression
)

// ValidationError is one problem found in a rule set.
type ValidationError struct {
	Rule    string `json:"rule,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
	Line    int    `json:"line,omitempty"`
}

func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s:%d: %s: %s", e.Code, e.Source, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned by Compile when Validate finds problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d validation error(s):\n  %s", len(errs), strings.Join(msgs, "\n  "))
}

// Validate checks a rule set for structural problems and returns all of them
// (it does not stop at the first). Leaf names and CEL syntax are checked
// later, when the set is compiled against a registry.
func Validate(rules []Rule) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name != "" {
			names[r.Name] = true
		}
	}

	seen := make(map[string]Rule, len(rules))
	for i, r := range rules {
		r := r // per-iteration copy (go1.22 loopvar semantics)
		at := func(field, code, msg string) ValidationError {
			return ValidationError{Rule: r.Name, Field: field, Message: msg, Code: code, Source: r.Source, Line: r.Line}
		}

		// E201: name is required
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, at(fmt.Sprintf("rules[%d].name", i), ErrEmptyName, "rule name is required"))
		} else if first, dup := seen[r.Name]; dup {
			// E202: names are unique across the set
			errs = append(errs, at(fmt.Sprintf("rules[%d].name", i), ErrDuplicateName,
				fmt.Sprintf("duplicate rule name %q (first defined at %s)", r.Name, first.Where())))
		} else {
			seen[r.Name] = r
		}

		// E207: when is required
		if len(r.When.Canonical()) == 0 {
			errs = append(errs, at(fieldPath(r, i, "when"), ErrMissingWhen, "rule has no when expression"))
			continue
		}

		expr.Walk(fieldPath(r, i, "when"), r.When, func(path string, n expr.Node) bool {
			// E203: exactly one variant per node
			if problem := n.Problem(); problem != "" {
				errs = append(errs, at(path, ErrInvalidNode, problem))
				return false
			}
			switch n.Kind() {
			case expr.KindCEL:
				// E206: cel must contain an expression
				if strings.TrimSpace(n.CEL) == "" {
					errs = append(errs, at(path, ErrEmptyCEL, "cel expression is blank"))
				}
			case expr.KindRef:
				// E204: refs must name a rule in the set
				if !names[n.Ref] {
					errs = append(errs, at(path, ErrUnknownRef, fmt.Sprintf("ref %q names no rule", n.Ref)))
				}
			}
			return true
		})
	}

	// E205: ref cycles
	for _, cycle := range refCycles(rules) {
		r := seen[cycle[0]]
		errs = append(errs, ValidationError{
			Rule:    cycle[0],
			Field:   "when",
			Message: "reference cycle: " + strings.Join(cycle, " -> "),
			Code:    ErrRefCycle,
			Source:  r.Source,
			Line:    r.Line,
		})
	}

	return errs
}

func fieldPath(r Rule, i int, field string) string {
	if r.Name != "" {
		return r.Name + "." + field
	}
	return fmt.Sprintf("rules[%d].%s", i, field)
}

// refGraph maps rule name -> rule names its expression references.
type refGraph map[string][]string

// refCycles finds strongly connected components of the ref graph with more
// than one member, or with a self-reference, and returns each as a closed
// path starting and ending at its smallest name.
func refCycles(rules []Rule) [][]string {
	graph := make(refGraph, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			continue
		}
		if _, dup := graph[r.Name]; dup {
			continue
		}
		graph[r.Name] = r.When.Refs()
	}

	var cycles [][]string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || graph.hasSelfLoop(scc[0]) {
			cycles = append(cycles, graph.cyclePath(scc))
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func (g refGraph) hasSelfLoop(node string) bool {
	for _, next := range g[node] {
		if next == node {
			return true
		}
	}
	return false
}

// tarjanSCC returns the strongly connected components of g. Nodes are
// visited in sorted order so the result is deterministic.
func tarjanSCC(g refGraph) [][]string {
	var (
		index   int
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var connect func(string)
	connect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, known := g[w]; !known {
				continue // unknown refs are reported as E204
			}
			if _, visited := indices[w]; !visited {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			connect(n)
		}
	}
	return sccs
}

// cyclePath walks edges inside scc from its smallest member back to itself.
func (g refGraph) cyclePath(scc []string) []string {
	members := make(map[string]bool, len(scc))
	start := scc[0]
	for _, n := range scc {
		members[n] = true
		if n < start {
			start = n
		}
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, w := range g[current] {
			if w == start {
				next = w
				break
			}
			if members[w] && !visited[w] && next == "" {
				next = w
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}
