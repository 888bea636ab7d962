// Package rules loads named rule definitions from YAML and CUE files,
// validates them, and compiles them into expr programs.
//
// A rule file in YAML:
//
//	rules:
//	  - name: can_move
//	    description: reachable, alive, and free
//	    when:
//	      all:
//	        - leaf: movable
//	        - leaf: alive
//	        - ref: free_cell
//
// The same rule in CUE:
//
//	rule: can_move: {
//		description: "reachable, alive, and free"
//		when: all: [{leaf: "movable"}, {leaf: "alive"}, {ref: "free_cell"}]
//	}
//
// A ref node names another rule; its expression is inlined at compile time.
package rules

import (
	"fmt"

	"github.com/roach88/tactica/internal/canonical"
	"github.com/roach88/tactica/internal/expr"
)

// Rule is one named expression.
type Rule struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	When        expr.Node `json:"when"`

	// Hash identifies When by content. Two rules with the same expression
	// share a hash regardless of name or description.
	Hash string `json:"hash"`

	// Source and Line locate the definition for error messages.
	Source string `json:"-"`
	Line   int    `json:"-"`
}

// HashNode returns the content hash of an expression.
func HashNode(n expr.Node) (string, error) {
	h, err := canonical.Hash(canonical.DomainRule, n.Canonical())
	if err != nil {
		return "", fmt.Errorf("hash rule expression: %w", err)
	}
	return h, nil
}

// Where formats the rule location as file:line, or just the name when the
// rule was built in code.
func (r Rule) Where() string {
	switch {
	case r.Source != "" && r.Line > 0:
		return fmt.Sprintf("%s:%d", r.Source, r.Line)
	case r.Source != "":
		return r.Source
	default:
		return r.Name
	}
}

// New builds a rule in code and computes its hash.
func New(name, description string, when expr.Node) (Rule, error) {
	r := Rule{Name: name, Description: description, When: when}
	h, err := HashNode(when)
	if err != nil {
		return Rule{}, err
	}
	r.Hash = h
	return r, nil
}
