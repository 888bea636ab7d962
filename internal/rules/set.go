package rules

import (
	"fmt"

	"github.com/roach88/tactica/internal/expr"
)

// Set is a compiled rule set.
type Set[T, C any] struct {
	rules    []Rule
	programs map[string]*expr.Program[T, C]
}

// Compile validates rules and compiles each against leaves and cel (which
// may be nil). Refs resolve to other rules in the same slice. Validation
// problems are returned together as ValidationErrors; the first compile
// error (unknown leaf, bad args, bad CEL) is returned as an
// *expr.CompileError wrapped with the rule location.
func Compile[T, C any](rules []Rule, leaves *expr.Registry[T, C], cel *expr.CELBinding[T, C]) (*Set[T, C], error) {
	if errs := Validate(rules); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	refs := make(map[string]expr.Node, len(rules))
	for _, r := range rules {
		refs[r.Name] = r.When
	}
	c := &expr.Compiler[T, C]{Leaves: leaves, CEL: cel, Refs: refs}

	s := &Set[T, C]{
		rules:    append([]Rule(nil), rules...),
		programs: make(map[string]*expr.Program[T, C], len(rules)),
	}
	for _, r := range rules {
		prog, err := c.CompileRef(r.Name)
		if err != nil {
			return nil, fmt.Errorf("rule %q (%s): %w", r.Name, r.Where(), err)
		}
		s.programs[r.Name] = prog
	}
	return s, nil
}

// Get returns the compiled program for name.
func (s *Set[T, C]) Get(name string) (*expr.Program[T, C], bool) {
	p, ok := s.programs[name]
	return p, ok
}

// Rule returns the definition of name.
func (s *Set[T, C]) Rule(name string) (Rule, bool) {
	for _, r := range s.rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Names returns rule names in declaration order.
func (s *Set[T, C]) Names() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

// Len returns the number of rules.
func (s *Set[T, C]) Len() int {
	return len(s.rules)
}
