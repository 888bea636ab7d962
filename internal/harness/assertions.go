package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/tactica/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s -> %t\n", event.Seq, event.Rule, event.Actor, event.Cell, event.Result)
		}
	}

	return buf.String()
}

// matches reports whether an event satisfies the assertion's rule, actor
// and result filters. Empty filters match everything.
func (a Assertion) matches(event TraceEvent) bool {
	if a.Rule != "" && event.Rule != a.Rule {
		return false
	}
	if a.Actor != "" && event.Actor != a.Actor {
		return false
	}
	if a.Result != nil && event.Result != *a.Result {
		return false
	}
	return true
}

func (a Assertion) describe() string {
	var parts []string
	if a.Rule != "" {
		parts = append(parts, "rule="+a.Rule)
	}
	if a.Actor != "" {
		parts = append(parts, "actor="+a.Actor)
	}
	if a.Result != nil {
		parts = append(parts, fmt.Sprintf("result=%t", *a.Result))
	}
	if len(parts) == 0 {
		return "any evaluation"
	}
	return strings.Join(parts, " ")
}

// assertTraceOrder checks that rules were first evaluated in the given order.
// Rules don't need to be consecutive (intervening evaluations are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// Step 1: Find first position of each expected rule
	positions := make(map[string]int)
	for i, event := range trace {
		for _, rule := range assertion.Rules {
			if event.Rule == rule && positions[rule] == 0 {
				positions[rule] = i + 1 // 1-indexed for readability
			}
		}
	}

	// Step 2: Verify all rules found
	for _, rule := range assertion.Rules {
		if positions[rule] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all rules present: %v", assertion.Rules),
				Actual:   fmt.Sprintf("missing rule: %s", rule),
				Trace:    trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Rules); i++ {
		prev := assertion.Rules[i-1]
		curr := assertion.Rules[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("rules in order: %v", assertion.Rules),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that exactly Count trace events match.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if assertion.matches(event) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.describe()),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertStoredCount checks the persisted evaluation log rather than the
// in-memory trace.
func assertStoredCount(ctx context.Context, st *store.Store, assertion Assertion) error {
	evals, err := st.ReadEvaluations(ctx, store.Filter{Rule: assertion.Rule, Actor: assertion.Actor})
	if err != nil {
		return &AssertionError{
			Type:     AssertStoredCount,
			Expected: "readable evaluation log",
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	count := 0
	for _, e := range evals {
		if assertion.Result == nil || e.Result == *assertion.Result {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertStoredCount,
			Expected: fmt.Sprintf("%d stored evaluations of %s", assertion.Count, assertion.describe()),
			Actual:   fmt.Sprintf("%d stored", count),
		}
	}
	return nil
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for stored_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertStoredCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored_count requires database context", i)
			} else {
				err = assertStoredCount(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
