package pred

import "fmt"

// Pred is a boolean test over a target and a read-only context.
type Pred[T, C any] interface {
	Test(t T, c C) bool
}

// Func adapts an ordinary function to Pred.
type Func[T, C any] func(t T, c C) bool

// Test calls f(t, c).
func (f Func[T, C]) Test(t T, c C) bool {
	return f(t, c)
}

// TruePred always passes. It is the identity for And.
type TruePred[T, C any] struct{}

func (TruePred[T, C]) Test(T, C) bool { return true }

func (TruePred[T, C]) String() string { return "true" }

// FalsePred never passes. It is the identity for Or.
type FalsePred[T, C any] struct{}

func (FalsePred[T, C]) Test(T, C) bool { return false }

func (FalsePred[T, C]) String() string { return "false" }

// Not negates its operand.
type Not[T, C any, A Pred[T, C]] struct {
	a A
}

// NewNot returns the negation of a.
func NewNot[T, C any, A Pred[T, C]](a A) Not[T, C, A] {
	return Not[T, C, A]{a: a}
}

func (p Not[T, C, A]) Test(t T, c C) bool {
	return !p.a.Test(t, c)
}

// Operand returns the wrapped predicate.
func (p Not[T, C, A]) Operand() A { return p.a }

func (p Not[T, C, A]) String() string {
	return "NOT " + Describe(p.a)
}

// And passes when both operands pass. b is not evaluated when a fails.
type And[T, C any, A Pred[T, C], B Pred[T, C]] struct {
	a A
	b B
}

// NewAnd returns a AND b.
func NewAnd[T, C any, A Pred[T, C], B Pred[T, C]](a A, b B) And[T, C, A, B] {
	return And[T, C, A, B]{a: a, b: b}
}

func (p And[T, C, A, B]) Test(t T, c C) bool {
	return p.a.Test(t, c) && p.b.Test(t, c)
}

// Operands returns the left and right predicates.
func (p And[T, C, A, B]) Operands() (A, B) { return p.a, p.b }

func (p And[T, C, A, B]) String() string {
	return "(" + Describe(p.a) + " AND " + Describe(p.b) + ")"
}

// Or passes when either operand passes. b is not evaluated when a passes.
type Or[T, C any, A Pred[T, C], B Pred[T, C]] struct {
	a A
	b B
}

// NewOr returns a OR b.
func NewOr[T, C any, A Pred[T, C], B Pred[T, C]](a A, b B) Or[T, C, A, B] {
	return Or[T, C, A, B]{a: a, b: b}
}

func (p Or[T, C, A, B]) Test(t T, c C) bool {
	return p.a.Test(t, c) || p.b.Test(t, c)
}

// Operands returns the left and right predicates.
func (p Or[T, C, A, B]) Operands() (A, B) { return p.a, p.b }

func (p Or[T, C, A, B]) String() string {
	return "(" + Describe(p.a) + " OR " + Describe(p.b) + ")"
}

// All folds ps with And, seeded with the true identity.
// All() with no arguments always passes.
func All[T, C any](ps ...Pred[T, C]) Pred[T, C] {
	ch := AlwaysTrue[T, C]()
	for _, p := range ps {
		ch = ch.And(p)
	}
	return ch.Build()
}

// Any folds ps with Or, seeded with the false identity.
// Any() with no arguments never passes.
func Any[T, C any](ps ...Pred[T, C]) Pred[T, C] {
	ch := AlwaysFalse[T, C]()
	for _, p := range ps {
		ch = ch.Or(p)
	}
	return ch.Build()
}

// Describe renders a predicate for logs and error messages.
// Values implementing fmt.Stringer describe themselves; anything else is
// rendered by its type name.
func Describe(p any) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
