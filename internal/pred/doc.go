// Package pred composes boolean tests over a (target, context) pair.
//
// A predicate is any value with a Test(target, context) bool method. Leaf
// predicates are supplied by callers; this package supplies the identities
// (TruePred, FalsePred) and the combinators (And, Or, Not).
//
// # Two ways to compose
//
// The combinator structs are generic over their operand types and hold
// operands by value:
//
//	p := pred.NewAnd[*Actor, *Cell](IsMovable{}, IsAlive{})
//
// The resulting type, And[*Actor, *Cell, IsMovable, IsAlive], is fully known
// at compile time. Use this form in hot loops where the expression is fixed.
//
// Chain is the fluent builder. Its operands are held as Pred interface values,
// which keeps the API usable when the expression is assembled piecewise:
//
//	canMove := pred.Start[*Actor, *Cell](IsMovable{}).
//		And(IsAlive{}).
//		AndGroup(func(g pred.Chain[*Actor, *Cell]) pred.Chain[*Actor, *Cell] {
//			return g.And(IsWalkable{}).And(IsVacant{})
//		}).
//		Build()
//
// # Semantics
//
// And evaluates its left operand first and the right operand only when the
// left is true. Or evaluates the right operand only when the left is false.
// Not evaluates its operand exactly once. Nothing here recovers panics from
// leaves; they reach the caller unchanged.
//
// Every composition returns a new value. A Chain can be reused as the base of
// several divergent chains, and a built predicate may be tested from many
// goroutines at once as long as its leaves do not mutate shared state.
package pred
