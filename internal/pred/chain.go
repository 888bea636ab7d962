package pred

// Chain is an immutable builder around a single predicate.
//
// Each method returns a new Chain; the receiver is never modified, so one
// chain can seed any number of derived chains. The zero Chain behaves like
// AlwaysTrue.
type Chain[T, C any] struct {
	p Pred[T, C]
}

// Start seeds a chain with a leaf predicate.
func Start[T, C any](leaf Pred[T, C]) Chain[T, C] {
	return Chain[T, C]{p: leaf}
}

// AlwaysTrue returns a chain that always passes. It is the neutral seed for
// And-groups.
func AlwaysTrue[T, C any]() Chain[T, C] {
	return Chain[T, C]{p: TruePred[T, C]{}}
}

// AlwaysFalse returns a chain that never passes. It is the neutral seed for
// Or-groups.
func AlwaysFalse[T, C any]() Chain[T, C] {
	return Chain[T, C]{p: FalsePred[T, C]{}}
}

// And returns a chain testing c AND next.
func (c Chain[T, C]) And(next Pred[T, C]) Chain[T, C] {
	return Chain[T, C]{p: NewAnd[T, C](c.pred(), next)}
}

// Or returns a chain testing c OR next.
func (c Chain[T, C]) Or(next Pred[T, C]) Chain[T, C] {
	return Chain[T, C]{p: NewOr[T, C](c.pred(), next)}
}

// Not returns a chain testing NOT c.
func (c Chain[T, C]) Not() Chain[T, C] {
	return Chain[T, C]{p: NewNot[T, C](c.pred())}
}

// AndGroup builds a sub-chain starting from AlwaysTrue and returns
// c AND (sub-chain). It expresses a && (b || c) without threading seeds by hand.
func (c Chain[T, C]) AndGroup(build func(Chain[T, C]) Chain[T, C]) Chain[T, C] {
	return c.And(build(AlwaysTrue[T, C]()).Build())
}

// OrGroup builds a sub-chain starting from AlwaysFalse and returns
// c OR (sub-chain).
func (c Chain[T, C]) OrGroup(build func(Chain[T, C]) Chain[T, C]) Chain[T, C] {
	return c.Or(build(AlwaysFalse[T, C]()).Build())
}

// Build returns the composed predicate. The chain stays usable afterwards.
func (c Chain[T, C]) Build() Pred[T, C] {
	return c.pred()
}

// Test evaluates the chain directly, so chains can nest inside other chains.
func (c Chain[T, C]) Test(t T, ctx C) bool {
	return c.pred().Test(t, ctx)
}

func (c Chain[T, C]) String() string {
	return Describe(c.pred())
}

func (c Chain[T, C]) pred() Pred[T, C] {
	if c.p == nil {
		return TruePred[T, C]{}
	}
	return c.p
}
