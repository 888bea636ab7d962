package pred

// Labeled is a predicate carrying a human-readable name.
type Labeled[T, C any] struct {
	Name string
	P    Pred[T, C]
}

// Named attaches a label to p. Evaluation is unchanged.
func Named[T, C any](name string, p Pred[T, C]) Labeled[T, C] {
	return Labeled[T, C]{Name: name, P: p}
}

func (l Labeled[T, C]) Test(t T, c C) bool {
	return l.P.Test(t, c)
}

func (l Labeled[T, C]) String() string {
	return l.Name
}
