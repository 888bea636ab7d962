package expr

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/roach88/tactica/internal/pred"
)

// CELBinding lets cel nodes evaluate against (T, C) pairs.
//
// Activation converts the pair into the variables declared on Env. It must
// not retain or mutate its arguments.
type CELBinding[T, C any] struct {
	Env        *cel.Env
	Activation func(t T, c C) map[string]any
}

// compile checks src and returns a predicate running the compiled program.
func (b *CELBinding[T, C]) compile(src string) (pred.Pred[T, C], error) {
	ast, iss := b.Env.Compile(src)
	if iss.Err() != nil {
		return nil, iss.Err()
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must be boolean, got %s", out)
	}
	prg, err := b.Env.Program(ast)
	if err != nil {
		return nil, err
	}
	return celPred[T, C]{src: src, prg: prg, activation: b.Activation}, nil
}

// celPred evaluates a compiled CEL program. cel.Program is safe for
// concurrent use.
type celPred[T, C any] struct {
	src        string
	prg        cel.Program
	activation func(T, C) map[string]any
}

// Test reports false when evaluation errors or yields a non-bool; a
// predicate has no third outcome.
func (p celPred[T, C]) Test(t T, c C) bool {
	out, _, err := p.prg.Eval(p.activation(t, c))
	if err != nil {
		return false
	}
	v, ok := out.Value().(bool)
	return ok && v
}

func (p celPred[T, C]) String() string {
	return "cel(" + p.src + ")"
}
