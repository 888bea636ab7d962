// Package testutil holds deterministic helpers shared by package tests.
package testutil

import (
	"sync/atomic"

	"github.com/roach88/tactica/internal/pred"
)

// Probe is a predicate that counts how often it is evaluated.
//
// Tests use probes to observe short-circuiting: a probe on the right-hand
// side of a failed And must report zero calls.
//
// Thread-safety: Test and Calls are safe for concurrent use.
type Probe[T, C any] struct {
	inner pred.Pred[T, C]
	calls atomic.Int64
}

// Constant returns a probe that always yields result.
func Constant[T, C any](result bool) *Probe[T, C] {
	if result {
		return &Probe[T, C]{inner: pred.TruePred[T, C]{}}
	}
	return &Probe[T, C]{inner: pred.FalsePred[T, C]{}}
}

// Wrap returns a probe that delegates to p.
func Wrap[T, C any](p pred.Pred[T, C]) *Probe[T, C] {
	return &Probe[T, C]{inner: p}
}

// Test records the call and delegates.
func (p *Probe[T, C]) Test(t T, c C) bool {
	p.calls.Add(1)
	return p.inner.Test(t, c)
}

// Calls returns the number of evaluations so far.
func (p *Probe[T, C]) Calls() int64 {
	return p.calls.Load()
}

// Reset zeroes the call counter.
func (p *Probe[T, C]) Reset() {
	p.calls.Store(0)
}
