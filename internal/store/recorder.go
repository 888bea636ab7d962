package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/rules"
)

// Recorder appends evaluations to a Store, stamping each with the next seq
// from its Clock and a fresh id. Rules are written once per hash on first
// use. Safe for concurrent use.
type Recorder struct {
	store *Store
	clock *Clock
	ids   IDGenerator
	now   func() time.Time

	mu    sync.Mutex
	known map[string]bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock replaces the recorder's logical clock.
func WithClock(c *Clock) RecorderOption {
	return func(r *Recorder) { r.clock = c }
}

// WithIDs replaces the id generator.
func WithIDs(g IDGenerator) RecorderOption {
	return func(r *Recorder) { r.ids = g }
}

// WithNow replaces the wall clock used for created_at.
func WithNow(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a recorder on s. By default the clock resumes after the
// highest stored seq and ids are UUIDv7.
func NewRecorder(ctx context.Context, s *Store, opts ...RecorderOption) (*Recorder, error) {
	r := &Recorder{
		store: s,
		ids:   UUIDv7Generator{},
		now:   time.Now,
		known: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		seq, err := s.MaxSeq(ctx)
		if err != nil {
			return nil, err
		}
		r.clock = NewClockAt(seq)
	}
	return r, nil
}

// Record stores one evaluation of rule for actorID at (x, y) and returns it.
func (r *Recorder) Record(ctx context.Context, rule rules.Rule, actorID string, x, y int, result bool, steps []expr.Step) (Evaluation, error) {
	if err := r.ensureRule(ctx, rule); err != nil {
		return Evaluation{}, err
	}

	e := Evaluation{
		ID:        r.ids.Generate(),
		Seq:       r.clock.Next(),
		RuleHash:  rule.Hash,
		RuleName:  rule.Name,
		ActorID:   actorID,
		X:         x,
		Y:         y,
		Result:    result,
		Steps:     steps,
		CreatedAt: r.now().UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.WriteEvaluation(ctx, e); err != nil {
		return Evaluation{}, err
	}
	return e, nil
}

func (r *Recorder) ensureRule(ctx context.Context, rule rules.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known[rule.Hash] {
		return nil
	}
	if err := r.store.WriteRule(ctx, rule); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	r.known[rule.Hash] = true
	return nil
}
