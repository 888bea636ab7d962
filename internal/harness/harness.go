package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/tactica/internal/rules"
	"github.com/roach88/tactica/internal/store"
	"github.com/roach88/tactica/internal/tactics"
	"github.com/roach88/tactica/internal/testutil"
)

// defaultWorkers bounds the reach evaluator during scenario runs.
const defaultWorkers = 4

// epoch stamps created_at on recorded evaluations so stored rows are
// identical across runs.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness holds the per-run state of a scenario.
type Harness struct {
	store    *store.Store
	recorder *store.Recorder
	board    *tactics.Board
	set      *rules.Set[*tactics.Actor, *tactics.Cell]
	logger   *slog.Logger
	workers  int
}

// Option configures Run.
type Option func(*Harness)

// WithWorkers sets the reach worker count.
func WithWorkers(n int) Option {
	return func(h *Harness) { h.workers = n }
}

// WithLogger replaces the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each run uses a fresh in-memory store, seq numbers counting from 1 and
// sequential evaluation ids, so identical scenarios produce identical
// traces. An error is returned only when the scenario cannot be set up
// (unloadable rules, invalid board); failed expectations are reported in
// Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(h)
	}

	st, err := store.Open(":memory:", store.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	h.recorder, err = store.NewRecorder(ctx, st,
		store.WithClock(store.NewClock()),
		store.WithIDs(testutil.NewSequentialIDs("eval")),
		store.WithNow(func() time.Time { return epoch }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder: %w", err)
	}

	env, err := Prepare(scenario)
	if err != nil {
		return nil, err
	}
	h.board, h.set = env.Board, env.Rules

	result := NewResult()
	if err := h.executeChecks(ctx, scenario.Checks, result); err != nil {
		return nil, fmt.Errorf("failed to execute checks: %w", err)
	}
	if err := h.executeReach(ctx, scenario.Reach, result); err != nil {
		return nil, fmt.Errorf("failed to execute reach: %w", err)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"checks", len(scenario.Checks),
		"reach", len(scenario.Reach),
		"errors", len(result.Errors),
	)
	return result, nil
}

// Env is a scenario's board with its rules compiled against it.
type Env struct {
	Board *tactics.Board
	Rules *rules.Set[*tactics.Actor, *tactics.Cell]
}

// Prepare builds the scenario board, places copies of its actors, and
// compiles its rule files against the tactics leaves and CEL binding.
func Prepare(s *Scenario) (*Env, error) {
	board, err := tactics.NewBoard(s.Board.Width, s.Board.Height)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	for _, p := range s.Board.Blocked {
		if err := board.Block(p); err != nil {
			return nil, fmt.Errorf("board: %w", err)
		}
	}
	for i := range s.Actors {
		// Copy so that runs never mutate the scenario.
		a := s.Actors[i]
		if err := board.Place(&a); err != nil {
			return nil, fmt.Errorf("actors[%d]: %w", i, err)
		}
	}

	var all []rules.Rule
	for _, p := range s.Rules {
		rs, err := rules.LoadPath(p)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		all = append(all, rs...)
	}

	binding, err := tactics.CELBinding()
	if err != nil {
		return nil, err
	}
	set, err := rules.Compile(all, tactics.Leaves(board), binding)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	return &Env{Board: board, Rules: set}, nil
}

// executeChecks evaluates each check with Explain, records it, and compares
// the outcome with the expectation.
func (h *Harness) executeChecks(ctx context.Context, checks []Check, result *Result) error {
	for i, c := range checks {
		if c.Cell == nil || c.Expect == nil {
			result.AddError(fmt.Sprintf("checks[%d]: cell and expect are required", i))
			continue
		}
		prog, ok := h.set.Get(c.Rule)
		if !ok {
			result.AddError(fmt.Sprintf("checks[%d]: unknown rule %q", i, c.Rule))
			continue
		}
		rule, _ := h.set.Rule(c.Rule)
		actor, ok := h.board.Actor(c.Actor)
		if !ok {
			result.AddError(fmt.Sprintf("checks[%d]: unknown actor %q", i, c.Actor))
			continue
		}
		cell, ok := h.board.Cell(*c.Cell)
		if !ok {
			result.AddError(fmt.Sprintf("checks[%d]: cell %s is off the board", i, *c.Cell))
			continue
		}

		got, steps := prog.Explain(actor, cell)
		eval, err := h.recorder.Record(ctx, rule, actor.ID, cell.Pos.X, cell.Pos.Y, got, steps)
		if err != nil {
			return fmt.Errorf("check %d: %w", i, err)
		}

		result.Trace = append(result.Trace, TraceEvent{
			Seq:    eval.Seq,
			ID:     eval.ID,
			Rule:   c.Rule,
			Actor:  actor.ID,
			Cell:   cell.Pos,
			Result: got,
			Steps:  steps,
		})

		if got != *c.Expect {
			result.AddError(fmt.Sprintf("checks[%d]: %s for %s at %s: expected %t, got %t",
				i, c.Rule, c.Actor, cell.Pos, *c.Expect, got))
		}
	}
	return nil
}

// executeReach computes each reach set and compares it with the expected
// cells, ignoring order.
func (h *Harness) executeReach(ctx context.Context, reach []ReachCheck, result *Result) error {
	for i, r := range reach {
		prog, ok := h.set.Get(r.Rule)
		if !ok {
			result.AddError(fmt.Sprintf("reach[%d]: unknown rule %q", i, r.Rule))
			continue
		}
		actor, ok := h.board.Actor(r.Actor)
		if !ok {
			result.AddError(fmt.Sprintf("reach[%d]: unknown actor %q", i, r.Actor))
			continue
		}

		cells, err := tactics.Reachable(ctx, h.board, actor, prog.Pred(), h.workers)
		if err != nil {
			return fmt.Errorf("reach %d: %w", i, err)
		}
		if cells == nil {
			cells = []tactics.Vec2{}
		}
		result.Reach = append(result.Reach, ReachResult{Rule: r.Rule, Actor: r.Actor, Cells: cells})

		want := rowMajor(r.Expect)
		if !slices.Equal(want, cells) {
			missing, extra := diffCells(want, cells)
			result.AddError(fmt.Sprintf("reach[%d]: %s for %s: missing %v, unexpected %v",
				i, r.Rule, r.Actor, missing, extra))
		}
	}
	return nil
}

func rowMajor(cells []tactics.Vec2) []tactics.Vec2 {
	out := slices.Clone(cells)
	slices.SortFunc(out, func(a, b tactics.Vec2) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return slices.Compact(out)
}

func diffCells(want, got []tactics.Vec2) (missing, extra []tactics.Vec2) {
	for _, w := range want {
		if !slices.Contains(got, w) {
			missing = append(missing, w)
		}
	}
	for _, g := range got {
		if !slices.Contains(want, g) {
			extra = append(extra, g)
		}
	}
	return missing, extra
}
