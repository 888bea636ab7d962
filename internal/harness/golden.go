package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tactica/internal/canonical"
	"github.com/roach88/tactica/internal/tactics"
)

// TraceSnapshot captures the trace and reach sets of a scenario run.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Reach        []ReachResult
}

func cellValue(p tactics.Vec2) []any {
	return []any{p.X, p.Y}
}

// toCanonicalMap converts a TraceSnapshot to the map form canonical.Marshal
// accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		steps := make([]any, len(event.Steps))
		for j, st := range event.Steps {
			steps[j] = map[string]any{
				"path":   st.Path,
				"label":  st.Label,
				"result": st.Result,
			}
		}
		trace[i] = map[string]any{
			"seq":    event.Seq,
			"id":     event.ID,
			"rule":   event.Rule,
			"actor":  event.Actor,
			"cell":   cellValue(event.Cell),
			"result": event.Result,
			"steps":  steps,
		}
	}

	reach := make([]any, len(s.Reach))
	for i, r := range s.Reach {
		cells := make([]any, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = cellValue(c)
		}
		reach[i] = map[string]any{
			"rule":  r.Rule,
			"actor": r.Actor,
			"cells": cells,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"reach":         reach,
	}
}

// Marshal returns the canonical JSON form of the snapshot.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return canonical.Marshal(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	// Equivalent of t.Context() (Go 1.24+), unavailable on the go1.21 toolchain.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := Run(ctx, scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Reach:        result.Reach,
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
