package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tactica/internal/tactics"
)

// writeScenario writes body to a scenario file next to an empty rules dir.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "rules"), 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/move_basic.yaml")
	require.NoError(t, err)

	assert.Equal(t, "move_basic", s.Name)
	assert.Equal(t, []string{filepath.Join("testdata", "rules")}, s.Rules)
	assert.Equal(t, 8, s.Board.Width)
	assert.Equal(t, []tactics.Vec2{{X: 1, Y: 1}}, s.Board.Blocked)

	require.Len(t, s.Actors, 3)
	assert.Equal(t, tactics.Actor{ID: "hero", Team: "red", Pos: tactics.Vec2{}, MaxMove: 5, HP: 100, Damage: 10, AttackRange: 1}, s.Actors[0])

	require.Len(t, s.Checks, 5)
	assert.Equal(t, tactics.Vec2{X: 3, Y: 2}, *s.Checks[0].Cell)
	assert.True(t, *s.Checks[0].Expect)
	assert.False(t, *s.Checks[1].Expect)

	require.Len(t, s.Reach, 1)
	assert.Len(t, s.Reach[0].Expect, 5)

	require.Len(t, s.Assertions, 5)
	assert.Equal(t, AssertTraceCount, s.Assertions[0].Type)
	require.NotNil(t, s.Assertions[0].Result)
	assert.False(t, *s.Assertions[0].Result)
	assert.Equal(t, []string{"can_move", "short_step"}, s.Assertions[2].Rules)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "misspelled field"
rules: [rules]
board: { width: 2, height: 2 }
actors: [{ id: a, pos: [0, 0] }]
checks: [{ rule: r, actor: a, cell: [0, 0], expect: true }]
asertions: []
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asertions")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Validation(t *testing.T) {
	const header = "name: v\ndescription: d\nrules: [rules]\nboard: { width: 3, height: 3 }\nactors: [{ id: a, pos: [0, 0] }]\n"

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", "description: d\n", "name is required"},
		{"missing description", "name: v\n", "description is required"},
		{"missing rules", "name: v\ndescription: d\n", "rules list is required"},
		{"rules path not found", "name: v\ndescription: d\nrules: [gone]\n", "rules path not found"},
		{"empty board", "name: v\ndescription: d\nrules: [rules]\nboard: { width: 0, height: 3 }\n", "width and height must be positive"},
		{"no actors", "name: v\ndescription: d\nrules: [rules]\nboard: { width: 3, height: 3 }\n", "actors list is required"},
		{"actor without id", "name: v\ndescription: d\nrules: [rules]\nboard: { width: 3, height: 3 }\nactors: [{ pos: [0, 0] }]\n", "actors[0]: id is required"},
		{"nothing to check", header, "at least one check or reach entry"},
		{"check without rule", header + "checks: [{ actor: a, cell: [0, 0], expect: true }]\n", "checks[0]: rule is required"},
		{"check unknown actor", header + "checks: [{ rule: r, actor: b, cell: [0, 0], expect: true }]\n", `checks[0]: unknown actor "b"`},
		{"check without cell", header + "checks: [{ rule: r, actor: a, expect: true }]\n", "checks[0]: cell is required"},
		{"check without expect", header + "checks: [{ rule: r, actor: a, cell: [0, 0] }]\n", "checks[0]: expect is required"},
		{"reach unknown actor", header + "reach: [{ rule: r, actor: z }]\n", `reach[0]: unknown actor "z"`},
		{"assertion without type", header + "reach: [{ rule: r, actor: a }]\nassertions: [{ count: 1 }]\n", "assertions[0]: type is required"},
		{"unknown assertion", header + "reach: [{ rule: r, actor: a }]\nassertions: [{ type: final_state }]\n", `unknown assertion type "final_state"`},
		{"negative count", header + "reach: [{ rule: r, actor: a }]\nassertions: [{ type: stored_count, count: -1 }]\n", "count must be non-negative"},
		{"order without rules", header + "reach: [{ rule: r, actor: a }]\nassertions: [{ type: trace_order }]\n", "rules list is required for trace_order"},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy (go1.22 loopvar semantics)
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_BadCell(t *testing.T) {
	path := writeScenario(t, "name: v\ndescription: d\nrules: [rules]\nboard: { width: 3, height: 3 }\nactors: [{ id: a, pos: [0] }]\n")
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}
