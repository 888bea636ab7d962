package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/tactica/internal/expr"
	"github.com/roach88/tactica/internal/rules"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRule builds a hashed rule from an expression.
func createTestRule(t *testing.T, name string, when expr.Node) rules.Rule {
	t.Helper()
	r, err := rules.New(name, "", when)
	if err != nil {
		t.Fatalf("rules.New(%q) failed: %v", name, err)
	}
	return r
}

// createTestEvaluation creates an evaluation with minimal required fields.
func createTestEvaluation(id string, seq int64, r rules.Rule, actor string, result bool) Evaluation {
	return Evaluation{
		ID:        id,
		Seq:       seq,
		RuleHash:  r.Hash,
		RuleName:  r.Name,
		ActorID:   actor,
		X:         int(seq),
		Y:         0,
		Result:    result,
		CreatedAt: "2026-01-01T00:00:00Z",
	}
}
