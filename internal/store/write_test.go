package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tactica/internal/expr"
)

func TestWriteRule_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRule(t, "can_move", expr.All(expr.Leaf("movable"), expr.Leaf("alive")))
	require.NoError(t, s.WriteRule(ctx, r))
	require.NoError(t, s.WriteRule(ctx, r))

	renamed := r
	renamed.Name = "same_expression"
	require.NoError(t, s.WriteRule(ctx, renamed))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM rules").Scan(&count))
	assert.Equal(t, 1, count)

	got, err := s.ReadRule(ctx, r.Hash)
	require.NoError(t, err)
	assert.Equal(t, "can_move", got.Name, "first name wins")
	assert.Equal(t, `{"all":[{"leaf":"movable"},{"leaf":"alive"}]}`, got.Body)
}

func TestWriteRule_RequiresHash(t *testing.T) {
	s := createTestStore(t)
	r := createTestRule(t, "x", expr.Leaf("alive"))
	r.Hash = ""
	assert.Error(t, s.WriteRule(context.Background(), r))
}

func TestWriteEvaluation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRule(t, "alive", expr.Leaf("alive"))
	require.NoError(t, s.WriteRule(ctx, r))

	e := createTestEvaluation("eval-1", 1, r, "hero", true)
	e.Steps = []expr.Step{{Path: "alive", Label: "leaf:alive", Result: true}}
	require.NoError(t, s.WriteEvaluation(ctx, e))

	got, err := s.ReadEvaluation(ctx, "eval-1")
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestWriteEvaluation_DuplicateIDIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRule(t, "alive", expr.Leaf("alive"))
	require.NoError(t, s.WriteRule(ctx, r))

	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation("eval-1", 1, r, "hero", true)))
	again := createTestEvaluation("eval-1", 1, r, "hero", false)
	require.NoError(t, s.WriteEvaluation(ctx, again))

	got, err := s.ReadEvaluation(ctx, "eval-1")
	require.NoError(t, err)
	assert.True(t, got.Result, "first write wins")
}

func TestWriteEvaluation_Constraints(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := createTestRule(t, "alive", expr.Leaf("alive"))

	err := s.WriteEvaluation(ctx, createTestEvaluation("eval-1", 1, r, "hero", true))
	assert.Error(t, err, "rule must be stored first")

	require.NoError(t, s.WriteRule(ctx, r))
	require.NoError(t, s.WriteEvaluation(ctx, createTestEvaluation("eval-1", 1, r, "hero", true)))

	err = s.WriteEvaluation(ctx, createTestEvaluation("eval-2", 1, r, "hero", true))
	assert.Error(t, err, "seq is unique")
}
