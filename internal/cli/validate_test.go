package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", "testdata/rules")
	require.NoError(t, err)
	assert.Equal(t, "✓ 4 rule(s) valid\n", out)
}

func TestValidate_ValidVerbose(t *testing.T) {
	out, err := execute(t, "validate", "testdata/rules/move.yaml", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 rule(s) valid\n")
	assert.Contains(t, out, "  free_cell [")
	assert.Contains(t, out, "leaf:walkable")
}

func TestValidate_ValidJSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/rules", "--format", "json")
	require.NoError(t, err)

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Rules, 4)

	names := make([]string, len(resp.Data.Rules))
	for i, r := range resp.Data.Rules {
		names[i] = r.Name
		assert.Len(t, r.Hash, 64)
	}
	assert.Equal(t, []string{"can_attack", "short_step", "free_cell", "can_move"}, names)
	assert.Contains(t, resp.Data.Rules[3].Expr, "leaf:movable")
}

func TestValidate_NotFound(t *testing.T) {
	out, err := execute(t, "validate", "testdata/nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidate_NoRuleFiles(t *testing.T) {
	out, err := execute(t, "validate", t.TempDir(), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode[any](t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E003", resp.Error.Code)
}

func TestValidate_UnknownLeaf(t *testing.T) {
	out, err := execute(t, "validate", "testdata/badrules", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[ValidationResult](t, out)
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)

	got := resp.Data.Errors[0]
	assert.Equal(t, "UNKNOWN_LEAF", got.Code)
	assert.Equal(t, "can_fly.all[1]", got.Field)
	assert.Equal(t, "can_fly", got.Rule)
	assert.Equal(t, 2, got.Line)
}

func TestValidate_StructuralErrors(t *testing.T) {
	dir := t.TempDir()
	body := `rules:
  - name: loop
    when: { ref: loop }
  - name: ""
    when: { leaf: alive }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(body), 0o644))

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 2 error(s)")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E201: rules[1].name: rule name is required")
	assert.Contains(t, out, "E205: when: reference cycle: loop -> loop")
}

func TestValidate_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "typo.yaml"), []byte("rules:\n  - name: x\n    wen: { leaf: alive }\n"), 0o644))

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E004: load:")
}

func TestValidate_MissingArgs(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
