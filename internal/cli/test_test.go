package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommand_MissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommand_EmptyDirJSON(t *testing.T) {
	out, err := execute(t, "test", t.TempDir(), "--format", "json")
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.NotNil(t, resp.Data.Scenarios)
}

func TestTestCommand_PassingWithGolden(t *testing.T) {
	out, err := execute(t, "test", "testdata/suite", "--filter", "move_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ move_basic\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_Failures(t *testing.T) {
	out, err := execute(t, "test", "testdata/suite")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ move_basic\n")
	assert.Contains(t, out, "✗ wrong_expectations\n")
	assert.Contains(t, out, "  checks[0]: can_move for hero at (3,3): expected true, got false\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_FailuresJSON(t *testing.T) {
	out, err := execute(t, "test", "testdata/suite", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "move_basic", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.Len(t, resp.Data.Scenarios[1].Errors, 4)
}

func TestTestCommand_InvalidFilter(t *testing.T) {
	_, err := execute(t, "test", "testdata/suite", "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestTestCommand_UpdateWritesGolden(t *testing.T) {
	suite := copySuite(t)

	out, err := execute(t, "test", suite, "--update")
	require.NoError(t, err, out)

	got, err := os.ReadFile(filepath.Join(suite, "golden", "move_basic.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/suite/golden/move_basic.golden")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	suite := copySuite(t)
	require.NoError(t, os.MkdirAll(filepath.Join(suite, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(suite, "golden", "move_basic.golden"), []byte(`{}`), 0o644))

	out, err := execute(t, "test", suite)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_BrokenScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml\n")
	assert.Contains(t, out, "failed to load scenario")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("a", "b", "golden", "move.golden"), goldenFilePath(filepath.Join("a", "b", "move.yaml")))
}
