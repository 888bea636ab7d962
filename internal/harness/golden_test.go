package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_MoveBasic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/move_basic.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_Marshal(t *testing.T) {
	snapshot := TraceSnapshot{ScenarioName: "empty"}
	data, err := snapshot.Marshal()
	require.NoError(t, err)
	require.Equal(t, `{"reach":[],"scenario_name":"empty","trace":[]}`, string(data))
}
