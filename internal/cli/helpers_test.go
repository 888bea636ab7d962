package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// response decodes a CLIResponse with a typed payload.
type response[T any] struct {
	Status string
	Data   T
	Error  *CLIError
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode[T any](t *testing.T, out string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// copySuite lays out rules/ and suite/ under a temp dir the way testdata
// does, without golden files, and returns the suite dir.
func copySuite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{"rules/move.yaml", "rules/attack.cue", "suite/move_basic.yaml"} {
		data, err := os.ReadFile(filepath.Join("testdata", f))
		require.NoError(t, err)
		dst := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
		require.NoError(t, os.WriteFile(dst, data, 0o644))
	}
	return filepath.Join(root, "suite")
}
