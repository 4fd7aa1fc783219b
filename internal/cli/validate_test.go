package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, _, err := execute(t, "validate", scenarioPath("accepting"), scenarioPath("stop_resume"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+scenarioPath("accepting"))
	assert.Contains(t, out, "✓ "+scenarioPath("stop_resume"))
}

func TestValidate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `name: bad
description: "Unknown op"
nodes: 2
steps:
  - { node: 0, op: delete, req: 1, ack: 2 }
expect:
  verdict: linearizable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := execute(t, "--format", "json", "validate", scenarioPath("accepting"), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
	require.Len(t, resp.Data.Files, 2)
	assert.True(t, resp.Data.Files[0].Valid)
	assert.False(t, resp.Data.Files[1].Valid)
	assert.NotEmpty(t, resp.Data.Files[1].Problems)
}

func TestValidate_SemanticProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "range.yaml")
	content := `name: range
description: "Node out of range"
nodes: 1
steps:
  - { node: 3, op: put, value: 1, req: 1, ack: 2 }
expect:
  verdict: linearizable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "✗ "+path)
	assert.Contains(t, out, "node 3 out of range")
}
