package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_TextOutput(t *testing.T) {
	out, _, err := execute(t, "check", scenarioPath("accepting"), scenarioPath("rejecting"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ accepting: linearizable (10 steps)")
	assert.Contains(t, out, "✓ rejecting: violated at step 6 (7 steps)")
	assert.Contains(t, out, "Check Summary: 2 passed, 0 failed, 2 total")
}

func TestCheck_JSONOutput(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "check", scenarioPath("complex"))
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Results, 1)

	r := resp.Data.Results[0]
	assert.Equal(t, "complex", r.Name)
	assert.True(t, r.Pass)
	assert.Equal(t, "violated", r.Verdict)
	require.NotNil(t, r.ViolatedAt)
	assert.Equal(t, 14, *r.ViolatedAt)
	assert.Empty(t, r.Live)
}

func TestCheck_Verbose(t *testing.T) {
	out, _, err := execute(t, "-v", "check", scenarioPath("accepting"))
	require.NoError(t, err)
	assert.Contains(t, out, "  Possibilities {")
	assert.Contains(t, out, "9|[1,1,1]~1-Put(7)~2-Get(7)~0-Put(8)~1-Get(8)~0-Get(8)~1-Put(9)~2-Get(9)")
}

func TestCheck_Parallel(t *testing.T) {
	out, _, err := execute(t, "check", "--workers", "4", scenarioPath("complex"), scenarioPath("stop_resume"))
	require.NoError(t, err)
	assert.Contains(t, out, "Check Summary: 2 passed, 0 failed, 2 total")
}

func TestCheck_Metrics(t *testing.T) {
	out, _, err := execute(t, "check", "--metrics", scenarioPath("accepting"))
	require.NoError(t, err)

	assert.Contains(t, out, "Metrics:")
	assert.Contains(t, out, "  linearize_checker_feeds_total 10\n")
	assert.Contains(t, out, "  linearize_checker_violations_total 0\n")
	assert.Contains(t, out, "  linearize_checker_live_possibilities 1\n")
	assert.Contains(t, out, "  linearize_checker_saturation_rounds_count 10\n")
}

func TestCheck_ExpectationMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong.yaml")
	content := `name: wrong
description: "Stale read expected to pass"
nodes: 2
steps:
  - { node: 0, op: put, value: 1, req: 1, ack: 2 }
  - { node: 0, op: put, value: 2, req: 3, ack: 4 }
  - { node: 1, op: get, value: 1, req: 5, ack: 6 }
  - { node: 0, op: stopped, at: 7 }
expect:
  verdict: linearizable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := execute(t, "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong: violated at step 3, expected linearizable")
	assert.Contains(t, out, "Expectation failed: verdict")
	assert.Contains(t, out, "Check Summary: 0 passed, 1 failed, 1 total")
}

func TestCheck_LoadError(t *testing.T) {
	_, _, err := execute(t, "check", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load")
}

func TestCheck_ContractError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backwards.yaml")
	content := `name: backwards
description: "Node 0 goes back in time"
nodes: 1
steps:
  - { node: 0, op: put, value: 1, req: 10, ack: 20 }
  - { node: 0, op: put, value: 2, req: 15, ack: 25 }
expect:
  verdict: linearizable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, _, err := execute(t, "--format", "json", "check", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCheck, resp.Error.Code)
}
