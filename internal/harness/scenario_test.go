package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linearize/internal/history"
)

// writeScenario writes content to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validScenario = `
name: two_writers
description: "Concurrent writes observed in either order"
nodes: 2
steps:
  - { node: 0, op: put, value: 1, req: 1, ack: 4 }
  - { node: 1, op: put, value: 2, req: 2, ack: 3 }
  - { node: 0, op: get, req: 5, ack: 6, value: 1 }
  - { node: 1, op: get, req: 7, ack: 8 }
  - { node: 1, op: stopped, at: 9 }
  - { node: 1, op: resumed, at: 10 }
  - { node: 0, op: fail, req: 11, ack: 12 }
expect:
  verdict: violated
  violated_at: 6
`

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, validScenario))
	require.NoError(t, err)

	assert.Equal(t, "two_writers", scenario.Name)
	assert.Equal(t, 2, scenario.Nodes)
	require.Len(t, scenario.Steps, 7)
	assert.Equal(t, VerdictViolated, scenario.Expect.Verdict)
	require.NotNil(t, scenario.Expect.ViolatedAt)
	assert.Equal(t, 6, *scenario.Expect.ViolatedAt)

	wantSpans := []history.OpSpan{
		history.Put(1, 1, 4),
		history.Put(2, 2, 3),
		history.Get(1, 5, 6),
		history.GetNil(7, 8),
		history.Stopped(9),
		history.Resumed(10),
		history.Fail(11, 12),
	}
	for i, step := range scenario.Steps {
		span, err := step.Span()
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, wantSpans[i], span, "step %d", i)
	}
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	base := func(steps, expect string) string {
		return "name: x\ndescription: \"d\"\nnodes: 2\nsteps:\n" + steps + "expect:\n" + expect
	}
	okSteps := "  - { node: 0, op: put, value: 1, req: 1, ack: 2 }\n"
	okExpect := "  verdict: linearizable\n"

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "node out of range",
			doc:     base("  - { node: 2, op: put, value: 1, req: 1, ack: 2 }\n", okExpect),
			wantErr: "node 2 out of range",
		},
		{
			name:    "put without value",
			doc:     base("  - { node: 0, op: put, req: 1, ack: 2 }\n", okExpect),
			wantErr: "put requires a value",
		},
		{
			name:    "stopped without at",
			doc:     base("  - { node: 0, op: stopped }\n", okExpect),
			wantErr: "stopped requires at",
		},
		{
			name:    "marker with window",
			doc:     base("  - { node: 0, op: resumed, at: 3, req: 1 }\n", okExpect),
			wantErr: "resumed takes only at",
		},
		{
			name:    "normal op with at",
			doc:     base("  - { node: 0, op: get, req: 1, ack: 2, at: 1 }\n", okExpect),
			wantErr: "get takes req and ack",
		},
		{
			name:    "fail with value",
			doc:     base("  - { node: 0, op: fail, value: 3, req: 1, ack: 2 }\n", okExpect),
			wantErr: "fail takes no value",
		},
		{
			name:    "empty window",
			doc:     base("  - { node: 0, op: put, value: 1, req: 2, ack: 2 }\n", okExpect),
			wantErr: "must be after",
		},
		{
			name:    "violated_at on linearizable",
			doc:     base(okSteps, "  verdict: linearizable\n  violated_at: 0\n"),
			wantErr: "violated_at requires verdict",
		},
		{
			name:    "violated_at out of range",
			doc:     base(okSteps, "  verdict: violated\n  violated_at: 1\n"),
			wantErr: "violated_at 1 out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateScenario_Direct(t *testing.T) {
	one := history.Value(1)
	s := &Scenario{
		Name:        "direct",
		Description: "built in code",
		Nodes:       1,
		Steps:       []Step{{Node: 0, Op: "put", Value: &one, Req: 1, Ack: 2}},
		Expect:      Expectation{Verdict: VerdictLinearizable},
	}
	require.NoError(t, ValidateScenario(s))

	s.Expect.Verdict = "maybe"
	assert.ErrorContains(t, ValidateScenario(s), `unknown verdict "maybe"`)

	s.Expect.Verdict = ""
	assert.ErrorContains(t, ValidateScenario(s), "verdict is required")

	s.Expect.Verdict = VerdictLinearizable
	s.Nodes = 0
	assert.ErrorContains(t, ValidateScenario(s), "nodes must be positive")

	s.Nodes = 1
	s.Steps = nil
	assert.ErrorContains(t, ValidateScenario(s), "steps list is required")

	s.Name = ""
	assert.ErrorContains(t, ValidateScenario(s), "name is required")
}

func TestStepFromEntry(t *testing.T) {
	entries := []history.Entry{
		{Node: 0, Span: history.Put(1, 1, 2)},
		{Node: 1, Span: history.Get(1, 3, 4)},
		{Node: 1, Span: history.GetNil(5, 6)},
		{Node: 0, Span: history.Fail(7, 8)},
		{Node: 0, Span: history.Stopped(9)},
		{Node: 0, Span: history.Resumed(10)},
	}
	for _, e := range entries {
		step := StepFromEntry(e)
		span, err := step.Span()
		require.NoError(t, err, e.String())
		assert.Equal(t, e.Span, span)
		assert.Equal(t, e.Node, step.Node)
	}
}

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"accepting.yaml",
		"complex.yaml",
		"empty_reads.yaml",
		"fail_wildcard.yaml",
		"rejecting.yaml",
		"stop_resume.yaml",
	}, names)
}

func TestFindScenarios_MissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
