package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertGolden_TestdataScenarios(t *testing.T) {
	for _, name := range []string{
		"accepting",
		"rejecting",
		"fail_wildcard",
		"stop_resume",
		"complex",
		"empty_reads",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(context.Background(), loadTestScenario(t, name))
			require.NoError(t, err)
			require.NoError(t, AssertGolden(t, name, result))
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "complex")

	var outputs [][]byte
	for i := 0; i < 3; i++ {
		result, err := Run(context.Background(), scenario)
		require.NoError(t, err)
		data, err := NewSnapshot(result).MarshalCanonical()
		require.NoError(t, err)
		outputs = append(outputs, data)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestSnapshot_Shape(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "rejecting"))
	require.NoError(t, err)

	data, err := NewSnapshot(result).MarshalCanonical()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"violated_at":6`)
	assert.Contains(t, s, `"verdict":"violated"`)
	assert.Contains(t, s, `{"ack":105,"node":0,"op":"put","req":100,"value":8}`)
	assert.True(t, s[0] == '{' && s[len(s)-1] == '}')
}

func TestSnapshot_OmitsViolatedAtWhenLinearizable(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "accepting"))
	require.NoError(t, err)

	data, err := NewSnapshot(result).MarshalCanonical()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "violated_at")
}
