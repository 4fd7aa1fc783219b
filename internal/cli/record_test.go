package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/store"
)

func TestRecord_ThenReplay(t *testing.T) {
	db := filepath.Join(t.TempDir(), "histories.db")

	out, _, err := execute(t, "--format", "json", "record", "--db", db, scenarioPath("rejecting"))
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   RecordResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	rec := resp.Data
	assert.Equal(t, "rejecting", rec.Name)
	assert.Equal(t, 7, rec.Spans)
	assert.Equal(t, "violated", rec.Verdict)
	require.NotNil(t, rec.ViolatedAt)
	assert.Equal(t, 6, *rec.ViolatedAt)
	assert.Len(t, rec.ContentHash, 64)

	out, _, err = execute(t, "record", "--db", db, "--name", "second", scenarioPath("accepting"))
	require.NoError(t, err)
	assert.Contains(t, out, "(second)")
	assert.Contains(t, out, "  Spans:   10\n")
	assert.Contains(t, out, "  Verdict: linearizable\n")

	out, _, err = execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Replayed 2 histories")
	assert.Contains(t, out, "(rejecting): 7 spans, violated at span 6")
	assert.Contains(t, out, "(second): 10 spans, linearizable")
	assert.Contains(t, out, "✓ All histories consistent")

	out, _, err = execute(t, "--format", "json", "replay", "--db", db, "--history", rec.HistoryID, "--workers", "3")
	require.NoError(t, err)
	var replayResp struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &replayResp))
	require.Len(t, replayResp.Data.Histories, 1)
	h := replayResp.Data.Histories[0]
	assert.Equal(t, rec.HistoryID, h.HistoryID)
	assert.True(t, h.HashMatch)
	assert.True(t, h.Consistent)
}

func TestRecord_LoadError(t *testing.T) {
	db := filepath.Join(t.TempDir(), "histories.db")
	_, _, err := execute(t, "record", "--db", db, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	out, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No histories found in database.")
}

func TestReplay_UnknownHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "histories.db")
	out, _, err := execute(t, "--format", "json", "replay", "--db", db, "--history", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestReplay_Diverged(t *testing.T) {
	ctx := context.Background()
	db := filepath.Join(t.TempDir(), "histories.db")

	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.CreateHistory(ctx, store.History{ID: "tampered", Name: "tampered", NumNodes: 1}))
	// A lone put is always linearizable; the stored verdict claims otherwise.
	require.NoError(t, st.RecordFeed(ctx, "tampered", 0,
		history.Entry{Node: 0, Span: history.Put(1, 1, 2)},
		store.Verdict{Seq: 0, OK: false, Live: 0},
	))
	require.NoError(t, st.Close())

	out, _, err := execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ tampered (tampered): 1 spans, linearizable")
	assert.Contains(t, out, "  Verdict mismatch at spans [0]")
	assert.Contains(t, out, "✗ Some histories diverged")
}
