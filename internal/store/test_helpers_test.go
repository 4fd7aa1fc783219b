package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/linearize/internal/history"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestHistory inserts a history and returns its record.
func createTestHistory(t *testing.T, s *Store, id string, numNodes int) History {
	t.Helper()
	h := History{ID: id, Name: "test-" + id, NumNodes: numNodes}
	if err := s.CreateHistory(context.Background(), h); err != nil {
		t.Fatalf("CreateHistory() failed: %v", err)
	}
	return h
}

// sampleEntries covers every operation kind.
func sampleEntries() []history.Entry {
	return []history.Entry{
		{Node: 0, Span: history.Put(7, 100, 105)},
		{Node: 1, Span: history.Get(7, 106, 110)},
		{Node: 1, Span: history.GetNil(111, 112)},
		{Node: 0, Span: history.Fail(113, 120)},
		{Node: 1, Span: history.Stopped(121)},
		{Node: 1, Span: history.Resumed(122)},
		{Node: 0, Span: history.Put(^uint64(0), 130, 131)},
	}
}
