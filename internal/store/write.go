package store

import (
	"context"
	"fmt"

	"github.com/roach88/linearize/internal/history"
)

// History describes one recorded run.
type History struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NumNodes    int    `json:"num_nodes"`
	ContentHash string `json:"content_hash,omitempty"`
}

// CreateHistory inserts a new, unsealed history record.
func (s *Store) CreateHistory(ctx context.Context, h History) error {
	if h.ID == "" {
		return fmt.Errorf("create history: id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO histories (id, name, num_nodes)
		VALUES (?, ?, ?)
	`, h.ID, h.Name, h.NumNodes)
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return nil
}

// AppendSpan stores the span fed at position seq.
// Writing the same (history, seq) twice is an error: the log is append-only.
func (s *Store) AppendSpan(ctx context.Context, historyID string, seq int64, e history.Entry) error {
	row, err := encodeSpan(e.Span)
	if err != nil {
		return fmt.Errorf("append span: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO spans (history_id, seq, node, kind, value, found, ts_req, ts_ack)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, historyID, seq, e.Node, row.kind, row.value, row.found, row.req, row.ack)
	if err != nil {
		return fmt.Errorf("append span: %w", err)
	}
	return nil
}

// AppendVerdict stores the checker's answer after the span at seq.
func (s *Store) AppendVerdict(ctx context.Context, historyID string, seq int64, v Verdict) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verdicts (history_id, seq, ok, live)
		VALUES (?, ?, ?, ?)
	`, historyID, seq, v.OK, v.Live)
	if err != nil {
		return fmt.Errorf("append verdict: %w", err)
	}
	return nil
}

// RecordFeed stores a span and the verdict it produced atomically.
func (s *Store) RecordFeed(ctx context.Context, historyID string, seq int64, e history.Entry, v Verdict) error {
	row, err := encodeSpan(e.Span)
	if err != nil {
		return fmt.Errorf("record feed: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record feed: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO spans (history_id, seq, node, kind, value, found, ts_req, ts_ack)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, historyID, seq, e.Node, row.kind, row.value, row.found, row.req, row.ack); err != nil {
		return fmt.Errorf("record feed: span: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verdicts (history_id, seq, ok, live)
		VALUES (?, ?, ?, ?)
	`, historyID, seq, v.OK, v.Live); err != nil {
		return fmt.Errorf("record feed: verdict: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record feed: commit: %w", err)
	}
	return nil
}

// Seal computes and stores the content hash of a history's spans.
// Sealing again after more spans were appended updates the hash.
func (s *Store) Seal(ctx context.Context, historyID string) (string, error) {
	h, err := s.ReadHistory(ctx, historyID)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	entries, err := s.ReadSpans(ctx, historyID)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	hash, err := history.ContentHash(h.NumNodes, entries)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE histories SET content_hash = ? WHERE id = ?
	`, hash, historyID); err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	return hash, nil
}
