package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linearize/internal/history"
)

// Verdict is the checker's answer after one fed span.
type Verdict struct {
	Seq  int64 `json:"seq"`
	OK   bool  `json:"ok"`
	Live int   `json:"live"`
}

// ReadHistory returns the history record with the given ID.
// Returns ErrNotFound if it does not exist.
func (s *Store) ReadHistory(ctx context.Context, id string) (History, error) {
	var h History
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, num_nodes, content_hash
		FROM histories
		WHERE id = ?
	`, id).Scan(&h.ID, &h.Name, &h.NumNodes, &h.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return History{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return History{}, fmt.Errorf("read history: %w", err)
	}
	return h, nil
}

// ListHistories returns every history ordered by name, then ID.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListHistories(ctx context.Context) ([]History, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, num_nodes, content_hash
		FROM histories
		ORDER BY name ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query histories: %w", err)
	}
	defer rows.Close()

	out := []History{}
	for rows.Next() {
		var h History
		if err := rows.Scan(&h.ID, &h.Name, &h.NumNodes, &h.ContentHash); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate histories: %w", err)
	}
	return out, nil
}

// ReadSpans returns a history's spans in feed order.
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) ReadSpans(ctx context.Context, historyID string) ([]history.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT node, kind, value, found, ts_req, ts_ack
		FROM spans
		WHERE history_id = ?
		ORDER BY seq ASC
	`, historyID)
	if err != nil {
		return nil, fmt.Errorf("query spans: %w", err)
	}
	defer rows.Close()

	out := []history.Entry{}
	for rows.Next() {
		var (
			node int
			row  spanRow
		)
		if err := rows.Scan(&node, &row.kind, &row.value, &row.found, &row.req, &row.ack); err != nil {
			return nil, fmt.Errorf("scan span: %w", err)
		}
		span, err := decodeSpan(row)
		if err != nil {
			return nil, err
		}
		out = append(out, history.Entry{Node: node, Span: span})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spans: %w", err)
	}
	return out, nil
}

// ReadVerdicts returns a history's verdicts in feed order.
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) ReadVerdicts(ctx context.Context, historyID string) ([]Verdict, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, ok, live
		FROM verdicts
		WHERE history_id = ?
		ORDER BY seq ASC
	`, historyID)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	out := []Verdict{}
	for rows.Next() {
		var v Verdict
		if err := rows.Scan(&v.Seq, &v.OK, &v.Live); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verdicts: %w", err)
	}
	return out, nil
}
