package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/linearize/internal/history"
)

// spanRow is the column form of one stored span.
type spanRow struct {
	kind  string
	value sql.NullInt64
	found sql.NullBool
	req   int64
	ack   int64
}

// encodeSpan flattens a span into columns. Unsigned values keep their bit
// pattern in the signed columns.
func encodeSpan(span history.OpSpan) (spanRow, error) {
	if span.Op == nil {
		return spanRow{}, fmt.Errorf("encode span: no operation")
	}
	row := spanRow{
		kind: string(span.Op.Kind()),
		req:  int64(span.TsReq),
		ack:  int64(span.TsAck),
	}
	switch op := span.Op.(type) {
	case history.PutOp:
		row.value = sql.NullInt64{Int64: int64(op.Value), Valid: true}
	case history.GetOp:
		row.found = sql.NullBool{Bool: op.Found, Valid: true}
		if op.Found {
			row.value = sql.NullInt64{Int64: int64(op.Value), Valid: true}
		}
	}
	return row, nil
}

// decodeSpan rebuilds a span from its columns.
func decodeSpan(row spanRow) (history.OpSpan, error) {
	kind, err := history.ParseKind(row.kind)
	if err != nil {
		return history.OpSpan{}, fmt.Errorf("decode span: %w", err)
	}
	req, ack := history.Timestamp(row.req), history.Timestamp(row.ack)

	switch kind {
	case history.KindPut:
		if !row.value.Valid {
			return history.OpSpan{}, fmt.Errorf("decode span: put without value")
		}
		return history.Put(history.Value(row.value.Int64), req, ack), nil
	case history.KindGet:
		if row.found.Valid && row.found.Bool {
			return history.Get(history.Value(row.value.Int64), req, ack), nil
		}
		return history.GetNil(req, ack), nil
	case history.KindFail:
		return history.Fail(req, ack), nil
	case history.KindStopped:
		return history.OpSpan{Op: history.StoppedOp{}, TsReq: req, TsAck: ack}, nil
	default:
		return history.OpSpan{Op: history.ResumedOp{}, TsReq: req, TsAck: ack}, nil
	}
}
