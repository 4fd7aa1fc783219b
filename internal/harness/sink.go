package harness

import (
	"context"
	"fmt"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/store"
)

// Feed is one span fed to the checker together with its answer.
type Feed struct {
	Seq   int64
	Entry history.Entry
	OK    bool
	Live  int
}

// Sink receives every span a Recorder feeds, in feed order.
type Sink interface {
	Record(ctx context.Context, f Feed) error
}

// StoreSink persists feeds into one history of a store.Store.
type StoreSink struct {
	store     *store.Store
	historyID string
}

// NewStoreSink creates the history record and returns a sink writing to it.
func NewStoreSink(ctx context.Context, st *store.Store, ids store.IDGenerator, name string, numNodes int) (*StoreSink, error) {
	id := ids.Generate()
	if err := st.CreateHistory(ctx, store.History{ID: id, Name: name, NumNodes: numNodes}); err != nil {
		return nil, fmt.Errorf("store sink: %w", err)
	}
	return &StoreSink{store: st, historyID: id}, nil
}

// HistoryID returns the ID of the history being written.
func (s *StoreSink) HistoryID() string {
	return s.historyID
}

// Record writes the span and its verdict in one transaction.
func (s *StoreSink) Record(ctx context.Context, f Feed) error {
	return s.store.RecordFeed(ctx, s.historyID, f.Seq, f.Entry, store.Verdict{
		Seq:  f.Seq,
		OK:   f.OK,
		Live: f.Live,
	})
}

// Seal stores the content hash of everything recorded so far.
func (s *StoreSink) Seal(ctx context.Context) (string, error) {
	return s.store.Seal(ctx, s.historyID)
}
