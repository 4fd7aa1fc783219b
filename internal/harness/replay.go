package harness

import (
	"context"
	"fmt"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/linearize"
	"github.com/roach88/linearize/internal/store"
)

// ReplayReport compares a fresh check of a stored history with what was
// recorded.
type ReplayReport struct {
	History store.History
	Result  *Result

	// Mismatches lists the seq of every span whose stored verdict differs
	// from the replayed one, including spans with no stored verdict.
	Mismatches []int64

	// HashMatch is false when a sealed history's spans no longer hash to
	// the sealed content hash. Unsealed histories always match.
	HashMatch bool
}

// Consistent reports whether the replay reproduced the recording exactly.
func (r *ReplayReport) Consistent() bool {
	return len(r.Mismatches) == 0 && r.HashMatch
}

// Replay re-feeds a stored history, in seq order, into a fresh checker.
// Returns store.ErrNotFound (wrapped) if the history does not exist.
func Replay(ctx context.Context, st *store.Store, historyID string, opts ...linearize.Option) (*ReplayReport, error) {
	h, err := st.ReadHistory(ctx, historyID)
	if err != nil {
		return nil, err
	}
	entries, err := st.ReadSpans(ctx, historyID)
	if err != nil {
		return nil, err
	}
	verdicts, err := st.ReadVerdicts(ctx, historyID)
	if err != nil {
		return nil, err
	}

	lin, err := linearize.New(h.NumNodes, opts...)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", historyID, err)
	}

	stored := make(map[int64]store.Verdict, len(verdicts))
	for _, v := range verdicts {
		stored[v.Seq] = v
	}

	report := &ReplayReport{History: h, Result: NewResult(h.Name), HashMatch: true}
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := lin.FeedSpan(e.Node, e.Span)
		if err != nil {
			return nil, fmt.Errorf("replay %s: span %d: %w", historyID, i, err)
		}
		report.Result.AddStep(i, e, ok, lin.Len())

		seq := int64(i)
		if v, found := stored[seq]; !found || v.OK != ok || v.Live != lin.Len() {
			report.Mismatches = append(report.Mismatches, seq)
		}
	}
	report.Result.Live = lin.Snapshot()
	report.Result.Final = lin.String()

	if h.ContentHash != "" {
		hash, err := history.ContentHash(h.NumNodes, entries)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", historyID, err)
		}
		report.HashMatch = hash == h.ContentHash
	}
	return report, nil
}
