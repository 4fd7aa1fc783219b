package linearize

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/linearize/internal/history"
)

// Linearizer is an online linearizability checker for one register.
//
// Thread-safety model:
//   - All methods must be called from one goroutine at a time
//   - Saturation may use internal workers (WithParallelism) but always
//     completes before FeedSpan returns
//
// INVARIANTS:
//   - After FeedSpan returns, no live possibility can step
//   - No two live possibilities share a Key
//   - Once the live set is empty it stays empty
type Linearizer struct {
	numNodes int
	live     map[string]*Possibility

	logger  *slog.Logger
	workers int
	metrics *Metrics
}

// New creates a Linearizer for numNodes nodes, seeded with the single
// initial possibility (empty register, empty queues).
func New(numNodes int, opts ...Option) (*Linearizer, error) {
	if numNodes <= 0 {
		return nil, &ContractError{
			Code:    ErrCodeInvalidNodeCount,
			Message: fmt.Sprintf("node count must be positive, got %d", numNodes),
			Node:    -1,
		}
	}

	initial := newPossibility(numNodes)
	l := &Linearizer{
		numNodes: numNodes,
		live:     map[string]*Possibility{initial.Key(): initial},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:  1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// MustNew is like New but panics on error.
// Use only in tests or when numNodes is known to be valid.
func MustNew(numNodes int, opts ...Option) *Linearizer {
	l, err := New(numNodes, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// NumNodes returns the number of nodes the checker was built for.
func (l *Linearizer) NumNodes() int {
	return l.numNodes
}

// Len returns the size of the live set.
func (l *Linearizer) Len() int {
	return len(l.live)
}

// Violated reports whether the history has been proven non-linearizable.
func (l *Linearizer) Violated() bool {
	return len(l.live) == 0
}

// FeedSpan appends span, issued by node, to every live possibility and
// saturates the live set.
//
// Returns true if the history fed so far may still be linearizable and
// false once it has been proven not to be. False is sticky: after the first
// false every later call returns false without doing any work.
//
// Returns a *ContractError if the call violates the caller contract; the
// live set is left untouched in that case.
func (l *Linearizer) FeedSpan(node history.Node, span history.OpSpan) (bool, error) {
	if len(l.live) == 0 {
		if err := validateSpan(l.numNodes, node, span); err != nil {
			return false, err
		}
		return false, nil
	}

	// Every live possibility has seen the same stream, so one representative
	// decides whether the append is legal for all of them.
	for _, rep := range l.live {
		if err := rep.checkAppend(node, span); err != nil {
			return false, err
		}
		break
	}

	pending := make(map[string]*Possibility)
	blocked := make(map[string]*Possibility)
	for _, p := range l.live {
		if err := p.Append(node, span); err != nil {
			panic(fmt.Sprintf("linearize: append diverged across live set: %v", err))
		}
		insert(pending, blocked, p)
	}

	rounds, produced := l.saturate(pending, blocked)
	l.live = blocked

	ok := len(l.live) > 0
	l.metrics.observeFeed(len(l.live), rounds, produced, !ok)
	l.logger.Debug("span fed",
		"node", node,
		"span", span.GoString(),
		"live", len(l.live),
		"rounds", rounds,
	)
	if !ok {
		l.logger.Info("linearizability violated",
			"node", node,
			"span", span.GoString(),
		)
	}
	return ok, nil
}

// MustFeedSpan is like FeedSpan but panics on a contract error.
func (l *Linearizer) MustFeedSpan(node history.Node, span history.OpSpan) bool {
	ok, err := l.FeedSpan(node, span)
	if err != nil {
		panic(err)
	}
	return ok
}

// insert files p into pending or blocked by CanStep. The first possibility
// seen for a key is kept.
func insert(pending, blocked map[string]*Possibility, p *Possibility) {
	key := p.Key()
	target := blocked
	if p.CanStep() {
		target = pending
	}
	if _, dup := target[key]; !dup {
		target[key] = p
	}
}

// saturate expands pending until nothing can step, merging every blocked
// result into blocked. It returns the number of rounds and successors.
func (l *Linearizer) saturate(pending, blocked map[string]*Possibility) (rounds, produced int) {
	for len(pending) > 0 {
		rounds++
		members := sortedMembers(pending)
		results := l.expand(members)

		pending = make(map[string]*Possibility)
		for _, successors := range results {
			produced += len(successors)
			for _, s := range successors {
				insert(pending, blocked, s)
			}
		}
	}
	return rounds, produced
}

// expand steps every member. With more than one worker the steps run on a
// bounded errgroup; results keep the members' order either way.
func (l *Linearizer) expand(members []*Possibility) [][]*Possibility {
	results := make([][]*Possibility, len(members))
	if l.workers <= 1 || len(members) == 1 {
		for i, p := range members {
			results[i] = p.Step()
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(l.workers)
	for i, p := range members {
		g.Go(func() error {
			results[i] = p.Step()
			return nil
		})
	}
	_ = g.Wait() // steps never fail
	return results
}

func sortedMembers(set map[string]*Possibility) []*Possibility {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*Possibility, len(keys))
	for i, k := range keys {
		out[i] = set[k]
	}
	return out
}

// Possibilities returns the live set ordered by Key. The returned values
// must not be modified.
func (l *Linearizer) Possibilities() []*Possibility {
	return sortedMembers(l.live)
}

// Clone returns an independent copy of the checker, for exploring what a
// further span would do without committing to it.
func (l *Linearizer) Clone() *Linearizer {
	live := make(map[string]*Possibility, len(l.live))
	for k, p := range l.live {
		live[k] = p.clone()
	}
	return &Linearizer{
		numNodes: l.numNodes,
		live:     live,
		logger:   l.logger,
		workers:  l.workers,
		metrics:  l.metrics,
	}
}

// Summary describes one live possibility for diagnostics.
type Summary struct {
	Value     string          `json:"value"`
	Remaining []int           `json:"remaining"`
	Lineage   []history.Entry `json:"-"`
	Order     []string        `json:"order"`
}

// Snapshot summarizes the live set, ordered by Key.
func (l *Linearizer) Snapshot() []Summary {
	members := sortedMembers(l.live)
	out := make([]Summary, len(members))
	for i, p := range members {
		lineage := p.Lineage()
		order := make([]string, len(lineage))
		for j, e := range lineage {
			order[j] = e.String()
		}
		out[i] = Summary{
			Value:     p.value.String(),
			Remaining: p.Remaining(),
			Lineage:   lineage,
			Order:     order,
		}
	}
	return out
}

// String renders the live set for logging. Not a stable format.
func (l *Linearizer) String() string {
	var b strings.Builder
	b.WriteString("Possibilities {\n")
	for _, p := range sortedMembers(l.live) {
		b.WriteString("  ")
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}
