package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/linearize"
)

// ErrCallPending is returned when a node begins a call or changes
// availability while one of its calls is still outstanding.
var ErrCallPending = errors.New("node has an outstanding call")

// ErrCallCompleted is returned when a Call is completed twice.
var ErrCallCompleted = errors.New("call already completed")

// Recorder turns client activity into spans and feeds them to a checker.
//
// Thread-safety: a Recorder is safe for concurrent use, typically one
// goroutine per node. Feeds are serialized; the checker itself is not
// safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	lin     *linearize.Linearizer
	clock   Clock
	sink    Sink
	logger  *slog.Logger
	seq     int64
	pending map[history.Node]bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithSink forwards every feed to s.
func WithSink(s Sink) RecorderOption {
	return func(r *Recorder) {
		r.sink = s
	}
}

// WithRecorderLogger sets the logger used for feed records.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRecorder creates a recorder feeding lin and stamping calls with clock.
func NewRecorder(lin *linearize.Linearizer, clock Clock, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		lin:     lin,
		clock:   clock,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		pending: make(map[history.Node]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Call is an operation whose request has been sent but whose outcome is not
// yet known.
type Call struct {
	r    *Recorder
	node history.Node
	req  history.Timestamp
	done bool
}

// Begin stamps the request time of a new call on node.
// A node may have at most one outstanding call.
func (r *Recorder) Begin(node history.Node) (*Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node < 0 || node >= r.lin.NumNodes() {
		return nil, fmt.Errorf("begin: node %d out of range [0, %d)", node, r.lin.NumNodes())
	}
	if r.pending[node] {
		return nil, fmt.Errorf("begin on node %d: %w", node, ErrCallPending)
	}
	r.pending[node] = true
	return &Call{r: r, node: node, req: r.clock.Next()}, nil
}

// Node returns the node that issued the call.
func (c *Call) Node() history.Node {
	return c.node
}

// Put completes the call as a successful write of val.
func (c *Call) Put(ctx context.Context, val history.Value) (bool, error) {
	return c.complete(ctx, func(req, ack history.Timestamp) history.OpSpan {
		return history.Put(val, req, ack)
	})
}

// Get completes the call as a successful read. found is false when the
// register was observed empty.
func (c *Call) Get(ctx context.Context, val history.Value, found bool) (bool, error) {
	return c.complete(ctx, func(req, ack history.Timestamp) history.OpSpan {
		if !found {
			return history.GetNil(req, ack)
		}
		return history.Get(val, req, ack)
	})
}

// Fail completes the call as a write whose outcome is unknown.
func (c *Call) Fail(ctx context.Context) (bool, error) {
	return c.complete(ctx, history.Fail)
}

func (c *Call) complete(ctx context.Context, build func(req, ack history.Timestamp) history.OpSpan) (bool, error) {
	r := c.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.done {
		return false, ErrCallCompleted
	}
	c.done = true
	delete(r.pending, c.node)

	return r.feedLocked(ctx, c.node, build(c.req, r.clock.Next()))
}

// Stop feeds a Stopped marker for node.
func (r *Recorder) Stop(ctx context.Context, node history.Node) (bool, error) {
	return r.marker(ctx, node, history.Stopped)
}

// Resume feeds a Resumed marker for node.
func (r *Recorder) Resume(ctx context.Context, node history.Node) (bool, error) {
	return r.marker(ctx, node, history.Resumed)
}

func (r *Recorder) marker(ctx context.Context, node history.Node, build func(history.Timestamp) history.OpSpan) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending[node] {
		return false, fmt.Errorf("marker on node %d: %w", node, ErrCallPending)
	}
	return r.feedLocked(ctx, node, build(r.clock.Next()))
}

// Feed feeds a span with caller-chosen timestamps, bypassing the clock.
func (r *Recorder) Feed(ctx context.Context, node history.Node, span history.OpSpan) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feedLocked(ctx, node, span)
}

// feedLocked feeds the checker and forwards the result to the sink.
// Contract errors are not recorded; they leave the checker unchanged.
func (r *Recorder) feedLocked(ctx context.Context, node history.Node, span history.OpSpan) (bool, error) {
	ok, err := r.lin.FeedSpan(node, span)
	if err != nil {
		return false, err
	}

	seq := r.seq
	r.seq++
	r.logger.Debug("recorded span",
		"seq", seq,
		"node", node,
		"span", span.GoString(),
		"ok", ok,
	)

	if r.sink != nil {
		f := Feed{
			Seq:   seq,
			Entry: history.Entry{Node: node, Span: span},
			OK:    ok,
			Live:  r.lin.Len(),
		}
		if err := r.sink.Record(ctx, f); err != nil {
			return ok, fmt.Errorf("sink: %w", err)
		}
	}
	return ok, nil
}

// Fed returns the number of spans fed so far.
func (r *Recorder) Fed() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}
