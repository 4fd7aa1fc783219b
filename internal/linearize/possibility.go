package linearize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/linearize/internal/history"
)

// valueState is the abstract state of the register in one hypothesis.
type valueState uint8

const (
	valueNil       valueState = iota // certainly empty
	valueCertain                     // certainly holds register.val
	valueUncertain                   // any value is consistent (after a Fail)
)

type register struct {
	state valueState
	val   history.Value
}

// matches reports whether a Get that observed op is consistent with r.
func (r register) matches(op history.GetOp) bool {
	switch r.state {
	case valueUncertain:
		return true
	case valueNil:
		return !op.Found
	default:
		return op.Found && op.Value == r.val
	}
}

func (r register) String() string {
	switch r.state {
	case valueUncertain:
		return "?"
	case valueNil:
		return "nil"
	default:
		return strconv.FormatUint(r.val, 10)
	}
}

// lineage is an immutable linked list of committed entries, newest first.
// Successors extend their parent's list without copying it, which is safe
// because no node is ever modified after creation.
type lineage struct {
	entry history.Entry
	prev  *lineage
	depth int
}

func (l *lineage) push(e history.Entry) *lineage {
	depth := 1
	if l != nil {
		depth = l.depth + 1
	}
	return &lineage{entry: e, prev: l, depth: depth}
}

// entries returns the committed entries oldest first.
func (l *lineage) entries() []history.Entry {
	if l == nil {
		return nil
	}
	out := make([]history.Entry, l.depth)
	for n := l; n != nil; n = n.prev {
		out[n.depth-1] = n.entry
	}
	return out
}

// streamTail tracks the last span appended for a node, consumed or not.
type streamTail struct {
	ack history.Timestamp
	set bool
}

// Possibility is one hypothesis for the linear order of all spans fed so far.
//
// INVARIANTS:
//   - Queue heads are only removed by applying them, never reordered
//   - A Stopped marker is never applied; only a matching Resumed removes it
//   - step and applyHead never modify the receiver
type Possibility struct {
	value   register
	queues  [][]history.OpSpan
	tails   []streamTail
	lineage *lineage
}

// newPossibility returns the initial hypothesis: empty register, empty queues.
func newPossibility(numNodes int) *Possibility {
	return &Possibility{
		queues: make([][]history.OpSpan, numNodes),
		tails:  make([]streamTail, numNodes),
	}
}

// clone deep-copies queues and tails. The lineage list is shared since it is
// immutable.
func (p *Possibility) clone() *Possibility {
	queues := make([][]history.OpSpan, len(p.queues))
	for i, q := range p.queues {
		if len(q) > 0 {
			queues[i] = append([]history.OpSpan(nil), q...)
		}
	}
	return &Possibility{
		value:   p.value,
		queues:  queues,
		tails:   append([]streamTail(nil), p.tails...),
		lineage: p.lineage,
	}
}

// checkAppend validates span against node's stream without modifying p.
func (p *Possibility) checkAppend(node history.Node, span history.OpSpan) error {
	if err := validateSpan(len(p.queues), node, span); err != nil {
		return err
	}
	if tail := p.tails[node]; tail.set && span.TsReq <= tail.ack {
		return newSpanError(ErrCodeNonMonotonic, node, span,
			"request timestamp %d does not follow previous ack %d", span.TsReq, tail.ack)
	}
	if _, ok := span.Op.(history.ResumedOp); ok {
		q := p.queues[node]
		if len(q) == 0 {
			return newSpanError(ErrCodeUnmatchedResume, node, span, "no queued Stopped marker")
		}
		if _, stopped := q[len(q)-1].Op.(history.StoppedOp); !stopped {
			return newSpanError(ErrCodeUnmatchedResume, node, span,
				"last queued span is %s, not Stopped", q[len(q)-1])
		}
	}
	return nil
}

// Append adds span to the end of node's queue. A Resumed marker is not
// queued: it cancels the Stopped marker immediately before it.
func (p *Possibility) Append(node history.Node, span history.OpSpan) error {
	if err := p.checkAppend(node, span); err != nil {
		return err
	}
	p.tails[node] = streamTail{ack: span.TsAck, set: true}
	if _, ok := span.Op.(history.ResumedOp); ok {
		q := p.queues[node]
		p.queues[node] = q[:len(q)-1]
		return nil
	}
	p.queues[node] = append(p.queues[node], span)
	return nil
}

// CanStep reports whether every node has something queued and at least one
// queue head is a normal span.
func (p *Possibility) CanStep() bool {
	anyNormal := false
	for _, q := range p.queues {
		if len(q) == 0 {
			return false
		}
		if q[0].IsNormal() {
			anyNormal = true
		}
	}
	return anyNormal
}

// Step returns every successor reachable by linearizing one queue head next.
//
// A normal head is eligible when its request precedes minAck, the earliest
// acknowledgment among all normal heads: nothing else queued can be shown to
// have finished before it started. Marker heads neither take part in minAck
// nor step. Successors may repeat; the Linearizer merges them.
//
// Panics if the possibility cannot step.
func (p *Possibility) Step() []*Possibility {
	if !p.CanStep() {
		panic("linearize: Step called on a blocked possibility")
	}

	var minAck history.Timestamp
	found := false
	for _, q := range p.queues {
		if head := q[0]; head.IsNormal() && (!found || head.TsAck < minAck) {
			minAck = head.TsAck
			found = true
		}
	}

	var successors []*Possibility
	for node, q := range p.queues {
		if head := q[0]; head.IsNormal() && head.TsReq < minAck {
			if next, ok := p.applyHead(node); ok {
				successors = append(successors, next)
			}
		}
	}
	return successors
}

// applyHead linearizes node's queue head next. It returns false when the
// head is inconsistent with the current register value.
func (p *Possibility) applyHead(node history.Node) (*Possibility, bool) {
	head := p.queues[node][0]
	switch op := head.Op.(type) {
	case history.PutOp:
		next := p.advance(node)
		next.value = register{state: valueCertain, val: op.Value}
		return next, true
	case history.GetOp:
		if !p.value.matches(op) {
			return nil, false
		}
		return p.advance(node), true
	case history.FailOp:
		next := p.advance(node)
		next.value = register{state: valueUncertain}
		return next, true
	default:
		panic(fmt.Sprintf("linearize: cannot apply %#v on node %d", head, node))
	}
}

// advance clones p and moves node's queue head into the lineage.
func (p *Possibility) advance(node history.Node) *Possibility {
	next := p.clone()
	head := next.queues[node][0]
	next.queues[node] = next.queues[node][1:]
	next.lineage = next.lineage.push(history.Entry{Node: node, Span: head})
	return next
}

// Key identifies the possibility within a live set: the register value and
// the remaining length of each node's queue. Queue contents and lineage are
// deliberately left out.
func (p *Possibility) Key() string {
	var b strings.Builder
	b.WriteString(p.value.String())
	b.WriteByte('|')
	for i, q := range p.queues {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(len(q)))
	}
	return b.String()
}

// Remaining returns the number of queued spans per node.
func (p *Possibility) Remaining() []int {
	out := make([]int, len(p.queues))
	for i, q := range p.queues {
		out[i] = len(q)
	}
	return out
}

// Lineage returns the entries committed to this order, oldest first.
func (p *Possibility) Lineage() []history.Entry {
	return p.lineage.entries()
}

// String renders the possibility as "<value>|[l0,l1,..]~n-op~n-op".
func (p *Possibility) String() string {
	var b strings.Builder
	b.WriteString(p.value.String())
	b.WriteString("|[")
	for i, q := range p.queues {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(len(q)))
	}
	b.WriteString("]")
	for _, e := range p.Lineage() {
		b.WriteByte('~')
		b.WriteString(e.String())
	}
	return b.String()
}
