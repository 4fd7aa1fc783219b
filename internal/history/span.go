package history

import (
	"fmt"
	"strconv"
)

// Node identifies a client issuing operations, in [0, numNodes).
type Node = int

// Timestamp is a globally unique, strictly increasing clock reading.
type Timestamp = uint64

// Value is the opaque payload written by Put and observed by Get.
type Value = uint64

// Op is the sealed tagged union of span kinds.
// Only PutOp, GetOp, FailOp, StoppedOp and ResumedOp implement it, so
// transition logic can only reach a payload through a type switch on the
// concrete variant.
type Op interface {
	// Kind returns the wire name of the operation.
	Kind() Kind

	isOp()
}

// Kind names a span variant.
type Kind string

const (
	KindPut     Kind = "put"
	KindGet     Kind = "get"
	KindFail    Kind = "fail"
	KindStopped Kind = "stopped"
	KindResumed Kind = "resumed"
)

// ParseKind converts a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPut, KindGet, KindFail, KindStopped, KindResumed:
		return k, nil
	default:
		return "", fmt.Errorf("unknown operation kind %q", s)
	}
}

// PutOp is an acknowledged write of Value.
type PutOp struct {
	Value Value
}

// GetOp is an acknowledged read. Found is false when the register was
// observed empty ("not found"); Value is meaningless in that case.
type GetOp struct {
	Value Value
	Found bool
}

// FailOp is a write attempt whose outcome cannot be known.
type FailOp struct{}

// StoppedOp marks the start of a node's unavailability window.
type StoppedOp struct{}

// ResumedOp marks the end of a node's unavailability window.
type ResumedOp struct{}

func (PutOp) Kind() Kind     { return KindPut }
func (GetOp) Kind() Kind     { return KindGet }
func (FailOp) Kind() Kind    { return KindFail }
func (StoppedOp) Kind() Kind { return KindStopped }
func (ResumedOp) Kind() Kind { return KindResumed }

func (PutOp) isOp()     {}
func (GetOp) isOp()     {}
func (FailOp) isOp()    {}
func (StoppedOp) isOp() {}
func (ResumedOp) isOp() {}

// OpSpan is one operation with its timing window [TsReq, TsAck).
type OpSpan struct {
	Op    Op
	TsReq Timestamp
	TsAck Timestamp
}

// Put builds the span of a successful write.
func Put(val Value, tsReq, tsAck Timestamp) OpSpan {
	return OpSpan{Op: PutOp{Value: val}, TsReq: tsReq, TsAck: tsAck}
}

// Get builds the span of a successful read that observed val.
func Get(val Value, tsReq, tsAck Timestamp) OpSpan {
	return OpSpan{Op: GetOp{Value: val, Found: true}, TsReq: tsReq, TsAck: tsAck}
}

// GetNil builds the span of a successful read that found nothing.
func GetNil(tsReq, tsAck Timestamp) OpSpan {
	return OpSpan{Op: GetOp{}, TsReq: tsReq, TsAck: tsAck}
}

// Fail builds the span of a write whose outcome is unknown.
func Fail(tsReq, tsAck Timestamp) OpSpan {
	return OpSpan{Op: FailOp{}, TsReq: tsReq, TsAck: tsAck}
}

// Stopped builds the marker for a node becoming unavailable at ts.
func Stopped(ts Timestamp) OpSpan {
	return OpSpan{Op: StoppedOp{}, TsReq: ts, TsAck: ts}
}

// Resumed builds the marker for a node becoming available again at ts.
func Resumed(ts Timestamp) OpSpan {
	return OpSpan{Op: ResumedOp{}, TsReq: ts, TsAck: ts}
}

// IsNormal reports whether the span is a Put, Get or Fail.
// Stopped and Resumed markers are administrative.
func (s OpSpan) IsNormal() bool {
	switch s.Op.(type) {
	case PutOp, GetOp, FailOp:
		return true
	default:
		return false
	}
}

// Validate checks the span's shape: a known op variant, a non-empty window
// for normal spans and a zero-width window for markers.
func (s OpSpan) Validate() error {
	switch s.Op.(type) {
	case PutOp, GetOp, FailOp:
		if s.TsAck <= s.TsReq {
			return fmt.Errorf("%v: ack timestamp %d must be after request timestamp %d", s, s.TsAck, s.TsReq)
		}
	case StoppedOp, ResumedOp:
		if s.TsAck != s.TsReq {
			return fmt.Errorf("%v: marker must be instantaneous, got [%d, %d)", s, s.TsReq, s.TsAck)
		}
	case nil:
		return fmt.Errorf("span has no operation")
	default:
		return fmt.Errorf("unsupported operation %T", s.Op)
	}
	return nil
}

// String renders the operation and its observed result, e.g. "Put(8)",
// "Get(7)", "Get(nil)" or "Stopped".
func (s OpSpan) String() string {
	switch op := s.Op.(type) {
	case PutOp:
		return "Put(" + strconv.FormatUint(op.Value, 10) + ")"
	case GetOp:
		if !op.Found {
			return "Get(nil)"
		}
		return "Get(" + strconv.FormatUint(op.Value, 10) + ")"
	case FailOp:
		return "Fail"
	case StoppedOp:
		return "Stopped"
	case ResumedOp:
		return "Resumed"
	default:
		return "Invalid"
	}
}

// GoString renders the span with its window, e.g. "Put(8)<100>-<105>".
func (s OpSpan) GoString() string {
	return fmt.Sprintf("%s<%d>-<%d>", s, s.TsReq, s.TsAck)
}

// Entry pairs a span with the node that issued it.
type Entry struct {
	Node Node
	Span OpSpan
}

// String renders the entry as "<node>-<op>".
func (e Entry) String() string {
	return strconv.Itoa(e.Node) + "-" + e.Span.String()
}
