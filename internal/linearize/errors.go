package linearize

import (
	"errors"
	"fmt"

	"github.com/roach88/linearize/internal/history"
)

// ContractError reports a misuse of the checker by its caller.
//
// Contract errors signal a bug in the harness, not a property of the
// observed history:
//   - Zero or negative node count at construction
//   - Node index outside [0, numNodes)
//   - Malformed span (unknown op, empty window on a normal span)
//   - A node's span starting before its previous span was acknowledged
//   - Resumed with no pending Stopped marker on that node
type ContractError struct {
	// Code identifies the error category.
	Code ContractErrorCode

	// Message is a human-readable description.
	Message string

	// Node is the offending node, or -1 when not applicable.
	Node history.Node

	// Span is the debug rendering of the offending span, if any.
	Span string
}

// ContractErrorCode categorizes contract errors.
type ContractErrorCode string

const (
	// ErrCodeInvalidNodeCount indicates a checker built for no nodes.
	ErrCodeInvalidNodeCount ContractErrorCode = "INVALID_NODE_COUNT"

	// ErrCodeNodeOutOfRange indicates a node index outside [0, numNodes).
	ErrCodeNodeOutOfRange ContractErrorCode = "NODE_OUT_OF_RANGE"

	// ErrCodeInvalidSpan indicates a span whose shape is inconsistent.
	ErrCodeInvalidSpan ContractErrorCode = "INVALID_SPAN"

	// ErrCodeNonMonotonic indicates a span that does not start after the
	// node's previous span was acknowledged.
	ErrCodeNonMonotonic ContractErrorCode = "NON_MONOTONIC_SPAN"

	// ErrCodeUnmatchedResume indicates a Resumed marker whose node has no
	// queued Stopped marker immediately before it.
	ErrCodeUnmatchedResume ContractErrorCode = "UNMATCHED_RESUME"
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Span != "" {
		return fmt.Sprintf("%s: %s (node=%d, span=%s)", e.Code, e.Message, e.Node, e.Span)
	}
	if e.Node >= 0 {
		return fmt.Sprintf("%s: %s (node=%d)", e.Code, e.Message, e.Node)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsContractError returns true if err is or wraps a *ContractError.
func IsContractError(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}

// HasCode returns true if err is or wraps a *ContractError with the given code.
func HasCode(err error, code ContractErrorCode) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

func newSpanError(code ContractErrorCode, node history.Node, span history.OpSpan, format string, args ...any) *ContractError {
	return &ContractError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Node:    node,
		Span:    span.GoString(),
	}
}

// validateSpan performs the checks that need no per-node history.
func validateSpan(numNodes int, node history.Node, span history.OpSpan) error {
	if node < 0 || node >= numNodes {
		return &ContractError{
			Code:    ErrCodeNodeOutOfRange,
			Message: fmt.Sprintf("node must be in [0, %d)", numNodes),
			Node:    node,
		}
	}
	if err := span.Validate(); err != nil {
		return newSpanError(ErrCodeInvalidSpan, node, span, "%v", err)
	}
	return nil
}
