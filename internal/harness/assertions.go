package harness

import (
	"fmt"
	"strings"
)

// ExpectationError is returned when a run does not reach the expected
// verdict. It includes the step answers to help debug the failure.
type ExpectationError struct {
	Type     string       // "verdict" or "violated_at"
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Steps    []StepResult // Per-step answers for context
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nSteps:\n")
	for _, s := range e.Steps {
		fmt.Fprintf(&buf, "  [%d] %s -> %t (%d live)\n", s.Index, s.Span, s.OK, s.Live)
	}

	return buf.String()
}

// CheckExpectation compares a result with the expected verdict.
// Returns one message per mismatch; empty if the expectation holds.
func CheckExpectation(result *Result, expect Expectation) []string {
	var errs []string

	if result.Verdict != expect.Verdict {
		errs = append(errs, (&ExpectationError{
			Type:     "verdict",
			Expected: expect.Verdict,
			Actual:   result.Verdict,
			Steps:    result.Steps,
		}).Error())
		return errs
	}

	if expect.ViolatedAt != nil {
		actual := "never"
		if result.ViolatedAt != nil {
			actual = fmt.Sprintf("step %d", *result.ViolatedAt)
		}
		if result.ViolatedAt == nil || *result.ViolatedAt != *expect.ViolatedAt {
			errs = append(errs, (&ExpectationError{
				Type:     "violated_at",
				Expected: fmt.Sprintf("step %d", *expect.ViolatedAt),
				Actual:   actual,
				Steps:    result.Steps,
			}).Error())
		}
	}

	return errs
}
