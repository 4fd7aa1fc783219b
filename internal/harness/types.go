package harness

import (
	"strconv"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/linearize"
)

// StepResult is the checker's answer after one step.
type StepResult struct {
	Index int           `json:"index"`
	Entry history.Entry `json:"-"`
	Span  string        `json:"span"`
	OK    bool          `json:"ok"`
	Live  int           `json:"live"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Scenario is the name of the scenario that was run.
	Scenario string `json:"scenario"`

	// Pass indicates the verdict matched the scenario's expectation.
	Pass bool `json:"pass"`

	// Verdict is "linearizable" or "violated".
	Verdict string `json:"verdict"`

	// ViolatedAt is the index of the first step answered with false.
	// Nil while the history is linearizable.
	ViolatedAt *int `json:"violated_at,omitempty"`

	// Steps holds one entry per fed step.
	Steps []StepResult `json:"steps"`

	// Live summarizes the possibilities left after the last step.
	Live []linearize.Summary `json:"live"`

	// Final is the rendered live set after the last step.
	Final string `json:"-"`

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Verdict:  VerdictLinearizable,
		Steps:    []StepResult{},
		Errors:   []string{},
	}
}

// AddError adds an expectation mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records the checker's answer for one step, tracking the first
// violation.
func (r *Result) AddStep(index int, e history.Entry, ok bool, live int) {
	r.Steps = append(r.Steps, StepResult{
		Index: index,
		Entry: e,
		Span:  strconv.Itoa(e.Node) + "-" + e.Span.GoString(),
		OK:    ok,
		Live:  live,
	})
	if !ok && r.ViolatedAt == nil {
		at := index
		r.ViolatedAt = &at
		r.Verdict = VerdictViolated
	}
}
