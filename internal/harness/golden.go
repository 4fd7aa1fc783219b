package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/linearize/internal/history"
)

// Snapshot is the golden form of a Result.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	Scenario   string
	Verdict    string
	ViolatedAt *int
	Steps      []StepResult
	Final      string
}

// NewSnapshot captures the deterministic parts of a result.
func NewSnapshot(r *Result) Snapshot {
	return Snapshot{
		Scenario:   r.Scenario,
		Verdict:    r.Verdict,
		ViolatedAt: r.ViolatedAt,
		Steps:      r.Steps,
		Final:      r.Final,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization.
func (s Snapshot) toCanonicalMap() map[string]any {
	steps := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		steps[i] = map[string]any{
			"index": step.Index,
			"entry": history.EntryObject(step.Entry),
			"ok":    step.OK,
			"live":  step.Live,
		}
	}

	out := map[string]any{
		"scenario": s.Scenario,
		"verdict":  s.Verdict,
		"steps":    steps,
		"final":    s.Final,
	}
	if s.ViolatedAt != nil {
		out["violated_at"] = *s.ViolatedAt
	}
	return out
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return history.MarshalCanonical(s.toCanonicalMap())
}

// AssertGolden compares a result against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
