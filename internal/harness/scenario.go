package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linearize/internal/history"
)

// Scenario is a scripted history with an expected verdict.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Nodes is the number of client nodes in the history.
	Nodes int `yaml:"nodes"`

	// Steps are fed to the checker in order.
	Steps []Step `yaml:"steps"`

	// Expect is the verdict the checker must reach.
	Expect Expectation `yaml:"expect"`
}

// Step is one span of the scripted history.
type Step struct {
	Node history.Node `yaml:"node"`

	// Op is one of put, get, fail, stopped, resumed.
	Op string `yaml:"op"`

	// Value is the written value (put) or the observed value (get).
	// A get without value observed the register empty.
	Value *history.Value `yaml:"value,omitempty"`

	// Req and Ack bound a put, get or fail.
	Req history.Timestamp `yaml:"req,omitempty"`
	Ack history.Timestamp `yaml:"ack,omitempty"`

	// At is the instant of a stopped or resumed marker.
	At *history.Timestamp `yaml:"at,omitempty"`
}

// Expectation is the verdict a scenario must reach.
type Expectation struct {
	// Verdict is "linearizable" or "violated".
	Verdict string `yaml:"verdict"`

	// ViolatedAt optionally pins the index of the first step that made the
	// history non-linearizable.
	ViolatedAt *int `yaml:"violated_at,omitempty"`
}

// Verdict constants.
const (
	VerdictLinearizable = "linearizable"
	VerdictViolated     = "violated"
)

// Span converts the step into the span it describes.
func (s Step) Span() (history.OpSpan, error) {
	kind, err := history.ParseKind(s.Op)
	if err != nil {
		return history.OpSpan{}, err
	}

	switch kind {
	case history.KindPut:
		if s.Value == nil {
			return history.OpSpan{}, fmt.Errorf("put requires a value")
		}
		return history.Put(*s.Value, s.Req, s.Ack), nil
	case history.KindGet:
		if s.Value == nil {
			return history.GetNil(s.Req, s.Ack), nil
		}
		return history.Get(*s.Value, s.Req, s.Ack), nil
	case history.KindFail:
		return history.Fail(s.Req, s.Ack), nil
	case history.KindStopped:
		if s.At == nil {
			return history.OpSpan{}, fmt.Errorf("stopped requires at")
		}
		return history.Stopped(*s.At), nil
	default:
		if s.At == nil {
			return history.OpSpan{}, fmt.Errorf("resumed requires at")
		}
		return history.Resumed(*s.At), nil
	}
}

// StepFromEntry converts a span back into its scenario step form.
func StepFromEntry(e history.Entry) Step {
	step := Step{Node: e.Node, Op: string(e.Span.Op.Kind())}
	switch op := e.Span.Op.(type) {
	case history.PutOp:
		v := op.Value
		step.Value = &v
	case history.GetOp:
		if op.Found {
			v := op.Value
			step.Value = &v
		}
	}
	if e.Span.IsNormal() {
		step.Req, step.Ack = e.Span.TsReq, e.Span.TsAck
	} else {
		at := e.Span.TsReq
		step.At = &at
	}
	return step
}

// LoadScenario reads, schema-checks and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario schema-checks and parses a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	// Strict decoding catches typos the schema may not name precisely
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// ValidateScenario checks the constraints that need cross-field context.
// Ordering constraints between steps of the same node are left to the
// checker, which reports them as contract errors.
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Nodes <= 0 {
		return fmt.Errorf("nodes must be positive, got %d", s.Nodes)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(s.Nodes, step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	switch s.Expect.Verdict {
	case VerdictLinearizable:
		if s.Expect.ViolatedAt != nil {
			return fmt.Errorf("expect: violated_at requires verdict %q", VerdictViolated)
		}
	case VerdictViolated:
		if at := s.Expect.ViolatedAt; at != nil && (*at < 0 || *at >= len(s.Steps)) {
			return fmt.Errorf("expect: violated_at %d out of range [0, %d)", *at, len(s.Steps))
		}
	case "":
		return fmt.Errorf("expect: verdict is required")
	default:
		return fmt.Errorf("expect: unknown verdict %q", s.Expect.Verdict)
	}
	return nil
}

func validateStep(nodes int, step Step) error {
	if step.Node < 0 || step.Node >= nodes {
		return fmt.Errorf("node %d out of range [0, %d)", step.Node, nodes)
	}

	kind, err := history.ParseKind(step.Op)
	if err != nil {
		return err
	}

	switch kind {
	case history.KindPut, history.KindGet, history.KindFail:
		if step.At != nil {
			return fmt.Errorf("%s takes req and ack, not at", kind)
		}
		if kind == history.KindFail && step.Value != nil {
			return fmt.Errorf("fail takes no value")
		}
	case history.KindStopped, history.KindResumed:
		if step.Value != nil || step.Req != 0 || step.Ack != 0 {
			return fmt.Errorf("%s takes only at", kind)
		}
	}

	span, err := step.Span()
	if err != nil {
		return err
	}
	return span.Validate()
}

// FindScenarios returns the scenario files (*.yaml, *.yml) under dir,
// sorted by path.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
