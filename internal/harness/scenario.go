package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tactica/internal/tactics"
)

// Scenario defines a conformance scenario: a board, some actors, and the
// rule outcomes expected on them.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules lists rule files or directories to load. Relative paths are
	// resolved against the scenario file's directory.
	Rules []string `yaml:"rules"`

	Board BoardSpec `yaml:"board"`

	// Actors are placed on the board in order.
	Actors []tactics.Actor `yaml:"actors"`

	// Checks evaluate one rule for one actor on one cell.
	Checks []Check `yaml:"checks,omitempty"`

	// Reach evaluates one rule for one actor over the whole board.
	Reach []ReachCheck `yaml:"reach,omitempty"`

	// Assertions validate the evaluation trace and the stored log.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// BoardSpec sizes the board and lists blocked cells.
type BoardSpec struct {
	Width   int            `yaml:"width"`
	Height  int            `yaml:"height"`
	Blocked []tactics.Vec2 `yaml:"blocked,omitempty"`
}

// Check is a single expected rule outcome.
type Check struct {
	Rule   string        `yaml:"rule"`
	Actor  string        `yaml:"actor"`
	Cell   *tactics.Vec2 `yaml:"cell"`
	Expect *bool         `yaml:"expect"`
}

// ReachCheck lists every cell a rule should accept for an actor. Order in
// the file does not matter.
type ReachCheck struct {
	Rule   string         `yaml:"rule"`
	Actor  string         `yaml:"actor"`
	Expect []tactics.Vec2 `yaml:"expect"`
}

// Assertion validates the trace or the stored log.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_count": evaluations matching rule/actor/result occur Count times
	// - "trace_order": rules were first evaluated in the order given by Rules
	// - "stored_count": the store holds Count evaluations matching rule/actor
	Type string `yaml:"type"`

	Rule   string   `yaml:"rule,omitempty"`
	Actor  string   `yaml:"actor,omitempty"`
	Result *bool    `yaml:"result,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Rules  []string `yaml:"rules,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceCount  = "trace_count"
	AssertTraceOrder  = "trace_order"
	AssertStoredCount = "stored_count"
)

// LoadScenario reads and parses a scenario YAML file. Rule paths are
// resolved relative to the file. Unknown fields (typos) and missing
// required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, p := range scenario.Rules {
		if !filepath.IsAbs(p) {
			scenario.Rules[i] = filepath.Join(base, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Rules) == 0 {
		return fmt.Errorf("rules list is required and must be non-empty")
	}

	for _, p := range s.Rules {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("rules path not found: %s", p)
		}
	}

	if s.Board.Width <= 0 || s.Board.Height <= 0 {
		return fmt.Errorf("board width and height must be positive")
	}

	if len(s.Actors) == 0 {
		return fmt.Errorf("actors list is required and must be non-empty")
	}

	actors := make(map[string]bool, len(s.Actors))
	for i, a := range s.Actors {
		if a.ID == "" {
			return fmt.Errorf("actors[%d]: id is required", i)
		}
		actors[a.ID] = true
	}

	if len(s.Checks) == 0 && len(s.Reach) == 0 {
		return fmt.Errorf("at least one check or reach entry is required")
	}

	for i, c := range s.Checks {
		if c.Rule == "" {
			return fmt.Errorf("checks[%d]: rule is required", i)
		}
		if !actors[c.Actor] {
			return fmt.Errorf("checks[%d]: unknown actor %q", i, c.Actor)
		}
		if c.Cell == nil {
			return fmt.Errorf("checks[%d]: cell is required", i)
		}
		if c.Expect == nil {
			return fmt.Errorf("checks[%d]: expect is required", i)
		}
	}

	for i, r := range s.Reach {
		if r.Rule == "" {
			return fmt.Errorf("reach[%d]: rule is required", i)
		}
		if !actors[r.Actor] {
			return fmt.Errorf("reach[%d]: unknown actor %q", i, r.Actor)
		}
	}

	for i, a := range s.Assertions {
		a := a // per-iteration copy (go1.22 loopvar semantics)
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceCount, AssertStoredCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTraceOrder:
		if len(a.Rules) == 0 {
			return fmt.Errorf("assertions[%d]: rules list is required for trace_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
