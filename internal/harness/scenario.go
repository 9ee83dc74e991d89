package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/agentboard/internal/fixture"
)

// Scenario defines an onboarding scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the clock's initial time.
	Start time.Time `yaml:"start"`

	// StallThresholdDays overrides the stall threshold. Zero keeps the default.
	StallThresholdDays int `yaml:"stall_threshold_days,omitempty"`

	// Fixtures are applied to the store before the first step.
	Fixtures fixture.File `yaml:"fixtures"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Expect validates per-agent final state.
	Expect []Expectation `yaml:"expect,omitempty"`

	// Leaderboard is the expected ranking as agent IDs, best first.
	Leaderboard []string `yaml:"leaderboard,omitempty"`
}

// Step is one scenario action. Exactly one of Init, Toggle, Refresh or
// Advance is set.
type Step struct {
	// Init initializes the named agent's checklist.
	Init string `yaml:"init,omitempty"`

	// Toggle flips one checklist item.
	Toggle *ToggleStep `yaml:"toggle,omitempty"`

	// Refresh runs the derived passes for the named agent.
	Refresh string `yaml:"refresh,omitempty"`

	// Advance moves the clock forward by a Go duration, e.g. "36h".
	Advance string `yaml:"advance,omitempty"`

	// ExpectError, if set, requires the step to fail with an error whose
	// text contains this value.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ToggleStep identifies the item to toggle.
type ToggleStep struct {
	Agent string `yaml:"agent"`
	Item  string `yaml:"item"`
	Actor string `yaml:"actor,omitempty"`
}

// Expectation validates one agent's final state. Nil fields are not checked;
// list fields are compared as sets.
type Expectation struct {
	Agent      string   `yaml:"agent"`
	Badges     []string `yaml:"badges,omitempty"`
	Points     *int     `yaml:"points,omitempty"`
	Progress   *int     `yaml:"progress,omitempty"`
	OpenAlerts []string `yaml:"open_alerts,omitempty"`
	Stalled    *bool    `yaml:"stalled,omitempty"`
	Rank       *int     `yaml:"rank,omitempty"`
}

// Step operation names used in traces.
const (
	OpInit    = "init"
	OpToggle  = "toggle"
	OpRefresh = "refresh"
	OpAdvance = "advance"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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
	if s.Start.IsZero() {
		return fmt.Errorf("start is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if err := s.Fixtures.Validate(); err != nil {
		return fmt.Errorf("fixtures: %w", err)
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, e := range s.Expect {
		if e.Agent == "" {
			return fmt.Errorf("expect[%d]: agent is required", i)
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	if step.Init != "" {
		set++
	}
	if step.Toggle != nil {
		set++
		if step.Toggle.Agent == "" || step.Toggle.Item == "" {
			return fmt.Errorf("steps[%d]: toggle requires agent and item", index)
		}
	}
	if step.Refresh != "" {
		set++
	}
	if step.Advance != "" {
		set++
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: invalid advance duration: %w", index, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d]: advance must be positive", index)
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of init, toggle, refresh or advance is required", index)
	}
	return nil
}

// op returns the step's operation name.
func (s Step) op() string {
	switch {
	case s.Init != "":
		return OpInit
	case s.Toggle != nil:
		return OpToggle
	case s.Refresh != "":
		return OpRefresh
	default:
		return OpAdvance
	}
}
