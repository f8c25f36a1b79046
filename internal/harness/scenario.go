package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/semmeta/internal/ir"
)

// DefaultSource is the source identifier used when a scenario sets none.
const DefaultSource = "harness"

// Scenario defines a conformance test scenario.
// Scenarios replay item graph mutations and assert on the emitted changes,
// the log output and the final record set.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the engine source identifier passed to listeners.
	// Defaults to DefaultSource so traces stay deterministic.
	Source string `yaml:"source,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace, logs and records.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one mutation. Exactly one field is set.
type Step struct {
	Add      *ir.Item    `yaml:"add,omitempty"`
	Update   *ir.Item    `yaml:"update,omitempty"`
	Remove   string      `yaml:"remove,omitempty"`
	Put      *ir.Item    `yaml:"put,omitempty"`
	Register *ir.TagSpec `yaml:"register,omitempty"`
}

// Kind returns the step type name, or "" if no field or more than one is set.
func (s Step) Kind() string {
	var kinds []string
	if s.Add != nil {
		kinds = append(kinds, StepAdd)
	}
	if s.Update != nil {
		kinds = append(kinds, StepUpdate)
	}
	if s.Remove != "" {
		kinds = append(kinds, StepRemove)
	}
	if s.Put != nil {
		kinds = append(kinds, StepPut)
	}
	if s.Register != nil {
		kinds = append(kinds, StepRegister)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Step type constants.
const (
	StepAdd      = "add"
	StepUpdate   = "update"
	StepRemove   = "remove"
	StepPut      = "put"
	StepRegister = "register"
)

// Assertion validates the trace, logs or final records.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record": item has a record with value (and configuration, if set)
	// - "no_record": item has no record
	// - "change_count": trace holds exactly count changes (of kind, if set)
	// - "log_contains": a log line (at level, if set) contains message
	// - "no_logs": nothing logged at level or above
	Type string `yaml:"type"`

	// Item is the item name (used by record, no_record).
	Item string `yaml:"item,omitempty"`

	// Value is the expected record value (used by record).
	Value string `yaml:"value,omitempty"`

	// Configuration is the exact expected configuration (used by record).
	// Omit to skip the check; use {} to require an empty configuration.
	Configuration map[string]string `yaml:"configuration,omitempty"`

	// Kind filters changes by kind (used by change_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of changes (used by change_count).
	Count *int `yaml:"count,omitempty"`

	// Level is a slog level name: debug, info, warn or error
	// (used by log_contains, no_logs).
	Level string `yaml:"level,omitempty"`

	// Message is the expected log substring (used by log_contains).
	Message string `yaml:"message,omitempty"`
}

// Assertion type constants.
const (
	AssertRecord      = "record"
	AssertNoRecord    = "no_record"
	AssertChangeCount = "change_count"
	AssertLogContains = "log_contains"
	AssertNoLogs      = "no_logs"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return DecodeScenario(bytes.NewReader(data))
}

// DecodeScenario parses and validates a scenario from r.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
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

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s Step) error {
	switch s.Kind() {
	case "":
		return fmt.Errorf("steps[%d]: exactly one of add, update, remove, put or register is required", index)
	case StepAdd, StepUpdate, StepPut:
		item := s.Add
		if item == nil {
			item = s.Update
		}
		if item == nil {
			item = s.Put
		}
		if item.Name == "" {
			return fmt.Errorf("steps[%d]: item name is required", index)
		}
	case StepRegister:
		if s.Register.ID == "" {
			return fmt.Errorf("steps[%d]: register id is required", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecord:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for record", index)
		}
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for record", index)
		}
	case AssertNoRecord:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for no_record", index)
		}
	case AssertChangeCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for change_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for change_count", index)
		}
		switch ir.ChangeKind(a.Kind) {
		case "", ir.ChangeAdded, ir.ChangeUpdated, ir.ChangeRemoved:
		default:
			return fmt.Errorf("assertions[%d]: unknown change kind %q", index, a.Kind)
		}
	case AssertLogContains:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for log_contains", index)
		}
		if _, err := parseLevel(a.Level); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertNoLogs:
		if _, err := parseLevel(a.Level); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// parseLevel parses a slog level name. Empty means debug.
func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid level %q", s)
	}
	return level, nil
}
