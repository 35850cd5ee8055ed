// Package scenario loads YAML event scripts and plays them against a machine.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run of a machine.
type Scenario struct {
	// Name identifies the scenario in output.
	Name string `yaml:"name"`

	// Description is free text shown by `fsmx run --verbose`.
	Description string `yaml:"description,omitempty"`

	// Start selects the initial state by name. Empty means the first state.
	Start StartClause `yaml:"start,omitempty"`

	// Steps are delivered in order, one Receive each.
	Steps []Step `yaml:"steps"`

	// Expect is checked after the last step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// StartClause configures Machine.Start.
type StartClause struct {
	State string `yaml:"state,omitempty"`
	// Enter runs the initial state's enter hook. Defaults to true.
	Enter *bool `yaml:"enter,omitempty"`
}

// Step is a single event delivery.
type Step struct {
	// Event is the catalog name of the event.
	Event string `yaml:"event"`

	// Params are passed to the decoder.
	Params map[string]any `yaml:"params,omitempty"`

	// Drain submits recursively queued events after this step.
	Drain bool `yaml:"drain,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is checked after a step or at the end of the scenario.
type Expect struct {
	// State is the expected current state name.
	State string `yaml:"state,omitempty"`

	// Error is a substring the Receive error must contain. Without it, any
	// error fails the step.
	Error string `yaml:"error,omitempty"`
}

// EnterOnStart reports whether the initial enter hook should run.
func (s StartClause) EnterOnStart() bool {
	return s.Enter == nil || *s.Enter
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario document, rejecting unknown fields.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validate(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if step.Event == "" {
			return fmt.Errorf("step %d: event is required", i+1)
		}
	}
	return nil
}
