package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/turing/internal/compiler"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Machine is the path of a description file. Relative paths are
	// resolved against the scenario file's directory.
	Machine string `yaml:"machine,omitempty"`

	// Definition is an inline description, used when Machine is empty.
	Definition string `yaml:"definition,omitempty"`

	// Format of Definition: "text" (default) or "cue".
	Format string `yaml:"format,omitempty"`

	// AllowOverwrite accepts duplicate rules, the last one winning.
	AllowOverwrite bool `yaml:"allow_overwrite,omitempty"`

	// MaxSteps limits every case to this many transitions. 0 is unlimited.
	MaxSteps uint64 `yaml:"max_steps,omitempty"`

	// MaxTape caps the tape window of every case. 0 is unlimited.
	MaxTape int `yaml:"max_tape,omitempty"`

	// LoadError, when set, is the error code the description must be
	// rejected with. Cases must then be empty.
	LoadError string `yaml:"load_error,omitempty"`

	// Cases are the input tapes with their expectations.
	Cases []Case `yaml:"cases"`
}

// Case is one input tape and its expected outcome.
type Case struct {
	Tape   string `yaml:"tape"`
	Expect Expect `yaml:"expect"`
}

// Expect specifies the expected outcome of a case.
//
// When Error is set only the error code is checked. Otherwise Tape and
// Accepted are always checked, State and Steps only when present.
type Expect struct {
	Tape     string  `yaml:"tape"`
	Accepted bool    `yaml:"accepted"`
	State    *uint64 `yaml:"state,omitempty"`
	Steps    *uint64 `yaml:"steps,omitempty"`
	Error    string  `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Machine != "" && !filepath.IsAbs(scenario.Machine) {
		scenario.Machine = filepath.Join(filepath.Dir(path), scenario.Machine)
	}
	if scenario.Machine != "" {
		if _, err := os.Stat(scenario.Machine); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: machine file not found: %s", scenario.Machine)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Machine paths are left as written.
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

	switch {
	case s.Machine == "" && s.Definition == "":
		return fmt.Errorf("one of machine or definition is required")
	case s.Machine != "" && s.Definition != "":
		return fmt.Errorf("machine and definition are mutually exclusive")
	}

	switch compiler.Format(s.Format) {
	case "", compiler.FormatText, compiler.FormatCUE:
	default:
		return fmt.Errorf("unknown format %q", s.Format)
	}

	if s.MaxTape < 0 {
		return fmt.Errorf("max_tape must be non-negative")
	}

	if s.LoadError != "" {
		if len(s.Cases) > 0 {
			return fmt.Errorf("cases must be empty when load_error is set")
		}
		return nil
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Expect.Error != "" && (c.Expect.Tape != "" || c.Expect.Accepted || c.Expect.State != nil || c.Expect.Steps != nil) {
			return fmt.Errorf("cases[%d].expect: error excludes tape, accepted, state and steps", i)
		}
	}

	return nil
}
