package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/turing/internal/ir"
)

// TraceSnapshot captures the traces of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
// The machine hash is left out so golden files survive hash format changes.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	LoadError    string       `json:"load_error,omitempty"`
	Cases        []CaseResult `json:"cases"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	cases := make([]any, len(s.Cases))
	for i, c := range s.Cases {
		trace := make([]any, len(c.Trace))
		for j, line := range c.Trace {
			trace[j] = line
		}
		m := map[string]any{
			"tape":     c.Tape,
			"output":   c.Output,
			"state":    c.State,
			"accepted": c.Accepted,
			"steps":    c.Steps,
			"trace":    trace,
		}
		if c.Error != "" {
			m["error"] = c.Error
		}
		cases[i] = m
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"cases":         cases,
	}
	if s.LoadError != "" {
		result["load_error"] = s.LoadError
	}
	return result
}

// Marshal returns the canonical JSON of the snapshot.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its traces against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the traces don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		LoadError:    result.LoadError,
		Cases:        result.Cases,
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
