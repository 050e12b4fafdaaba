package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"unary_successor", "allow_overwrite", "duplicate_rule"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceSnapshot_Canonical(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "s",
		Cases: []CaseResult{{
			Tape:     "1",
			Output:   "1_",
			State:    1,
			Accepted: true,
			Steps:    2,
			Trace:    []string{"(0)1"},
		}},
	}

	data, err := snap.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"cases":[{"accepted":true,"output":"1_","state":1,"steps":2,"tape":"1","trace":["(0)1"]}],"scenario_name":"s"}`,
		string(data))
}
