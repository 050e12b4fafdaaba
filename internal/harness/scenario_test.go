package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesMachinePath(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unary_successor.yaml")
	require.NoError(t, err)

	assert.Equal(t, "unary_successor", s.Name)
	assert.Equal(t, filepath.Join("testdata", "machines", "unary_successor.tm"), s.Machine)
	require.Len(t, s.Cases, 3)
	require.NotNil(t, s.Cases[0].Expect.State)
	assert.Equal(t, uint64(1), *s.Cases[0].Expect.State)
	assert.Nil(t, s.Cases[1].Expect.State)
	assert.Equal(t, "INVALID_TAPE_SYMBOL", s.Cases[2].Expect.Error)
}

func TestLoadScenario_NotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingMachine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: x
description: x
machine: nowhere.tm
cases:
  - tape: "1"
    expect: {tape: "1", accepted: true}
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "machine file not found")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: x\ndefinition: d\ncase: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: x\ndefinition: d\ncases: [{tape: '1'}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\ndefinition: d\ncases: [{tape: '1'}]\n",
			want: "description is required",
		},
		{
			name: "no machine",
			yaml: "name: x\ndescription: x\ncases: [{tape: '1'}]\n",
			want: "one of machine or definition is required",
		},
		{
			name: "both machine and definition",
			yaml: "name: x\ndescription: x\nmachine: m.tm\ndefinition: d\ncases: [{tape: '1'}]\n",
			want: "mutually exclusive",
		},
		{
			name: "unknown format",
			yaml: "name: x\ndescription: x\ndefinition: d\nformat: json\ncases: [{tape: '1'}]\n",
			want: `unknown format "json"`,
		},
		{
			name: "no cases",
			yaml: "name: x\ndescription: x\ndefinition: d\n",
			want: "cases list is required",
		},
		{
			name: "cases with load_error",
			yaml: "name: x\ndescription: x\ndefinition: d\nload_error: DUPLICATE_RULE\ncases: [{tape: '1'}]\n",
			want: "cases must be empty",
		},
		{
			name: "error with tape",
			yaml: "name: x\ndescription: x\ndefinition: d\ncases: [{tape: '1', expect: {error: E, tape: '1'}}]\n",
			want: "cases[0].expect",
		},
		{
			name: "negative max_tape",
			yaml: "name: x\ndescription: x\ndefinition: d\nmax_tape: -1\ncases: [{tape: '1'}]\n",
			want: "max_tape must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
