package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/turing/internal/ir"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testDescription is a one-rule machine that walks right over 1s.
func testDescription() ir.Description {
	return ir.Description{
		Alphabet:  []ir.Symbol{'1'},
		Blank:     '_',
		Accepting: []ir.State{1},
		Initial:   0,
		Rules: []ir.Rule{
			{State: 0, Read: '1', Next: 0, Write: '1', Move: ir.Right},
			{State: 0, Read: '_', Next: 1, Write: '1', Move: ir.Left},
		},
	}
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id, machineHash string, seq int64) Run {
	return Run{
		ID:          id,
		MachineHash: machineHash,
		Seq:         seq,
		Line:        int(seq),
		Input:       "11",
		Output:      "111",
		FinalState:  1,
		Accepted:    true,
		Steps:       3,
		OutcomeHash: "outcome-" + id,
	}
}
