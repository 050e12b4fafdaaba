package store

import "github.com/roach88/turing/internal/ir"

// Machine is a stored machine definition.
type Machine struct {
	Hash          string
	Description   ir.Description
	IRVersion     string
	EngineVersion string
}

// Run is the persisted record of one processed input line.
//
// ErrorCode is empty for runs that halted normally. MaxSteps and MaxTape
// record the limits in force so replay reproduces the same outcome.
type Run struct {
	ID           string
	MachineHash  string
	Seq          int64
	Line         int
	Input        string
	Output       string
	FinalState   ir.State
	Accepted     bool
	Steps        uint64
	MaxSteps     uint64
	MaxTape      int
	ErrorCode    string
	ErrorMessage string
	OutcomeHash  string
}
