package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

// unarySuccessor appends a blank to a run of 1s and accepts.
func unarySuccessor() ir.Description {
	return ir.Description{
		Alphabet:  []ir.Symbol{'1'},
		Blank:     '_',
		Accepting: []ir.State{1},
		Initial:   0,
		Rules: []ir.Rule{
			{State: 0, Read: '1', Next: 0, Write: '1', Move: ir.Right, Line: 5},
			{State: 0, Read: '_', Next: 1, Write: '_', Move: ir.Left, Line: 6},
		},
	}
}

// binaryIncrement adds one to a binary number, growing left on carry.
func binaryIncrement() ir.Description {
	return ir.Description{
		Alphabet:  []ir.Symbol{'0', '1'},
		Blank:     '_',
		Accepting: []ir.State{2},
		Initial:   0,
		Rules: []ir.Rule{
			{State: 0, Read: '0', Next: 0, Write: '0', Move: ir.Right},
			{State: 0, Read: '1', Next: 0, Write: '1', Move: ir.Right},
			{State: 0, Read: '_', Next: 1, Write: '_', Move: ir.Left},
			{State: 1, Read: '1', Next: 1, Write: '0', Move: ir.Left},
			{State: 1, Read: '0', Next: 2, Write: '1', Move: ir.Left},
			{State: 1, Read: '_', Next: 2, Write: '1', Move: ir.Left},
		},
	}
}

// runRight never halts: it walks right over everything.
func runRight() ir.Description {
	return ir.Description{
		Alphabet: []ir.Symbol{'1'},
		Blank:    '_',
		Initial:  0,
		Rules: []ir.Rule{
			{State: 0, Read: '1', Next: 0, Write: '1', Move: ir.Right},
			{State: 0, Read: '_', Next: 0, Write: '_', Move: ir.Right},
		},
	}
}

func mustConfig(t *testing.T, d ir.Description, opts ...ConfigOption) *Config {
	t.Helper()
	cfg, err := NewConfig(d, opts...)
	require.NoError(t, err)
	return cfg
}

func mustMachine(t *testing.T, d ir.Description, input string, opts ...Option) *Machine {
	t.Helper()
	m := New(mustConfig(t, d), opts...)
	require.NoError(t, m.Reset(input))
	return m
}
