package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/turing/internal/ir"
)

func TestNewConfig(t *testing.T) {
	cfg := mustConfig(t, unarySuccessor())

	assert.Equal(t, ir.Symbol('_'), cfg.Blank())
	assert.Equal(t, ir.State(0), cfg.Initial())
	assert.True(t, cfg.Accepts(1))
	assert.False(t, cfg.Accepts(0))
	assert.True(t, cfg.ValidSymbol('1'))
	assert.True(t, cfg.ValidSymbol('_'))
	assert.False(t, cfg.ValidSymbol('0'))
	assert.Equal(t, 2, cfg.Table().Len())
	assert.Equal(t, ir.MustDescriptionHash(unarySuccessor()), cfg.Hash())
}

func TestNewConfig_CopiesDescription(t *testing.T) {
	d := unarySuccessor()
	cfg := mustConfig(t, d)

	d.Rules[0].Write = '_'
	d.Alphabet[0] = 'x'

	got := cfg.Description()
	assert.Equal(t, ir.Symbol('1'), got.Rules[0].Write)
	assert.Equal(t, ir.Symbol('1'), got.Alphabet[0])
}

func TestNewConfig_DuplicatePolicy(t *testing.T) {
	d := unarySuccessor()
	d.Rules = append(d.Rules, ir.Rule{State: 0, Read: '1', Next: 1, Write: '1', Move: ir.Left, Line: 7})

	_, err := NewConfig(d)
	require.Error(t, err)
	assert.True(t, IsDuplicateRule(err))
	assert.False(t, IsRunError(err))

	cfg, err := NewConfig(d, WithDuplicatePolicy(DuplicateLastWins))
	require.NoError(t, err)
	action, ok := cfg.Table().Lookup(0, '1')
	require.True(t, ok)
	assert.Equal(t, ir.Left, action.Move)
}

func TestNewConfig_BlankOutsideAlphabetIsWritable(t *testing.T) {
	d := ir.Description{
		Alphabet: []ir.Symbol{'a'},
		Blank:    ' ',
		Rules: []ir.Rule{
			{State: 0, Read: ' ', Next: 0, Write: 'a', Move: ir.Right},
			{State: 0, Read: 'a', Next: 1, Write: ' ', Move: ir.Left},
		},
	}
	_, err := NewConfig(d)
	assert.NoError(t, err)
}

func TestErrorFormatting(t *testing.T) {
	e := &Error{Code: ErrCodeDuplicateRule, Message: "dup", Line: 4}
	assert.Equal(t, "DUPLICATE_RULE: dup (line 4)", e.Error())

	e = &Error{Code: ErrCodeTapeOverflow, Message: "full"}
	assert.Equal(t, "TAPE_OVERFLOW: full", e.Error())

	assert.Equal(t, ErrorCode(""), CodeOf(assert.AnError))
}
