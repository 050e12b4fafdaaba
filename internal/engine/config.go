package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/turing/internal/ir"
)

// SymbolSet is a set of tape symbols.
type SymbolSet map[ir.Symbol]struct{}

// NewSymbolSet returns a set holding symbols.
func NewSymbolSet(symbols ...ir.Symbol) SymbolSet {
	s := make(SymbolSet, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}

// Contains reports whether sym is in the set.
func (s SymbolSet) Contains(sym ir.Symbol) bool {
	_, ok := s[sym]
	return ok
}

// Config is the immutable machine definition shared by every run:
// alphabet, blank, accepting states, initial state and transition table.
// It is safe for concurrent use.
type Config struct {
	desc      ir.Description
	hash      string
	valid     SymbolSet // alphabet plus blank
	accepting map[ir.State]struct{}
	table     *Table
}

// ConfigOption configures NewConfig.
type ConfigOption func(*configOptions)

type configOptions struct {
	duplicates DuplicatePolicy
}

// WithDuplicatePolicy selects how duplicate rules are handled.
//
// Default: DuplicateReject.
// Use DuplicateLastWins to accept descriptions that rely on later rules
// replacing earlier ones.
func WithDuplicatePolicy(p DuplicatePolicy) ConfigOption {
	return func(o *configOptions) {
		o.duplicates = p
	}
}

// NewConfig validates d and builds its transition table.
//
// The description is copied, so later changes to d do not affect the Config.
func NewConfig(d ir.Description, opts ...ConfigOption) (*Config, error) {
	var o configOptions
	for _, opt := range opts {
		opt(&o)
	}

	desc := ir.Description{
		Alphabet:  slices.Clone(d.Alphabet),
		Blank:     d.Blank,
		Accepting: slices.Clone(d.Accepting),
		Initial:   d.Initial,
		Rules:     slices.Clone(d.Rules),
	}

	valid := NewSymbolSet(desc.Alphabet...)
	valid[desc.Blank] = struct{}{}

	table, err := NewTable(valid, desc.Rules, o.duplicates)
	if err != nil {
		return nil, err
	}

	hash, err := ir.DescriptionHash(desc)
	if err != nil {
		return nil, fmt.Errorf("hash description: %w", err)
	}

	accepting := make(map[ir.State]struct{}, len(desc.Accepting))
	for _, s := range desc.Accepting {
		accepting[s] = struct{}{}
	}

	return &Config{
		desc:      desc,
		hash:      hash,
		valid:     valid,
		accepting: accepting,
		table:     table,
	}, nil
}

// Blank returns the blank symbol.
func (c *Config) Blank() ir.Symbol { return c.desc.Blank }

// Initial returns the initial state.
func (c *Config) Initial() ir.State { return c.desc.Initial }

// Table returns the transition table.
func (c *Config) Table() *Table { return c.table }

// Hash returns the content hash of the description.
func (c *Config) Hash() string { return c.hash }

// Accepts reports whether s is an accepting state.
func (c *Config) Accepts(s ir.State) bool {
	_, ok := c.accepting[s]
	return ok
}

// ValidSymbol reports whether sym may appear on the tape.
func (c *Config) ValidSymbol(sym ir.Symbol) bool {
	return c.valid.Contains(sym)
}

// Description returns a copy of the description the Config was built from.
func (c *Config) Description() ir.Description {
	return ir.Description{
		Alphabet:  slices.Clone(c.desc.Alphabet),
		Blank:     c.desc.Blank,
		Accepting: slices.Clone(c.desc.Accepting),
		Initial:   c.desc.Initial,
		Rules:     slices.Clone(c.desc.Rules),
	}
}
