package engine

import (
	"fmt"

	"github.com/roach88/turing/internal/ir"
)

// Action is what a matching rule does: write, move, change state.
type Action struct {
	Next  ir.State
	Write ir.Symbol
	Move  ir.Direction
}

// Key is the lookup key of a transition.
type Key struct {
	State ir.State
	Read  ir.Symbol
}

// DuplicatePolicy controls what NewTable does when two rules share a Key.
type DuplicatePolicy int

const (
	// DuplicateReject fails construction with a DUPLICATE_RULE error.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateLastWins keeps the rule declared last.
	DuplicateLastWins
)

// Table is an immutable deterministic transition table.
// It is safe for concurrent use.
type Table struct {
	actions map[Key]Action
	keys    []Key // first-declaration order
}

// NewTable builds a table from rules.
//
// Every read and write symbol must be in valid and every direction must be
// Left or Right. At most one rule may exist per (state, read) unless policy
// is DuplicateLastWins.
func NewTable(valid SymbolSet, rules []ir.Rule, policy DuplicatePolicy) (*Table, error) {
	t := &Table{
		actions: make(map[Key]Action, len(rules)),
		keys:    make([]Key, 0, len(rules)),
	}
	lines := make(map[Key]int, len(rules))

	for _, r := range rules {
		if !valid.Contains(r.Read) {
			return nil, newInvalidRuleSymbolError(r, "read", r.Read)
		}
		if !valid.Contains(r.Write) {
			return nil, newInvalidRuleSymbolError(r, "write", r.Write)
		}
		if !r.Move.Valid() {
			return nil, &Error{
				Code:    ErrCodeMalformedDescription,
				Message: fmt.Sprintf("invalid direction %s", r.Move),
				Line:    r.Line,
				State:   r.State,
				Symbol:  r.Read,
			}
		}

		k := Key{State: r.State, Read: r.Read}
		if _, dup := t.actions[k]; dup {
			if policy == DuplicateReject {
				return nil, newDuplicateRuleError(r, lines[k])
			}
		} else {
			t.keys = append(t.keys, k)
		}
		t.actions[k] = Action{Next: r.Next, Write: r.Write, Move: r.Move}
		lines[k] = r.Line
	}

	return t, nil
}

// Lookup returns the action for (state, sym). A miss is the halting signal.
func (t *Table) Lookup(state ir.State, sym ir.Symbol) (Action, bool) {
	a, ok := t.actions[Key{State: state, Read: sym}]
	return a, ok
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.actions)
}

// States returns every state that appears in the table, as a source or a
// target, in first-seen order.
func (t *Table) States() []ir.State {
	seen := make(map[ir.State]bool)
	var out []ir.State
	add := func(s ir.State) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, k := range t.keys {
		add(k.State)
		add(t.actions[k].Next)
	}
	return out
}
