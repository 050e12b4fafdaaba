// Package engine implements the Turing machine execution core.
//
// ARCHITECTURE:
//
// Config is built once from an ir.Description and never mutated afterwards.
// It owns the transition Table and may be shared by any number of Machines,
// including Machines running on different goroutines.
//
// Machine is the per-run mutable part: a Tape, a head index and the current
// state. Reset reloads it from an input line; Run steps it until no rule
// matches. A Machine must not be shared between goroutines.
//
// Step semantics:
//  1. Look up (state, symbol under head). No rule means halt.
//  2. Check growth limits. An overflow fails the run before anything changes.
//  3. Write, grow the window if the head leaves it, move, enter next state.
//
// A step is applied completely or not at all.
//
// Observers see the configuration before every step attempt, including the
// final attempt that finds no rule. The core never writes to stdout or logs.
package engine
