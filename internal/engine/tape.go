package engine

import (
	"slices"
	"strings"

	"github.com/roach88/turing/internal/ir"
)

// minLeftReserve is the smallest number of spare cells kept in front of the
// window after a left growth reallocates.
const minLeftReserve = 8

// Tape is a logically unbounded tape backed by a finite window.
// Cells outside the window hold the blank symbol implicitly.
//
// The window is cells[off:]. Growing left consumes the reserve in front of
// off, so existing cells are only moved when the reserve runs out.
// The window never shrinks.
type Tape struct {
	cells []ir.Symbol
	off   int
	blank ir.Symbol
}

// NewTape returns a tape whose window holds symbols.
// Symbols are not validated.
func NewTape(blank ir.Symbol, symbols []ir.Symbol) *Tape {
	t := &Tape{blank: blank}
	t.load(symbols)
	return t
}

// load replaces the window with symbols, reusing the backing array.
func (t *Tape) load(symbols []ir.Symbol) {
	t.cells = append(t.cells[:0], symbols...)
	t.off = 0
}

// Len returns the number of materialized cells.
func (t *Tape) Len() int {
	return len(t.cells) - t.off
}

// Blank returns the tape's blank symbol.
func (t *Tape) Blank() ir.Symbol {
	return t.blank
}

// Read returns the symbol at head. head must be inside the window.
func (t *Tape) Read(head int) ir.Symbol {
	return t.cells[t.off+head]
}

// Write overwrites the symbol at head. head must be inside the window.
func (t *Tape) Write(head int, s ir.Symbol) {
	t.cells[t.off+head] = s
}

// GrowLeft prepends one blank cell. Every existing index shifts up by one;
// the caller adjusts its head.
func (t *Tape) GrowLeft() {
	if t.off == 0 {
		t.reserveLeft()
	}
	t.off--
	t.cells[t.off] = t.blank
}

// GrowRight appends one blank cell.
func (t *Tape) GrowRight() {
	t.cells = append(t.cells, t.blank)
}

// reserveLeft reallocates so at least max(len, minLeftReserve) cells are
// free in front of the window.
func (t *Tape) reserveLeft() {
	n := t.Len()
	reserve := max(n, minLeftReserve)
	buf := make([]ir.Symbol, reserve+n, reserve+cap(t.cells))
	copy(buf[reserve:], t.cells[t.off:])
	t.cells = buf
	t.off = reserve
}

// view returns the window without copying. Callers must not retain it.
func (t *Tape) view() []ir.Symbol {
	return t.cells[t.off:]
}

// Symbols returns a copy of the window.
func (t *Tape) Symbols() []ir.Symbol {
	return slices.Clone(t.view())
}

// String returns the window as text.
func (t *Tape) String() string {
	return symbolsToString(t.view())
}

func symbolsToString(symbols []ir.Symbol) string {
	var b strings.Builder
	b.Grow(len(symbols))
	for _, s := range symbols {
		b.WriteRune(rune(s))
	}
	return b.String()
}
