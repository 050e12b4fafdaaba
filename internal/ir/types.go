package ir

import (
	"fmt"
	"slices"
)

// Symbol is a single tape character.
type Symbol rune

// String returns the symbol as a one-character string.
func (s Symbol) String() string {
	return string(rune(s))
}

// State identifies a machine state. Only equality is meaningful.
type State uint64

// Direction is the head movement applied after a write.
// There is no "stay" move.
type Direction int

const (
	// Left moves the head one cell towards the start of the tape.
	Left Direction = iota
	// Right moves the head one cell towards the end of the tape.
	Right
)

// String returns the description-file token for the direction.
func (d Direction) String() string {
	switch d {
	case Left:
		return "L"
	case Right:
		return "R"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is Left or Right.
func (d Direction) Valid() bool {
	return d == Left || d == Right
}

// ParseDirection converts a description token ("L" or "R") to a Direction.
func ParseDirection(tok string) (Direction, error) {
	switch tok {
	case "L":
		return Left, nil
	case "R":
		return Right, nil
	default:
		return 0, fmt.Errorf("invalid direction %q: must be L or R", tok)
	}
}

// Rule is one transition: reading Read in State writes Write, moves the
// head in Move and enters Next.
type Rule struct {
	State State
	Read  Symbol
	Next  State
	Write Symbol
	Move  Direction

	// Line is the 1-based source line the rule came from, 0 if unknown.
	Line int
}

// String renders the rule in description-file form.
func (r Rule) String() string {
	return fmt.Sprintf("%d %s %d %s %s", r.State, r.Read, r.Next, r.Write, r.Move)
}

// Description is a complete, parsed machine definition.
//
// Alphabet and Accepting are sets; their order carries no meaning.
// Rules keep declaration order.
type Description struct {
	Alphabet  []Symbol
	Blank     Symbol
	Accepting []State
	Initial   State
	Rules     []Rule
}

// SortedAlphabet returns the alphabet in ascending order without duplicates.
func (d Description) SortedAlphabet() []Symbol {
	out := slices.Clone(d.Alphabet)
	slices.Sort(out)
	return slices.Compact(out)
}

// SortedAccepting returns the accepting states in ascending order without duplicates.
func (d Description) SortedAccepting() []State {
	out := slices.Clone(d.Accepting)
	slices.Sort(out)
	return slices.Compact(out)
}
