package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/turing/internal/ir"
)

// Error represents a failure detected while building a Config or running
// a Machine.
//
// Construction errors (DUPLICATE_RULE, INVALID_RULE_SYMBOL,
// MALFORMED_DESCRIPTION) make the whole description unusable. Run errors
// (INVALID_TAPE_SYMBOL, TAPE_OVERFLOW) are scoped to a single run.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the 1-based description line of the offending rule, if known.
	Line int

	// Position is the 0-based offset of the offending character in an
	// input tape (INVALID_TAPE_SYMBOL only).
	Position int

	// State and Symbol locate the rule or cell involved.
	State  ir.State
	Symbol ir.Symbol
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeMalformedDescription indicates a structurally invalid description.
	ErrCodeMalformedDescription ErrorCode = "MALFORMED_DESCRIPTION"

	// ErrCodeDuplicateRule indicates a (state, symbol) pair defined twice.
	ErrCodeDuplicateRule ErrorCode = "DUPLICATE_RULE"

	// ErrCodeInvalidRuleSymbol indicates a rule reading or writing a symbol
	// outside the alphabet and blank.
	ErrCodeInvalidRuleSymbol ErrorCode = "INVALID_RULE_SYMBOL"

	// ErrCodeInvalidTapeSymbol indicates an input character outside the
	// alphabet and blank.
	ErrCodeInvalidTapeSymbol ErrorCode = "INVALID_TAPE_SYMBOL"

	// ErrCodeTapeOverflow indicates the window would exceed its maximum length.
	ErrCodeTapeOverflow ErrorCode = "TAPE_OVERFLOW"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Code, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the ErrorCode of err, or "" if err is not an engine error.
// StepsExceededError reports ErrCodeStepsExceeded.
func CodeOf(err error) ErrorCode {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	var se *StepsExceededError
	if errors.As(err, &se) {
		return ErrCodeStepsExceeded
	}
	return ""
}

// IsDuplicateRule returns true if err is a duplicate-rule error.
func IsDuplicateRule(err error) bool {
	return CodeOf(err) == ErrCodeDuplicateRule
}

// IsInvalidTapeSymbol returns true if err is an invalid tape symbol error.
func IsInvalidTapeSymbol(err error) bool {
	return CodeOf(err) == ErrCodeInvalidTapeSymbol
}

// IsTapeOverflow returns true if err is a tape overflow error.
func IsTapeOverflow(err error) bool {
	return CodeOf(err) == ErrCodeTapeOverflow
}

// IsRunError returns true if err is scoped to a single run and the next
// input may still be processed.
func IsRunError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeInvalidTapeSymbol, ErrCodeTapeOverflow, ErrCodeStepsExceeded:
		return true
	default:
		return false
	}
}

func newDuplicateRuleError(r ir.Rule, prev int) *Error {
	msg := fmt.Sprintf("rule for state %d reading %q defined more than once", r.State, r.Read.String())
	if prev > 0 {
		msg += fmt.Sprintf(" (first defined on line %d)", prev)
	}
	return &Error{
		Code:    ErrCodeDuplicateRule,
		Message: msg,
		Line:    r.Line,
		State:   r.State,
		Symbol:  r.Read,
	}
}

func newInvalidRuleSymbolError(r ir.Rule, field string, sym ir.Symbol) *Error {
	return &Error{
		Code:    ErrCodeInvalidRuleSymbol,
		Message: fmt.Sprintf("%s symbol %q is not in the alphabet or blank", field, sym.String()),
		Line:    r.Line,
		State:   r.State,
		Symbol:  sym,
	}
}

func newInvalidTapeSymbolError(pos int, sym ir.Symbol) *Error {
	return &Error{
		Code:     ErrCodeInvalidTapeSymbol,
		Message:  fmt.Sprintf("invalid tape symbol %q at position %d", sym.String(), pos),
		Position: pos,
		Symbol:   sym,
	}
}

func newTapeOverflowError(state ir.State, sym ir.Symbol, limit int) *Error {
	return &Error{
		Code:    ErrCodeTapeOverflow,
		Message: fmt.Sprintf("tape window would exceed %d cells", limit),
		State:   state,
		Symbol:  sym,
	}
}
