package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/turing/internal/compiler"
	"github.com/roach88/turing/internal/engine"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeNotFound = "E005" // Path not found

	// Description errors
	ErrCodeMalformed         = "E201" // Malformed description
	ErrCodeDuplicateRule     = "E202" // Two rules for one (state, symbol)
	ErrCodeInvalidRuleSymbol = "E203" // Rule symbol outside alphabet and blank

	// Run errors
	ErrCodeInvalidTapeSymbol = "E301" // Input symbol outside alphabet and blank
	ErrCodeTapeOverflow      = "E302" // Tape window limit exceeded
	ErrCodeStepsExceeded     = "E303" // Step limit exceeded
)

// LoadError represents an error that occurred while loading a description.
type LoadError struct {
	Code    string
	Message string
	Line    int
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Code, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loadConfig reads a description file and builds the machine Config.
func loadConfig(path string, allowOverwrite bool) (*engine.Config, error) {
	desc, err := compiler.LoadFile(path)
	if err != nil {
		return nil, classifyLoadError(err)
	}

	policy := engine.DuplicateReject
	if allowOverwrite {
		policy = engine.DuplicateLastWins
	}
	cfg, err := engine.NewConfig(*desc, engine.WithDuplicatePolicy(policy))
	if err != nil {
		return nil, classifyLoadError(err)
	}
	return cfg, nil
}

// classifyLoadError maps compiler and engine errors to CLI error codes.
func classifyLoadError(err error) *LoadError {
	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		if ce.Pos.IsValid() {
			return &LoadError{Code: ErrCodeMalformed, Message: ce.Error(), Err: err}
		}
		return &LoadError{Code: ErrCodeMalformed, Message: ce.Field + ": " + ce.Message, Line: ce.Line, Err: err}
	}

	var ee *engine.Error
	if errors.As(err, &ee) {
		le := &LoadError{Code: ErrCodeGeneric, Message: ee.Message, Line: ee.Line, Err: err}
		switch ee.Code {
		case engine.ErrCodeMalformedDescription:
			le.Code = ErrCodeMalformed
		case engine.ErrCodeDuplicateRule:
			le.Code = ErrCodeDuplicateRule
		case engine.ErrCodeInvalidRuleSymbol:
			le.Code = ErrCodeInvalidRuleSymbol
		}
		return le
	}

	if errors.Is(err, fs.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Message: err.Error(), Err: err}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
}

// runErrorCode maps a per-run engine error to its CLI error code.
func runErrorCode(err error) string {
	switch engine.CodeOf(err) {
	case engine.ErrCodeInvalidTapeSymbol:
		return ErrCodeInvalidTapeSymbol
	case engine.ErrCodeTapeOverflow:
		return ErrCodeTapeOverflow
	case engine.ErrCodeStepsExceeded:
		return ErrCodeStepsExceeded
	default:
		return ErrCodeGeneric
	}
}
