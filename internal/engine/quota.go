package engine

import (
	"errors"
	"fmt"
)

// ErrCodeStepsExceeded is reported by CodeOf for StepsExceededError.
const ErrCodeStepsExceeded ErrorCode = "STEPS_EXCEEDED"

// StepsExceededError is returned when a run would apply more transitions
// than the limit set with WithMaxSteps.
//
// The machine is left in the configuration reached after Limit steps.
// Unlike halting, the run has no acceptance verdict.
type StepsExceededError struct {
	Steps uint64 // Steps applied before the run was stopped
	Limit uint64 // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("%s: run exceeded max steps quota: %d steps reached, limit %d",
		ErrCodeStepsExceeded, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}

// checkQuota is called once a rule has matched and before it is applied.
// A zero limit disables the check.
func checkQuota(steps, limit uint64) error {
	if limit == 0 || steps < limit {
		return nil
	}
	return &StepsExceededError{Steps: steps, Limit: limit}
}
