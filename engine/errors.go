/*
errors.go - Centralized error types for the earnings engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The engine never logs, retries, or swallows errors; every failure is a
  typed return the calling layer maps to its own surface (HTTP status,
  retry, user message).

ERROR CATEGORIES:
  1. InvalidArgument  - Malformed or out-of-range input (target <= 0,
                        percentage outside [0,100], negative amounts)
  2. NotFound         - Referenced quest/employee absent from supplied facts
  3. InconsistentInput - Cross-entity key mismatch (a fine for a different
                        employee passed into one employee's composition)

USAGE:
  Callers classify with the helpers:

    if engine.IsNotFound(err) { ... 404 ... }
    if engine.IsClientError(err) { ... 400 ... }

SEE ALSO:
  - quest.go: Returns resolution errors
  - salary.go: Returns composition errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrQuestNotFound is returned when a quest id has no matching definition.
	ErrQuestNotFound = errors.New("quest not found")

	// ErrEmployeeNotFound is returned when a referenced employee is absent
	// from the supplied facts.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidTarget is returned when a quest target is not positive.
	// Validated at quest creation, not at resolution time.
	ErrInvalidTarget = errors.New("quest target must be positive")

	// ErrInvalidPercentage is returned when a salary percentage falls
	// outside [0,100].
	ErrInvalidPercentage = errors.New("salary percentage outside [0,100]")

	// ErrInvalidAmount is returned when a fine, bonus, or reward amount
	// is negative.
	ErrInvalidAmount = errors.New("amount must not be negative")

	// ErrInvalidProgress is returned when a progress counter is negative.
	ErrInvalidProgress = errors.New("progress must not be negative")

	// ErrInconsistentInput is returned when facts for different employees
	// or days are mixed into one computation.
	ErrInconsistentInput = errors.New("inconsistent input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PercentageRangeError reports an out-of-range salary percentage.
type PercentageRangeError struct {
	Got Percent
}

func (e *PercentageRangeError) Error() string {
	return fmt.Sprintf("salary percentage %v outside [0,100]", e.Got.Value)
}

func (e *PercentageRangeError) Unwrap() error { return ErrInvalidPercentage }

// InconsistentInputError reports a cross-entity key mismatch, e.g. a fine
// for employee B handed to employee A's composition. This guards against
// cross-contamination when callers batch multiple employees.
type InconsistentInputError struct {
	Field string // "fine.employee", "fine.date", "progress.employee"
	Want  string
	Got   string
}

func (e *InconsistentInputError) Error() string {
	return fmt.Sprintf("inconsistent input: %s is %q, want %q", e.Field, e.Got, e.Want)
}

func (e *InconsistentInputError) Unwrap() error { return ErrInconsistentInput }

// DuplicateProgressError reports two progress records for the same employee
// in one resolution input.
type DuplicateProgressError struct {
	EmployeeID EmployeeID
}

func (e *DuplicateProgressError) Error() string {
	return fmt.Sprintf("duplicate progress record for employee %s", e.EmployeeID)
}

func (e *DuplicateProgressError) Unwrap() error { return ErrInconsistentInput }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing quest or employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}

// IsInvalidArgument returns true for malformed or out-of-range input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidPercentage) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidProgress)
}

// IsInconsistentInput returns true for cross-entity key mismatches.
func IsInconsistentInput(err error) bool {
	return errors.Is(err, ErrInconsistentInput)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return IsInvalidArgument(err) || IsInconsistentInput(err)
}
