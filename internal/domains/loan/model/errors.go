package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ===================================
// DOMAIN ERRORS
// ===================================

var (
	// ErrLoanNotFound is returned when the referenced loan does not exist
	ErrLoanNotFound = errors.New("loan not found")

	// ErrAlreadyReturned is returned when returning or renewing a loan
	// that is already closed. Returned state is terminal; a second
	// return is a caller bug, not a harmless repeat.
	ErrAlreadyReturned = errors.New("loan has already been returned")

	// ErrNotLoanOwner is returned when a user operates on a loan that
	// belongs to someone else
	ErrNotLoanOwner = errors.New("loan belongs to another user")

	// ErrRenewalLimitReached is returned when the configured renewal cap
	// is exhausted. Never raised with an unlimited (zero) cap.
	ErrRenewalLimitReached = errors.New("renewal limit reached for this loan")

	// ErrHasActiveLoans blocks deletion of a book or user that is still
	// referenced by open loans
	ErrHasActiveLoans = errors.New("entity has active loans")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewLoanNotFoundError creates a detailed not found error
func NewLoanNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrLoanNotFound, id)
}

// NewHasActiveLoansError creates a guard error naming the blocked entity
func NewHasActiveLoansError(entity string, id uuid.UUID) error {
	return fmt.Errorf("%w: %s=%s", ErrHasActiveLoans, entity, id)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLoanNotFound)
}

// IsTerminalStateError checks if error is a closed-loan violation
func IsTerminalStateError(err error) bool {
	return errors.Is(err, ErrAlreadyReturned)
}
