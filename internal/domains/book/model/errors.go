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
	// ErrBookNotFound is returned when the referenced book does not exist
	ErrBookNotFound = errors.New("book not found")

	// ErrISBNAlreadyExists is returned when creating a book with a duplicate ISBN
	ErrISBNAlreadyExists = errors.New("a book with this ISBN already exists")

	// ErrOutOfStock is returned when borrowing a book with no available copies
	ErrOutOfStock = errors.New("no copies available to borrow")

	// ErrCapacityExceeded is returned when a return would push available copies
	// above total copies. Should be unreachable; raising it means the
	// catalog/ledger invariant is broken elsewhere.
	ErrCapacityExceeded = errors.New("available copies would exceed total copies")

	// ErrInvalidTotalCopies is returned when an edit would set total copies
	// below the number of copies currently out on loan
	ErrInvalidTotalCopies = errors.New("total copies cannot be lower than the number of open loans")
)

// ===================================
// ERROR HELPERS
// ===================================

// NewBookNotFoundError creates a detailed not found error
func NewBookNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrBookNotFound, id)
}

// NewOutOfStockError creates an out of stock error with book details
func NewOutOfStockError(id uuid.UUID) error {
	return fmt.Errorf("%w: book_id=%s", ErrOutOfStock, id)
}

// NewInvalidTotalCopiesError creates an error with the offending counts
func NewInvalidTotalCopiesError(requested, openLoans int) error {
	return fmt.Errorf("%w: requested=%d, open_loans=%d", ErrInvalidTotalCopies, requested, openLoans)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

// IsOutOfStockError checks if error is an out of stock error
func IsOutOfStockError(err error) bool {
	return errors.Is(err, ErrOutOfStock)
}
