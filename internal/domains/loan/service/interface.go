package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
)

// ServiceInterface is the loan lifecycle engine: the only component
// allowed to create a loan or close one, and the owner of the
// catalog/ledger consistency invariant.
type ServiceInterface interface {
	// Borrow checks out one copy of a book to a user. The loan row and
	// the copy-count decrement commit together or not at all.
	Borrow(ctx context.Context, bookID, userID uuid.UUID) (*model.LoanResponse, error)

	// Return closes an open loan and frees its copy. Terminal: a second
	// return fails with ErrAlreadyReturned.
	Return(ctx context.Context, loanID, requesterID uuid.UUID, requesterRole string) (*model.LoanResponse, error)

	// Renew extends an open loan's due date from now, leaving the
	// catalog untouched
	Renew(ctx context.Context, loanID, requesterID uuid.UUID, requesterRole string) (*model.LoanResponse, error)

	ListOpenLoans(ctx context.Context, userID uuid.UUID) (*model.ListLoansResponse, error)
	ListHistory(ctx context.Context, userID uuid.UUID) (*model.ListLoansResponse, error)
	ListOpenLoansForBook(ctx context.Context, bookID uuid.UUID) (*model.ListLoansResponse, error)

	// GuardBookDeletion fails with ErrHasActiveLoans while the book has
	// open loans. Called by the catalog service before deletion.
	GuardBookDeletion(ctx context.Context, bookID uuid.UUID) error

	// GuardUserDeletion fails with ErrHasActiveLoans while the user
	// holds open loans
	GuardUserDeletion(ctx context.Context, userID uuid.UUID) error
}
