package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"library-backend/internal/config"
	bookModel "library-backend/internal/domains/book/model"
	bookRepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	userModel "library-backend/internal/domains/user/model"
	userRepo "library-backend/internal/domains/user/repository"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"
)

type LoanService struct {
	txManager database.TxManager
	loans     repository.RepositoryInterface
	books     bookRepo.RepositoryInterface
	users     userRepo.RepositoryInterface
	cfg       config.LoanConfig

	// now is injected so tests can pin the clock
	now func() time.Time
}

// NewService creates a new loan lifecycle service
func NewService(
	txManager database.TxManager,
	loans repository.RepositoryInterface,
	books bookRepo.RepositoryInterface,
	users userRepo.RepositoryInterface,
	cfg config.LoanConfig,
) ServiceInterface {
	return &LoanService{
		txManager: txManager,
		loans:     loans,
		books:     books,
		users:     users,
		cfg:       cfg,
		now:       time.Now,
	}
}

// NewServiceWithClock creates a loan service with a fixed clock source
func NewServiceWithClock(
	txManager database.TxManager,
	loans repository.RepositoryInterface,
	books bookRepo.RepositoryInterface,
	users userRepo.RepositoryInterface,
	cfg config.LoanConfig,
	now func() time.Time,
) ServiceInterface {
	s := NewService(txManager, loans, books, users, cfg).(*LoanService)
	s.now = now
	return s
}

func (s *LoanService) loanPeriod() time.Duration {
	return time.Duration(s.cfg.PeriodDays) * 24 * time.Hour
}

// Borrow implements ServiceInterface.Borrow
func (s *LoanService) Borrow(ctx context.Context, bookID, userID uuid.UUID) (*model.LoanResponse, error) {
	// Validate both references up front for clean error reporting;
	// the decrement inside the transaction re-checks the book under
	// serialization, so a stale read here cannot oversell a copy.
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, bookModel.NewOutOfStockError(bookID)
	}

	now := s.now()
	loan := &model.Loan{
		ID:           uuid.New(),
		BookID:       bookID,
		UserID:       userID,
		BorrowDate:   now,
		DueDate:      now.Add(s.loanPeriod()),
		ReturnDate:   nil,
		RenewalCount: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Decrement first: if the last copy was claimed since the check
	// above, the transaction aborts before a loan row ever exists.
	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.books.DecrementAvailable(ctx, tx, bookID); err != nil {
			return err
		}
		return s.loans.Create(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}

	// Only after commit: invalidating inside the transaction would let a
	// concurrent read re-cache the pre-commit copy count
	s.books.InvalidateCache(ctx, bookID)

	logger.Info("Loan created", map[string]interface{}{
		"loan_id":  loan.ID,
		"book_id":  bookID,
		"user_id":  userID,
		"due_date": loan.DueDate,
	})

	resp := loan.ToResponse(now, s.cfg.FinePerDay)
	return &resp, nil
}

// Return implements ServiceInterface.Return
func (s *LoanService) Return(ctx context.Context, loanID, requesterID uuid.UUID, requesterRole string) (*model.LoanResponse, error) {
	existing, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	// Students may only return their own loans; librarians any
	if requesterRole != userModel.RoleLibrarian && existing.UserID != requesterID {
		return nil, model.ErrNotLoanOwner
	}

	now := s.now()
	var returned *model.Loan

	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		// The conditional update inside MarkReturned is the real
		// terminal-state check; the read above was only for ownership
		loan, err := s.loans.MarkReturned(ctx, tx, loanID, now)
		if err != nil {
			return err
		}
		returned = loan

		if err := s.books.IncrementAvailable(ctx, tx, loan.BookID); err != nil {
			// A capacity overflow here means the ledger and catalog
			// disagree - surface it loudly, never swallow it
			logger.Error("Catalog/ledger invariant violation on return", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.books.InvalidateCache(ctx, returned.BookID)

	logger.Info("Loan returned", map[string]interface{}{
		"loan_id":   loanID,
		"book_id":   returned.BookID,
		"days_late": returned.DaysLate(now),
	})

	resp := returned.ToResponse(now, s.cfg.FinePerDay)
	return &resp, nil
}

// Renew implements ServiceInterface.Renew
func (s *LoanService) Renew(ctx context.Context, loanID, requesterID uuid.UUID, requesterRole string) (*model.LoanResponse, error) {
	existing, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if requesterRole != userModel.RoleLibrarian && existing.UserID != requesterID {
		return nil, model.ErrNotLoanOwner
	}

	// Due date restarts from now, not from the old due date; an overdue
	// loan becomes current again
	now := s.now()
	renewed, err := s.loans.Renew(ctx, loanID, now.Add(s.loanPeriod()), s.cfg.RenewalLimit)
	if err != nil {
		return nil, err
	}

	logger.Info("Loan renewed", map[string]interface{}{
		"loan_id":       loanID,
		"new_due_date":  renewed.DueDate,
		"renewal_count": renewed.RenewalCount,
	})

	resp := renewed.ToResponse(now, s.cfg.FinePerDay)
	return &resp, nil
}

// ListOpenLoans implements ServiceInterface.ListOpenLoans
func (s *LoanService) ListOpenLoans(ctx context.Context, userID uuid.UUID) (*model.ListLoansResponse, error) {
	loans, err := s.loans.ListOpenByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(loans), nil
}

// ListHistory implements ServiceInterface.ListHistory
func (s *LoanService) ListHistory(ctx context.Context, userID uuid.UUID) (*model.ListLoansResponse, error) {
	loans, err := s.loans.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(loans), nil
}

// ListOpenLoansForBook implements ServiceInterface.ListOpenLoansForBook
func (s *LoanService) ListOpenLoansForBook(ctx context.Context, bookID uuid.UUID) (*model.ListLoansResponse, error) {
	loans, err := s.loans.ListOpenByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.toListResponse(loans), nil
}

// GuardBookDeletion implements ServiceInterface.GuardBookDeletion
func (s *LoanService) GuardBookDeletion(ctx context.Context, bookID uuid.UUID) error {
	hasOpen, err := s.loans.HasOpenLoansForBook(ctx, bookID)
	if err != nil {
		return err
	}
	if hasOpen {
		return model.NewHasActiveLoansError("book_id", bookID)
	}
	return nil
}

// GuardUserDeletion implements ServiceInterface.GuardUserDeletion
func (s *LoanService) GuardUserDeletion(ctx context.Context, userID uuid.UUID) error {
	hasOpen, err := s.loans.HasOpenLoansForUser(ctx, userID)
	if err != nil {
		return err
	}
	if hasOpen {
		return model.NewHasActiveLoansError("user_id", userID)
	}
	return nil
}

func (s *LoanService) toListResponse(loans []model.Loan) *model.ListLoansResponse {
	now := s.now()
	return &model.ListLoansResponse{
		Loans: model.ToResponseList(loans, now, s.cfg.FinePerDay),
		Total: len(loans),
	}
}
