package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	userModel "library-backend/internal/domains/user/model"
	"library-backend/pkg/database"
)

// =====================================================
// MOCKS
// =====================================================

// fakeTxManager runs the function directly; the repositories under
// test are mocks, so no real transaction is needed.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

// recordingTxManager additionally records when the wrapped function has
// completed successfully, standing in for the commit boundary.
type recordingTxManager struct {
	committed bool
}

func (f *recordingTxManager) WithTx(ctx context.Context, fn database.TxFunc) error {
	if err := fn(nil); err != nil {
		return err
	}
	f.committed = true
	return nil
}

type mockLoanRepo struct {
	CreateFunc              func(ctx context.Context, tx pgx.Tx, loan *model.Loan) error
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	MarkReturnedFunc        func(ctx context.Context, tx pgx.Tx, loanID uuid.UUID, returnedAt time.Time) (*model.Loan, error)
	RenewFunc               func(ctx context.Context, loanID uuid.UUID, dueDate time.Time, renewalLimit int) (*model.Loan, error)
	ListOpenByUserFunc      func(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)
	ListByUserFunc          func(ctx context.Context, userID uuid.UUID) ([]model.Loan, error)
	ListOpenByBookFunc      func(ctx context.Context, bookID uuid.UUID) ([]model.Loan, error)
	ListOverdueFunc         func(ctx context.Context, asOf time.Time) ([]model.Loan, error)
	HasOpenLoansForBookFunc func(ctx context.Context, bookID uuid.UUID) (bool, error)
	HasOpenLoansForUserFunc func(ctx context.Context, userID uuid.UUID) (bool, error)
}

func (m *mockLoanRepo) Create(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
	return m.CreateFunc(ctx, tx, loan)
}

func (m *mockLoanRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockLoanRepo) MarkReturned(ctx context.Context, tx pgx.Tx, loanID uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
	return m.MarkReturnedFunc(ctx, tx, loanID, returnedAt)
}

func (m *mockLoanRepo) Renew(ctx context.Context, loanID uuid.UUID, dueDate time.Time, renewalLimit int) (*model.Loan, error) {
	return m.RenewFunc(ctx, loanID, dueDate, renewalLimit)
}

func (m *mockLoanRepo) ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return m.ListOpenByUserFunc(ctx, userID)
}

func (m *mockLoanRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Loan, error) {
	return m.ListByUserFunc(ctx, userID)
}

func (m *mockLoanRepo) ListOpenByBook(ctx context.Context, bookID uuid.UUID) ([]model.Loan, error) {
	return m.ListOpenByBookFunc(ctx, bookID)
}

func (m *mockLoanRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
	return m.ListOverdueFunc(ctx, asOf)
}

func (m *mockLoanRepo) HasOpenLoansForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return m.HasOpenLoansForBookFunc(ctx, bookID)
}

func (m *mockLoanRepo) HasOpenLoansForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	return m.HasOpenLoansForUserFunc(ctx, userID)
}

type mockBookRepo struct {
	CreateFunc             func(ctx context.Context, book *bookModel.Book) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)
	ListFunc               func(ctx context.Context, req bookModel.ListBooksRequest) ([]bookModel.Book, int, error)
	UpdateFunc             func(ctx context.Context, book *bookModel.Book) error
	ResizeCopiesFunc       func(ctx context.Context, id uuid.UUID, totalCopies int) (*bookModel.Book, error)
	DeleteFunc             func(ctx context.Context, id uuid.UUID) error
	ExistsFunc             func(ctx context.Context, id uuid.UUID) (bool, error)
	DecrementAvailableFunc func(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error
	IncrementAvailableFunc func(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error
	InvalidateCacheFunc    func(ctx context.Context, bookID uuid.UUID)
}

func (m *mockBookRepo) Create(ctx context.Context, book *bookModel.Book) error {
	return m.CreateFunc(ctx, book)
}

func (m *mockBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockBookRepo) List(ctx context.Context, req bookModel.ListBooksRequest) ([]bookModel.Book, int, error) {
	return m.ListFunc(ctx, req)
}

func (m *mockBookRepo) Update(ctx context.Context, book *bookModel.Book) error {
	return m.UpdateFunc(ctx, book)
}

func (m *mockBookRepo) ResizeCopies(ctx context.Context, id uuid.UUID, totalCopies int) (*bookModel.Book, error) {
	return m.ResizeCopiesFunc(ctx, id, totalCopies)
}

func (m *mockBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockBookRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.ExistsFunc(ctx, id)
}

func (m *mockBookRepo) DecrementAvailable(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	return m.DecrementAvailableFunc(ctx, tx, bookID)
}

func (m *mockBookRepo) IncrementAvailable(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) error {
	return m.IncrementAvailableFunc(ctx, tx, bookID)
}

func (m *mockBookRepo) InvalidateCache(ctx context.Context, bookID uuid.UUID) {
	if m.InvalidateCacheFunc != nil {
		m.InvalidateCacheFunc(ctx, bookID)
	}
}

type mockUserRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*userModel.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *userModel.User) error {
	panic("not implemented")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*userModel.User, error) {
	panic("not implemented")
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	panic("not implemented")
}

func (m *mockUserRepo) List(ctx context.Context, req userModel.ListUsersRequest) ([]userModel.User, int, error) {
	panic("not implemented")
}

func (m *mockUserRepo) Update(ctx context.Context, user *userModel.User) error {
	panic("not implemented")
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	panic("not implemented")
}

// =====================================================
// FIXTURES
// =====================================================

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func testLoanConfig() config.LoanConfig {
	return config.LoanConfig{
		PeriodDays:   14,
		RenewalLimit: 0,
		FinePerDay:   decimal.RequireFromString("0.50"),
	}
}

func newTestService(loans *mockLoanRepo, books *mockBookRepo, users *mockUserRepo) ServiceInterface {
	return NewServiceWithClock(
		&fakeTxManager{},
		loans,
		books,
		users,
		testLoanConfig(),
		func() time.Time { return fixedNow },
	)
}

func availableBook(id uuid.UUID, available int) *bookModel.Book {
	return &bookModel.Book{
		ID:              id,
		Title:           "The Go Programming Language",
		TotalCopies:     3,
		AvailableCopies: available,
	}
}

func activeUser(id uuid.UUID) *userModel.User {
	return &userModel.User{
		ID:       id,
		Email:    "reader@example.com",
		Role:     userModel.RoleStudent,
		IsActive: true,
	}
}

// =====================================================
// BORROW
// =====================================================

func TestBorrow_Success(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()

	var created *model.Loan
	decremented := false

	loans := &mockLoanRepo{
		CreateFunc: func(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
			assert.True(t, decremented, "copy must be claimed before the loan row exists")
			created = loan
			return nil
		},
	}
	books := &mockBookRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
			return availableBook(id, 2), nil
		},
		DecrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			decremented = true
			return nil
		},
	}
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return activeUser(id), nil
		},
	}

	svc := newTestService(loans, books, users)

	resp, err := svc.Borrow(context.Background(), bookID, userID)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, bookID, resp.BookID)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, fixedNow, resp.BorrowDate)
	assert.Equal(t, fixedNow.Add(14*24*time.Hour), resp.DueDate)
	assert.Nil(t, resp.ReturnDate)
	assert.Equal(t, model.StatusBorrowed, resp.Status)
	assert.Equal(t, 0, resp.RenewalCount)
	assert.True(t, resp.Fine.IsZero())
}

func TestBorrow_OutOfStock(t *testing.T) {
	bookID := uuid.New()

	books := &mockBookRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
			return availableBook(id, 0), nil
		},
	}
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return activeUser(id), nil
		},
	}

	svc := newTestService(&mockLoanRepo{}, books, users)

	_, err := svc.Borrow(context.Background(), bookID, uuid.New())
	assert.ErrorIs(t, err, bookModel.ErrOutOfStock)
}

func TestBorrow_LastCopyRace(t *testing.T) {
	// The pre-check saw a copy, but a concurrent borrow claimed it
	// before the transaction ran. The decrement fails and no loan row
	// is written.
	bookID := uuid.New()
	createCalled := false

	loans := &mockLoanRepo{
		CreateFunc: func(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
			createCalled = true
			return nil
		},
	}
	books := &mockBookRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
			return availableBook(id, 1), nil
		},
		DecrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			return bookModel.NewOutOfStockError(id)
		},
	}
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return activeUser(id), nil
		},
	}

	svc := newTestService(loans, books, users)

	_, err := svc.Borrow(context.Background(), bookID, uuid.New())
	assert.ErrorIs(t, err, bookModel.ErrOutOfStock)
	assert.False(t, createCalled)
}

func TestBorrow_UnknownUser(t *testing.T) {
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return nil, userModel.NewUserNotFoundError(id)
		},
	}

	svc := newTestService(&mockLoanRepo{}, &mockBookRepo{}, users)

	_, err := svc.Borrow(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, userModel.ErrUserNotFound)
}

func TestBorrow_CacheInvalidationFollowsCommit(t *testing.T) {
	bookID := uuid.New()
	txm := &recordingTxManager{}
	invalidations := 0

	loans := &mockLoanRepo{
		CreateFunc: func(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
			return nil
		},
	}
	books := &mockBookRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
			return availableBook(id, 2), nil
		},
		DecrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			return nil
		},
		InvalidateCacheFunc: func(ctx context.Context, id uuid.UUID) {
			// Invalidating before commit would let a concurrent read
			// re-cache the pre-commit copy count
			assert.True(t, txm.committed, "cache invalidation must wait for the commit")
			assert.Equal(t, bookID, id)
			invalidations++
		},
	}
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return activeUser(id), nil
		},
	}

	svc := NewServiceWithClock(txm, loans, books, users, testLoanConfig(), func() time.Time { return fixedNow })

	_, err := svc.Borrow(context.Background(), bookID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, invalidations)
}

func TestBorrow_FailedTransactionLeavesCacheAlone(t *testing.T) {
	invalidations := 0

	books := &mockBookRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
			return availableBook(id, 1), nil
		},
		DecrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			return bookModel.NewOutOfStockError(id)
		},
		InvalidateCacheFunc: func(ctx context.Context, id uuid.UUID) {
			invalidations++
		},
	}
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return activeUser(id), nil
		},
	}

	svc := newTestService(&mockLoanRepo{}, books, users)

	_, err := svc.Borrow(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, bookModel.ErrOutOfStock)
	assert.Equal(t, 0, invalidations)
}

// =====================================================
// RETURN
// =====================================================

func TestReturn_Success(t *testing.T) {
	loanID := uuid.New()
	bookID := uuid.New()
	userID := uuid.New()

	open := &model.Loan{
		ID:         loanID,
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: fixedNow.Add(-5 * 24 * time.Hour),
		DueDate:    fixedNow.Add(9 * 24 * time.Hour),
	}

	incremented := false

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return open, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
			closed := *open
			closed.ReturnDate = &returnedAt
			return &closed, nil
		},
	}
	books := &mockBookRepo{
		IncrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			assert.Equal(t, bookID, id)
			incremented = true
			return nil
		},
	}

	svc := newTestService(loans, books, &mockUserRepo{})

	resp, err := svc.Return(context.Background(), loanID, userID, userModel.RoleStudent)
	require.NoError(t, err)

	assert.True(t, incremented, "the freed copy must go back on the shelf")
	assert.Equal(t, model.StatusReturned, resp.Status)
	require.NotNil(t, resp.ReturnDate)
	assert.Equal(t, fixedNow, *resp.ReturnDate)
	assert.Equal(t, 0, resp.DaysLate)
}

func TestReturn_NotOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: id, UserID: owner, DueDate: fixedNow.Add(24 * time.Hour)}, nil
		},
	}

	svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

	_, err := svc.Return(context.Background(), uuid.New(), stranger, userModel.RoleStudent)
	assert.ErrorIs(t, err, model.ErrNotLoanOwner)
}

func TestReturn_LibrarianCanReturnAnyLoan(t *testing.T) {
	owner := uuid.New()
	librarian := uuid.New()

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: id, UserID: owner, DueDate: fixedNow.Add(24 * time.Hour)}, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
			return &model.Loan{ID: id, UserID: owner, DueDate: fixedNow.Add(24 * time.Hour), ReturnDate: &returnedAt}, nil
		},
	}
	books := &mockBookRepo{
		IncrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			return nil
		},
	}

	svc := newTestService(loans, books, &mockUserRepo{})

	_, err := svc.Return(context.Background(), uuid.New(), librarian, userModel.RoleLibrarian)
	assert.NoError(t, err)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	userID := uuid.New()
	incrementCalled := false

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			returned := fixedNow.Add(-24 * time.Hour)
			return &model.Loan{ID: id, UserID: userID, ReturnDate: &returned}, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
			return nil, model.ErrAlreadyReturned
		},
	}
	books := &mockBookRepo{
		IncrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			incrementCalled = true
			return nil
		},
	}

	svc := newTestService(loans, books, &mockUserRepo{})

	_, err := svc.Return(context.Background(), uuid.New(), userID, userModel.RoleStudent)
	assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	assert.False(t, incrementCalled, "a second return must never free a second copy")
}

func TestReturn_CapacityViolationSurfaces(t *testing.T) {
	// The increment failing after a successful terminal transition means
	// the ledger and catalog disagree. The transaction must abort and
	// the error must reach the caller, never be swallowed.
	userID := uuid.New()
	bookID := uuid.New()
	invalidations := 0

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: id, BookID: bookID, UserID: userID, DueDate: fixedNow.Add(24 * time.Hour)}, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
			return &model.Loan{ID: id, BookID: bookID, UserID: userID, ReturnDate: &returnedAt}, nil
		},
	}
	books := &mockBookRepo{
		IncrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			return fmt.Errorf("%w: book_id=%s", bookModel.ErrCapacityExceeded, id)
		},
		InvalidateCacheFunc: func(ctx context.Context, id uuid.UUID) {
			invalidations++
		},
	}

	svc := newTestService(loans, books, &mockUserRepo{})

	_, err := svc.Return(context.Background(), uuid.New(), userID, userModel.RoleStudent)
	assert.ErrorIs(t, err, bookModel.ErrCapacityExceeded)
	assert.Equal(t, 0, invalidations, "an aborted return must not touch the cache")
}

func TestReturn_CacheInvalidationFollowsCommit(t *testing.T) {
	userID := uuid.New()
	bookID := uuid.New()
	txm := &recordingTxManager{}
	invalidations := 0

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: id, BookID: bookID, UserID: userID, DueDate: fixedNow.Add(24 * time.Hour)}, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
			return &model.Loan{ID: id, BookID: bookID, UserID: userID, ReturnDate: &returnedAt}, nil
		},
	}
	books := &mockBookRepo{
		IncrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			return nil
		},
		InvalidateCacheFunc: func(ctx context.Context, id uuid.UUID) {
			assert.True(t, txm.committed, "cache invalidation must wait for the commit")
			assert.Equal(t, bookID, id)
			invalidations++
		},
	}

	svc := NewServiceWithClock(txm, loans, books, &mockUserRepo{}, testLoanConfig(), func() time.Time { return fixedNow })

	_, err := svc.Return(context.Background(), uuid.New(), userID, userModel.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 1, invalidations)
}

// =====================================================
// RENEW
// =====================================================

func TestRenew_ExtendsFromNowWithoutTouchingInventory(t *testing.T) {
	loanID := uuid.New()
	userID := uuid.New()

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			// Overdue loan: renewal should still work and make it current
			return &model.Loan{ID: id, UserID: userID, DueDate: fixedNow.Add(-3 * 24 * time.Hour)}, nil
		},
		RenewFunc: func(ctx context.Context, id uuid.UUID, dueDate time.Time, renewalLimit int) (*model.Loan, error) {
			assert.Equal(t, fixedNow.Add(14*24*time.Hour), dueDate, "due date restarts from now, not from the old due date")
			assert.Equal(t, 0, renewalLimit)
			return &model.Loan{ID: id, UserID: userID, DueDate: dueDate, RenewalCount: 1}, nil
		},
	}

	// Inventory methods are nil: any call would panic the test
	svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

	resp, err := svc.Renew(context.Background(), loanID, userID, userModel.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, model.StatusBorrowed, resp.Status)
	assert.Equal(t, 1, resp.RenewalCount)
	assert.Equal(t, 0, resp.DaysLate)
}

func TestRenew_NotOwner(t *testing.T) {
	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: id, UserID: uuid.New()}, nil
		},
	}

	svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

	_, err := svc.Renew(context.Background(), uuid.New(), uuid.New(), userModel.RoleStudent)
	assert.ErrorIs(t, err, model.ErrNotLoanOwner)
}

func TestRenew_LimitReached(t *testing.T) {
	userID := uuid.New()

	loans := &mockLoanRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			return &model.Loan{ID: id, UserID: userID, RenewalCount: 2}, nil
		},
		RenewFunc: func(ctx context.Context, id uuid.UUID, dueDate time.Time, renewalLimit int) (*model.Loan, error) {
			return nil, model.ErrRenewalLimitReached
		},
	}

	svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

	_, err := svc.Renew(context.Background(), uuid.New(), userID, userModel.RoleStudent)
	assert.ErrorIs(t, err, model.ErrRenewalLimitReached)
}

// =====================================================
// DELETION GUARDS
// =====================================================

func TestGuardBookDeletion(t *testing.T) {
	t.Run("blocked while open loans exist", func(t *testing.T) {
		loans := &mockLoanRepo{
			HasOpenLoansForBookFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return true, nil
			},
		}
		svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

		err := svc.GuardBookDeletion(context.Background(), uuid.New())
		assert.ErrorIs(t, err, model.ErrHasActiveLoans)
	})

	t.Run("allowed once every loan is closed", func(t *testing.T) {
		loans := &mockLoanRepo{
			HasOpenLoansForBookFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
				return false, nil
			},
		}
		svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

		assert.NoError(t, svc.GuardBookDeletion(context.Background(), uuid.New()))
	})
}

func TestGuardUserDeletion(t *testing.T) {
	loans := &mockLoanRepo{
		HasOpenLoansForUserFunc: func(ctx context.Context, id uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(loans, &mockBookRepo{}, &mockUserRepo{})

	err := svc.GuardUserDeletion(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrHasActiveLoans)
}

// =====================================================
// FULL LIFECYCLE
// =====================================================

// TestLifecycle_ExhaustAndRecover walks the classic sequence: borrow a
// two-copy title until it runs out, fail the next borrow, then return
// one copy and borrow again.
func TestLifecycle_ExhaustAndRecover(t *testing.T) {
	bookID := uuid.New()
	userID := uuid.New()

	available := 2
	ledger := map[uuid.UUID]*model.Loan{}

	loans := &mockLoanRepo{
		CreateFunc: func(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
			cp := *loan
			ledger[loan.ID] = &cp
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
			l, ok := ledger[id]
			if !ok {
				return nil, model.NewLoanNotFoundError(id)
			}
			cp := *l
			return &cp, nil
		},
		MarkReturnedFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time) (*model.Loan, error) {
			l := ledger[id]
			if l.ReturnDate != nil {
				return nil, model.ErrAlreadyReturned
			}
			l.ReturnDate = &returnedAt
			cp := *l
			return &cp, nil
		},
	}
	books := &mockBookRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
			return availableBook(id, available), nil
		},
		DecrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			if available == 0 {
				return bookModel.NewOutOfStockError(id)
			}
			available--
			return nil
		},
		IncrementAvailableFunc: func(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
			available++
			return nil
		},
	}
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
			return activeUser(id), nil
		},
	}

	svc := newTestService(loans, books, users)
	ctx := context.Background()

	// Borrow both copies
	first, err := svc.Borrow(ctx, bookID, userID)
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, bookID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, available)

	// Third borrow fails, nothing changes
	_, err = svc.Borrow(ctx, bookID, userID)
	assert.ErrorIs(t, err, bookModel.ErrOutOfStock)
	assert.Equal(t, 0, available)
	assert.Len(t, ledger, 2)

	// Returning one copy reopens the title
	_, err = svc.Return(ctx, first.ID, userID, userModel.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, 1, available)

	_, err = svc.Borrow(ctx, bookID, userID)
	assert.NoError(t, err)
	assert.Equal(t, 0, available)
}
