package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// LOAN STATUS
// =====================================================
// Status is derived from (DueDate, ReturnDate, now) at read time and
// never stored. A stored flag would go stale the moment "now" passes
// the due date.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusOverdue  Status = "overdue"
	StatusReturned Status = "returned"
)

func (s Status) String() string {
	return string(s)
}

// =====================================================
// ENTITY: Loan
// =====================================================
// One row per borrow event. BorrowDate is immutable, DueDate changes
// only through renewal, ReturnDate is set exactly once and closes the
// loan permanently.
type Loan struct {
	ID     uuid.UUID `json:"id" db:"id"`
	BookID uuid.UUID `json:"book_id" db:"book_id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	BorrowDate   time.Time  `json:"borrow_date" db:"borrow_date"`
	DueDate      time.Time  `json:"due_date" db:"due_date"`
	ReturnDate   *time.Time `json:"return_date" db:"return_date"`
	RenewalCount int        `json:"renewal_count" db:"renewal_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StatusAt derives the loan status at the given instant.
// Pure function of (DueDate, ReturnDate, at).
func (l *Loan) StatusAt(at time.Time) Status {
	if l.ReturnDate != nil {
		return StatusReturned
	}
	if at.After(l.DueDate) {
		return StatusOverdue
	}
	return StatusBorrowed
}

// IsOpen reports whether the loan has not been returned yet
func (l *Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// effectiveEnd is the instant fines stop accruing: the return time for
// closed loans, the given instant for open ones.
func (l *Loan) effectiveEnd(at time.Time) time.Time {
	if l.ReturnDate != nil {
		return *l.ReturnDate
	}
	return at
}

// DaysLate counts started 24-hour periods past the due date, zero when
// the loan is not late. For returned loans the count is frozen at the
// return time.
func (l *Loan) DaysLate(at time.Time) int {
	end := l.effectiveEnd(at)
	if !end.After(l.DueDate) {
		return 0
	}

	late := end.Sub(l.DueDate)
	days := int(late / (24 * time.Hour))
	if late%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// FineAt computes the fine accrued by the given instant.
// Derived like status, never persisted.
func (l *Loan) FineAt(at time.Time, finePerDay decimal.Decimal) decimal.Decimal {
	days := l.DaysLate(at)
	if days == 0 {
		return decimal.Zero
	}
	return finePerDay.Mul(decimal.NewFromInt(int64(days)))
}
