package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// BORROW REQUEST
// =====================================================
type BorrowRequest struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

// Validate validates BorrowRequest
func (req BorrowRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BookID, validation.Required),
	)
}

// =====================================================
// LOAN RESPONSE
// =====================================================
type LoanResponse struct {
	ID           uuid.UUID       `json:"id"`
	BookID       uuid.UUID       `json:"book_id"`
	UserID       uuid.UUID       `json:"user_id"`
	BorrowDate   time.Time       `json:"borrow_date"`
	DueDate      time.Time       `json:"due_date"`
	ReturnDate   *time.Time      `json:"return_date,omitempty"`
	Status       Status          `json:"status"`
	RenewalCount int             `json:"renewal_count"`
	DaysLate     int             `json:"days_late"`
	Fine         decimal.Decimal `json:"fine"`
}

type ListLoansResponse struct {
	Loans []LoanResponse `json:"loans"`
	Total int            `json:"total"`
}

// ToResponse converts a Loan to its response DTO.
// Status and fine are derived at the given instant.
func (l *Loan) ToResponse(at time.Time, finePerDay decimal.Decimal) LoanResponse {
	return LoanResponse{
		ID:           l.ID,
		BookID:       l.BookID,
		UserID:       l.UserID,
		BorrowDate:   l.BorrowDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       l.StatusAt(at),
		RenewalCount: l.RenewalCount,
		DaysLate:     l.DaysLate(at),
		Fine:         l.FineAt(at, finePerDay),
	}
}

// ToResponseList converts a slice of loans to response DTOs
func ToResponseList(loans []Loan, at time.Time, finePerDay decimal.Decimal) []LoanResponse {
	responses := make([]LoanResponse, 0, len(loans))
	for i := range loans {
		responses = append(responses, loans[i].ToResponse(at, finePerDay))
	}
	return responses
}

// =====================================================
// TASK PAYLOADS
// =====================================================

// NotifyOverdueLoansPayload is the (empty) payload for the scheduled
// overdue sweep task
type NotifyOverdueLoansPayload struct{}
