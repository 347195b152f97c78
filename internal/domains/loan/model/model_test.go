package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestStatusAt(t *testing.T) {
	due := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loan Loan
		at   time.Time
		want Status
	}{
		{
			name: "open loan before due date is borrowed",
			loan: Loan{DueDate: due},
			at:   due.Add(-48 * time.Hour),
			want: StatusBorrowed,
		},
		{
			name: "open loan exactly at due date is still borrowed",
			loan: Loan{DueDate: due},
			at:   due,
			want: StatusBorrowed,
		},
		{
			name: "open loan past due date is overdue",
			loan: Loan{DueDate: due},
			at:   due.Add(time.Minute),
			want: StatusOverdue,
		},
		{
			name: "returned loan is returned regardless of due date",
			loan: Loan{DueDate: due, ReturnDate: timePtr(due.Add(72 * time.Hour))},
			at:   due.Add(100 * 24 * time.Hour),
			want: StatusReturned,
		},
		{
			name: "loan returned before due date is returned, not borrowed",
			loan: Loan{DueDate: due, ReturnDate: timePtr(due.Add(-24 * time.Hour))},
			at:   due.Add(-time.Hour),
			want: StatusReturned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loan.StatusAt(tt.at))
		})
	}
}

func TestStatusAt_RenewalFlipsOverdueBackToBorrowed(t *testing.T) {
	due := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	now := due.Add(5 * 24 * time.Hour)

	loan := Loan{DueDate: due}
	assert.Equal(t, StatusOverdue, loan.StatusAt(now))

	// Renewal moves the due date forward from now
	loan.DueDate = now.Add(14 * 24 * time.Hour)
	loan.RenewalCount++
	assert.Equal(t, StatusBorrowed, loan.StatusAt(now))
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loan Loan
		at   time.Time
		want int
	}{
		{
			name: "not late",
			loan: Loan{DueDate: due},
			at:   due.Add(-time.Hour),
			want: 0,
		},
		{
			name: "exactly on time",
			loan: Loan{DueDate: due},
			at:   due,
			want: 0,
		},
		{
			name: "one minute late counts as one day",
			loan: Loan{DueDate: due},
			at:   due.Add(time.Minute),
			want: 1,
		},
		{
			name: "exactly 24h late is one day",
			loan: Loan{DueDate: due},
			at:   due.Add(24 * time.Hour),
			want: 1,
		},
		{
			name: "24h and one second late starts the second day",
			loan: Loan{DueDate: due},
			at:   due.Add(24*time.Hour + time.Second),
			want: 2,
		},
		{
			name: "returned loan freezes lateness at return time",
			loan: Loan{DueDate: due, ReturnDate: timePtr(due.Add(36 * time.Hour))},
			at:   due.Add(30 * 24 * time.Hour),
			want: 2,
		},
		{
			name: "returned early is never late",
			loan: Loan{DueDate: due, ReturnDate: timePtr(due.Add(-time.Hour))},
			at:   due.Add(10 * 24 * time.Hour),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loan.DaysLate(tt.at))
		})
	}
}

func TestFineAt(t *testing.T) {
	due := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	finePerDay := decimal.RequireFromString("0.50")

	t.Run("no fine while current", func(t *testing.T) {
		loan := Loan{DueDate: due}
		assert.True(t, loan.FineAt(due, finePerDay).IsZero())
	})

	t.Run("fine accrues per started day", func(t *testing.T) {
		loan := Loan{DueDate: due}
		at := due.Add(3*24*time.Hour + time.Hour) // 4th day started

		want := decimal.RequireFromString("2.00")
		assert.True(t, want.Equal(loan.FineAt(at, finePerDay)),
			"want %s, got %s", want, loan.FineAt(at, finePerDay))
	})

	t.Run("fine frozen at return time", func(t *testing.T) {
		loan := Loan{DueDate: due, ReturnDate: timePtr(due.Add(25 * time.Hour))}
		at := due.Add(365 * 24 * time.Hour)

		want := decimal.RequireFromString("1.00")
		assert.True(t, want.Equal(loan.FineAt(at, finePerDay)))
	})
}
