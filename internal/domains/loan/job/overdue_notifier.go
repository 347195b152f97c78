package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/loan/repository"
	"library-backend/pkg/logger"
)

// OverdueNotifierHandler runs the scheduled overdue sweep: it reads
// every open loan past its due date and emits one notification log
// line per loan. Status itself is derived at read time, so the sweep
// never writes to the ledger.
type OverdueNotifierHandler struct {
	repo       repository.RepositoryInterface
	finePerDay decimal.Decimal
}

// NewOverdueNotifierHandler creates the handler with its dependencies
func NewOverdueNotifierHandler(repo repository.RepositoryInterface, finePerDay decimal.Decimal) *OverdueNotifierHandler {
	return &OverdueNotifierHandler{
		repo:       repo,
		finePerDay: finePerDay,
	}
}

// ProcessTask handles the overdue sweep task.
// The payload is empty; the sweep always covers every overdue loan.
func (h *OverdueNotifierHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	now := time.Now()

	loans, err := h.repo.ListOverdue(ctx, now)
	if err != nil {
		// Database error, let asynq retry
		logger.Error("OverdueSweep: failed to list overdue loans", err)
		return err
	}

	for i := range loans {
		l := &loans[i]
		logger.Warn("OverdueSweep: loan overdue", map[string]interface{}{
			"loan_id":   l.ID,
			"book_id":   l.BookID,
			"user_id":   l.UserID,
			"due_date":  l.DueDate,
			"days_late": l.DaysLate(now),
			"fine":      l.FineAt(now, h.finePerDay).String(),
		})
	}

	logger.Info("OverdueSweep: completed", map[string]interface{}{
		"overdue_count": len(loans),
	})

	return nil
}
