package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"library-backend/internal/config"
	loanModel "library-backend/internal/domains/loan/model"
	"library-backend/internal/shared"
	"library-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerNotifyOverdueLoansJob()
}

// ================================================
// JOB: Notify Overdue Loans
// ================================================
// The sweep only reads: overdue status is derived from due dates at
// query time, so a missed run never corrupts the ledger.
func (s *Scheduler) registerNotifyOverdueLoansJob() error {
	payload, err := json.Marshal(loanModel.NotifyOverdueLoansPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeNotifyOverdueLoans, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.OverdueNotifyCron,
		task,
		asynq.Queue(shared.QueueLoan),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register NotifyOverdueLoans job", err)
		return err
	}

	logger.Info("✓ Registered NotifyOverdueLoans", map[string]interface{}{
		"cron": s.jobConfig.OverdueNotifyCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
