package jobs

import (
	"context"
	"time"

	"github.com/lucerne-re/policy-api/internal/domain"
	"go.uber.org/zap"
)

// OverdueCashCallsJobName is the name of the overdue cash call watch job
const OverdueCashCallsJobName = "overdue_cash_calls"

// OverdueCashCallLister lists ISSUED cash calls past their due date
type OverdueCashCallLister interface {
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.CashCallDTO, error)
}

// OverdueCashCallsJob logs every cash call past due so collections can chase it
type OverdueCashCallsJob struct {
	cashCalls OverdueCashCallLister
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOverdueCashCallsJob creates a new overdue watch job
func NewOverdueCashCallsJob(cashCalls OverdueCashCallLister, timeout time.Duration, logger *zap.Logger) *OverdueCashCallsJob {
	return &OverdueCashCallsJob{
		cashCalls: cashCalls,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run executes one overdue sweep. Called by the scheduler.
func (j *OverdueCashCallsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	calls, err := j.cashCalls.ListOverdue(ctx, time.Now())
	if err != nil {
		j.logger.Error("overdue cash call sweep failed", zap.Error(err))
		return
	}

	if len(calls) == 0 {
		return
	}

	total := 0.0
	for _, call := range calls {
		total += call.CallAmount
		j.logger.Warn("cash call overdue",
			zap.String("call_number", call.CallNumber),
			zap.String("reinsurer", call.ReinsurerName),
			zap.Float64("amount", call.CallAmount),
			zap.String("due_date", call.DueDate))
	}

	j.logger.Warn("overdue cash call sweep completed",
		zap.Int("overdue_count", len(calls)),
		zap.Float64("overdue_total", total))
}

// RegisterOverdueCashCallsJob registers the overdue sweep with the scheduler
func RegisterOverdueCashCallsJob(scheduler *Scheduler, cashCalls OverdueCashCallLister, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewOverdueCashCallsJob(cashCalls, timeout, logger)
	return scheduler.AddJob(OverdueCashCallsJobName, cronExpr, job.Run)
}
