package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WarehouseExportJobName is the name of the warehouse export job
const WarehouseExportJobName = "warehouse_export"

// DefaultExportLookback is how far back each run looks for touched cash calls.
// Slightly more than the hourly schedule so runs overlap rather than gap.
const DefaultExportLookback = 65 * time.Minute

// CashCallExportService pushes cash-call bordereau rows to the warehouse.
// The interface keeps the job decoupled from the service package.
type CashCallExportService interface {
	ExportCashCallsSince(ctx context.Context, since time.Time) (exported int, failed int, err error)
}

// WarehouseExportJob exports recently touched cash calls to the reporting warehouse
type WarehouseExportJob struct {
	exportService CashCallExportService
	lookback      time.Duration
	timeout       time.Duration
	logger        *zap.Logger
}

// NewWarehouseExportJob creates a new warehouse export job
func NewWarehouseExportJob(exportService CashCallExportService, lookback, timeout time.Duration, logger *zap.Logger) *WarehouseExportJob {
	return &WarehouseExportJob{
		exportService: exportService,
		lookback:      lookback,
		timeout:       timeout,
		logger:        logger,
	}
}

// Run executes one export pass. Called by the scheduler.
func (j *WarehouseExportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	since := start.Add(-j.lookback)

	exported, failed, err := j.exportService.ExportCashCallsSince(ctx, since)
	if err != nil {
		j.logger.Error("warehouse export job failed",
			zap.Int("exported", exported),
			zap.Int("failed", failed),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}

	if exported > 0 {
		j.logger.Info("warehouse export job completed",
			zap.Int("exported", exported),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterWarehouseExportJob registers the export job with the scheduler
func RegisterWarehouseExportJob(scheduler *Scheduler, exportService CashCallExportService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewWarehouseExportJob(exportService, DefaultExportLookback, timeout, logger)
	return scheduler.AddJob(WarehouseExportJobName, cronExpr, job.Run)
}
