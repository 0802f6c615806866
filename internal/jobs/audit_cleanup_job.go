package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditCleanupJobName is the name of the audit log retention job
const AuditCleanupJobName = "audit_cleanup"

// AuditLogCleaner removes audit logs older than the retention period
type AuditLogCleaner interface {
	CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error)
}

// AuditCleanupJob enforces the audit log retention policy
type AuditCleanupJob struct {
	cleaner       AuditLogCleaner
	retentionDays int
	timeout       time.Duration
	logger        *zap.Logger
}

// NewAuditCleanupJob creates a new audit cleanup job
func NewAuditCleanupJob(cleaner AuditLogCleaner, retentionDays int, timeout time.Duration, logger *zap.Logger) *AuditCleanupJob {
	return &AuditCleanupJob{
		cleaner:       cleaner,
		retentionDays: retentionDays,
		timeout:       timeout,
		logger:        logger,
	}
}

// Run executes one retention pass. Called by the scheduler.
func (j *AuditCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	deleted, err := j.cleaner.CleanupOldLogs(ctx, j.retentionDays)
	if err != nil {
		j.logger.Error("audit cleanup job failed", zap.Error(err))
		return
	}

	if deleted > 0 {
		j.logger.Info("audit cleanup job completed",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", j.retentionDays))
	}
}

// RegisterAuditCleanupJob registers the retention job with the scheduler
func RegisterAuditCleanupJob(scheduler *Scheduler, cleaner AuditLogCleaner, logger *zap.Logger, cronExpr string, retentionDays int, timeout time.Duration) error {
	job := NewAuditCleanupJob(cleaner, retentionDays, timeout, logger)
	return scheduler.AddJob(AuditCleanupJobName, cronExpr, job.Run)
}
