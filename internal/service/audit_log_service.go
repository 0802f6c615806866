package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/auth"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService records the request audit trail
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// LogEntry is the input for one audit record
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	Method     string
	Path       string
	StatusCode int
}

// Log writes one audit record, picking up the actor from the context and the
// client details from the request. Failures are logged, never surfaced: an
// audit miss must not fail the request it describes.
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) {
	auditLog := &domain.AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Method:      entry.Method,
		Path:        entry.Path,
		StatusCode:  entry.StatusCode,
		PerformedAt: time.Now(),
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		auditLog.UserID = userCtx.UserID.String()
		auditLog.UserName = userCtx.DisplayName
	}

	if r != nil {
		auditLog.IPAddress = s.getClientIP(r)
		auditLog.RequestID = r.Header.Get("X-Request-ID")
		if auditLog.Method == "" {
			auditLog.Method = r.Method
		}
		if auditLog.Path == "" {
			auditLog.Path = r.URL.Path
		}
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err))
	}
}

// AuditLogQueryParams represents query parameters for listing audit logs
type AuditLogQueryParams struct {
	UserID     string
	Action     *domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	StartTime  *time.Time
	EndTime    *time.Time
	Page       int
	PageSize   int
}

// List retrieves audit logs with filters
func (s *AuditLogService) List(ctx context.Context, params AuditLogQueryParams) ([]domain.AuditLog, int64, error) {
	filter := &repository.AuditLogFilter{
		UserID:     params.UserID,
		Action:     params.Action,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		StartTime:  params.StartTime,
		EndTime:    params.EndTime,
	}

	return s.auditRepo.List(ctx, filter, params.Page, params.PageSize)
}

// GetByEntity retrieves the audit trail of one entity
func (s *AuditLogService) GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]domain.AuditLog, error) {
	return s.auditRepo.ListByEntity(ctx, entityType, entityID, limit)
}

// CleanupOldLogs removes logs older than the retention period
func (s *AuditLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	before := time.Now().AddDate(0, 0, -retentionDays)
	count, err := s.auditRepo.DeleteOlderThan(ctx, before)
	if err != nil {
		s.logger.Error("failed to cleanup old audit logs",
			zap.Int("retention_days", retentionDays),
			zap.Error(err))
		return 0, err
	}

	if count > 0 {
		s.logger.Info("cleaned up old audit logs",
			zap.Int64("deleted_count", count),
			zap.Int("retention_days", retentionDays))
	}

	return count, nil
}

// getClientIP extracts the client IP from the request
func (s *AuditLogService) getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
