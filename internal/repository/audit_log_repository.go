package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

// AuditLogFilter represents filter options for querying audit logs
type AuditLogFilter struct {
	UserID     string
	Action     *domain.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	StartTime  *time.Time
	EndTime    *time.Time
	RequestID  string
}

// AuditLogRepository handles audit log data access
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create inserts a new audit log entry (append-only - no updates allowed)
func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List retrieves audit logs with pagination and optional filters
func (r *AuditLogRepository) List(ctx context.Context, filter *AuditLogFilter, page, pageSize int) ([]domain.AuditLog, int64, error) {
	var logs []domain.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.AuditLog{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("performed_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// ListByEntity retrieves audit logs for a specific entity
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("performed_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// DeleteOlderThan removes audit logs older than a cutoff (retention policy).
// Intended for scheduled cleanup jobs only.
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("performed_at < ?", before).
		Delete(&domain.AuditLog{})
	return result.RowsAffected, result.Error
}

// applyFilters applies optional filters to the query
func (r *AuditLogRepository) applyFilters(query *gorm.DB, filter *AuditLogFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	if filter.StartTime != nil {
		query = query.Where("performed_at >= ?", *filter.StartTime)
	}

	if filter.EndTime != nil {
		query = query.Where("performed_at <= ?", *filter.EndTime)
	}

	if filter.RequestID != "" {
		query = query.Where("request_id = ?", filter.RequestID)
	}

	return query
}
