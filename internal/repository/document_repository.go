package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByRecord returns documents attached to one record via the (kind, id) key
func (r *DocumentRepository) ListByRecord(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Where("record_kind = ? AND record_id = ?", kind, recordID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Document{}, "id = ?", id).Error
}
