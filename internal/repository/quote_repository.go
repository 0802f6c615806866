package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("InsurerParty").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListBySubmission returns all quotes for a submission, newest first
func (r *QuoteRepository) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Preload("InsurerParty").
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountAccepted counts ACCEPTED quotes on a submission
func (r *QuoteRepository) CountAccepted(ctx context.Context, submissionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("submission_id = ? AND status = ?", submissionID, domain.QuoteStatusAccepted).
		Count(&count).Error
	return count, err
}

// HasReleasedQuote checks whether a submission has at least one SENT or
// ACCEPTED quote. Moving a submission to QUOTED requires this.
func (r *QuoteRepository) HasReleasedQuote(ctx context.Context, submissionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("submission_id = ? AND status IN ?", submissionID,
			[]domain.QuoteStatus{domain.QuoteStatusSent, domain.QuoteStatusAccepted}).
		Count(&count).Error
	return count > 0, err
}
