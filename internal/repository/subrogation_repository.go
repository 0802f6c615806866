package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type SubrogationRepository struct {
	db *gorm.DB
}

func NewSubrogationRepository(db *gorm.DB) *SubrogationRepository {
	return &SubrogationRepository{db: db}
}

func (r *SubrogationRepository) Create(ctx context.Context, subrogation *domain.Subrogation) error {
	return r.db.WithContext(ctx).Create(subrogation).Error
}

func (r *SubrogationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subrogation, error) {
	var subrogation domain.Subrogation
	err := r.db.WithContext(ctx).
		Preload("LiableParty").
		First(&subrogation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &subrogation, nil
}

func (r *SubrogationRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]domain.Subrogation, error) {
	var subrogations []domain.Subrogation
	err := r.db.WithContext(ctx).
		Preload("LiableParty").
		Where("claim_id = ?", claimID).
		Order("created_at ASC").
		Find(&subrogations).Error
	return subrogations, err
}

func (r *SubrogationRepository) Update(ctx context.Context, subrogation *domain.Subrogation) error {
	return r.db.WithContext(ctx).Save(subrogation).Error
}
