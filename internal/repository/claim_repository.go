package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	var claim domain.Claim
	err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetByIDWithDetails returns a claim with its log, ledger and subrogations loaded
func (r *ClaimRepository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Claim, error) {
	var claim domain.Claim
	err := r.db.WithContext(ctx).
		Preload("Policy").
		Preload("ReportedBy").
		Preload("LogEntries", func(db *gorm.DB) *gorm.DB {
			return db.Order("claim_detail.logged_at ASC")
		}).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("financial_transactions.transaction_date ASC")
		}).
		Preload("Subrogations").
		Preload("Subrogations.LiableParty").
		First(&claim, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *ClaimRepository) GetByNumber(ctx context.Context, claimNumber string) (*domain.Claim, error) {
	var claim domain.Claim
	err := r.db.WithContext(ctx).First(&claim, "claim_number = ?", claimNumber).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *ClaimRepository) ListByPolicy(ctx context.Context, policyID uuid.UUID) ([]domain.Claim, error) {
	var claims []domain.Claim
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("reported_date DESC").
		Find(&claims).Error
	return claims, err
}

func (r *ClaimRepository) List(ctx context.Context, page, pageSize int, status *domain.ClaimStatus) ([]domain.Claim, int64, error) {
	var claims []domain.Claim
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Claim{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("reported_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&claims).Error

	return claims, total, err
}

func (r *ClaimRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ClaimStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Claim{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Log entry methods. Entries are append-only; there is no update or delete.

func (r *ClaimRepository) AddLogEntry(ctx context.Context, entry *domain.ClaimLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ClaimRepository) ListLogEntries(ctx context.Context, claimID uuid.UUID) ([]domain.ClaimLogEntry, error) {
	var entries []domain.ClaimLogEntry
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("logged_at ASC").
		Find(&entries).Error
	return entries, err
}
