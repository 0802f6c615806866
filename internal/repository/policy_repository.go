package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) Create(ctx context.Context, policy *domain.Policy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

func (r *PolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Policy, error) {
	var policy domain.Policy
	err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByIDWithDetails returns a policy with the full owned graph eager-loaded:
// coverages, assets (with locations and details), claims, coinsurers and
// treaties (with ordered layers and participants). This is the one deliberate
// wide load; everything else fetches narrowly.
func (r *PolicyRepository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.Policy, error) {
	var policy domain.Policy
	err := r.db.WithContext(ctx).
		Preload("Quote").
		Preload("Coverages").
		Preload("Assets").
		Preload("Assets.Locations").
		Preload("Assets.Details").
		Preload("Claims").
		Preload("Insurers").
		Preload("Insurers.InsurerParty").
		Preload("Treaties").
		Preload("Treaties.Layers", func(db *gorm.DB) *gorm.DB {
			return db.Order("reinsurance_layers.layer_order ASC")
		}).
		Preload("Treaties.Layers.Participants").
		Preload("Treaties.Layers.Participants.ReinsurerParty").
		First(&policy, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *PolicyRepository) GetByNumber(ctx context.Context, policyNumber string) (*domain.Policy, error) {
	var policy domain.Policy
	err := r.db.WithContext(ctx).First(&policy, "policy_number = ?", policyNumber).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// GetByQuote returns the policy bound from a quote, if any
func (r *PolicyRepository) GetByQuote(ctx context.Context, quoteID uuid.UUID) (*domain.Policy, error) {
	var policy domain.Policy
	err := r.db.WithContext(ctx).First(&policy, "quote_id = ?", quoteID).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *PolicyRepository) List(ctx context.Context, page, pageSize int, status *domain.PolicyStatus) ([]domain.Policy, int64, error) {
	var policies []domain.Policy
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Policy{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("policy_number").
		Offset(offset).
		Limit(pageSize).
		Find(&policies).Error

	return policies, total, err
}

// Update saves a policy guarded by the version the caller read
func (r *PolicyRepository) Update(ctx context.Context, policy *domain.Policy) error {
	currentVersion := policy.Version
	policy.Version++

	result := r.db.WithContext(ctx).
		Model(&domain.Policy{}).
		Where("id = ? AND version = ?", policy.ID, currentVersion).
		Select("status", "effective_date", "expiration_date", "version", "updated_at").
		Updates(policy)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a policy. Owned children (coverages, assets, claims,
// coinsurers, treaties) go with it via FK cascade.
func (r *PolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Policy{}, "id = ?", id).Error
}

// Coverage methods

func (r *PolicyRepository) AddCoverage(ctx context.Context, coverage *domain.Coverage) error {
	return r.db.WithContext(ctx).Create(coverage).Error
}

func (r *PolicyRepository) ListCoverages(ctx context.Context, policyID uuid.UUID) ([]domain.Coverage, error) {
	var coverages []domain.Coverage
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("coverage_type").
		Find(&coverages).Error
	return coverages, err
}
