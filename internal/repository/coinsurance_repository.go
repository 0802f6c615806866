package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

// CoinsuranceRepository handles the policy_insurer coinsurance rows
type CoinsuranceRepository struct {
	db *gorm.DB
}

func NewCoinsuranceRepository(db *gorm.DB) *CoinsuranceRepository {
	return &CoinsuranceRepository{db: db}
}

func (r *CoinsuranceRepository) Create(ctx context.Context, insurer *domain.PolicyInsurer) error {
	return r.db.WithContext(ctx).Create(insurer).Error
}

func (r *CoinsuranceRepository) ListByPolicy(ctx context.Context, policyID uuid.UUID) ([]domain.PolicyInsurer, error) {
	var insurers []domain.PolicyInsurer
	err := r.db.WithContext(ctx).
		Preload("InsurerParty").
		Where("policy_id = ?", policyID).
		Order("is_lead DESC, share_percentage DESC").
		Find(&insurers).Error
	return insurers, err
}

// SumShares returns the total share percentage placed on a policy
func (r *CoinsuranceRepository) SumShares(ctx context.Context, policyID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.PolicyInsurer{}).
		Select("COALESCE(SUM(share_percentage), 0)").
		Where("policy_id = ?", policyID).
		Scan(&total).Error
	return total, err
}

// CountLead counts rows flagged as lead on a policy
func (r *CoinsuranceRepository) CountLead(ctx context.Context, policyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.PolicyInsurer{}).
		Where("policy_id = ? AND is_lead = ?", policyID, true).
		Count(&count).Error
	return count, err
}

// GetLead returns the lead coinsurer row for a policy
func (r *CoinsuranceRepository) GetLead(ctx context.Context, policyID uuid.UUID) (*domain.PolicyInsurer, error) {
	var insurer domain.PolicyInsurer
	err := r.db.WithContext(ctx).
		Preload("InsurerParty").
		Where("policy_id = ? AND is_lead = ?", policyID, true).
		First(&insurer).Error
	if err != nil {
		return nil, err
	}
	return &insurer, nil
}

// ExistsForParty checks whether an insurer already participates on a policy
func (r *CoinsuranceRepository) ExistsForParty(ctx context.Context, policyID, insurerPartyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.PolicyInsurer{}).
		Where("policy_id = ? AND insurer_party_id = ?", policyID, insurerPartyID).
		Count(&count).Error
	return count > 0, err
}

func (r *CoinsuranceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PolicyInsurer{}, "id = ?", id).Error
}
