package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create persists an asset together with its locations and details in one insert
func (r *AssetRepository) Create(ctx context.Context, asset *domain.InsurableAsset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InsurableAsset, error) {
	var asset domain.InsurableAsset
	err := r.db.WithContext(ctx).
		Preload("Locations").
		Preload("Details").
		First(&asset, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *AssetRepository) ListByPolicy(ctx context.Context, policyID uuid.UUID) ([]domain.InsurableAsset, error) {
	var assets []domain.InsurableAsset
	err := r.db.WithContext(ctx).
		Preload("Locations").
		Preload("Details").
		Where("policy_id = ?", policyID).
		Order("asset_type").
		Find(&assets).Error
	return assets, err
}

func (r *AssetRepository) AddDetail(ctx context.Context, detail *domain.AssetDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *AssetRepository) AddLocation(ctx context.Context, location *domain.AssetLocation) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.InsurableAsset{}, "id = ?", id).Error
}
