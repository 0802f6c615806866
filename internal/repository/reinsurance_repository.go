package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

// ReinsuranceRepository handles treaties, layers and layer participants
type ReinsuranceRepository struct {
	db *gorm.DB
}

func NewReinsuranceRepository(db *gorm.DB) *ReinsuranceRepository {
	return &ReinsuranceRepository{db: db}
}

func (r *ReinsuranceRepository) CreateTreaty(ctx context.Context, treaty *domain.ReinsuranceTreaty) error {
	return r.db.WithContext(ctx).Create(treaty).Error
}

// GetTreatyByID returns a treaty with layers ordered by layer_order and
// participants loaded. The tower builder depends on this ordering.
func (r *ReinsuranceRepository) GetTreatyByID(ctx context.Context, id uuid.UUID) (*domain.ReinsuranceTreaty, error) {
	var treaty domain.ReinsuranceTreaty
	err := r.db.WithContext(ctx).
		Preload("Layers", func(db *gorm.DB) *gorm.DB {
			return db.Order("reinsurance_layers.layer_order ASC")
		}).
		Preload("Layers.Participants").
		Preload("Layers.Participants.ReinsurerParty").
		First(&treaty, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &treaty, nil
}

// GetTreatyByPolicy returns the policy's treaty with the full layer stack.
// The model holds one treaty per policy; the first row wins if more exist.
func (r *ReinsuranceRepository) GetTreatyByPolicy(ctx context.Context, policyID uuid.UUID) (*domain.ReinsuranceTreaty, error) {
	var treaty domain.ReinsuranceTreaty
	err := r.db.WithContext(ctx).
		Preload("Layers", func(db *gorm.DB) *gorm.DB {
			return db.Order("reinsurance_layers.layer_order ASC")
		}).
		Preload("Layers.Participants").
		Preload("Layers.Participants.ReinsurerParty").
		Where("policy_id = ?", policyID).
		Order("created_at ASC").
		First(&treaty).Error
	if err != nil {
		return nil, err
	}
	return &treaty, nil
}

func (r *ReinsuranceRepository) AddLayer(ctx context.Context, layer *domain.ReinsuranceLayer) error {
	return r.db.WithContext(ctx).Create(layer).Error
}

func (r *ReinsuranceRepository) GetLayerByID(ctx context.Context, id uuid.UUID) (*domain.ReinsuranceLayer, error) {
	var layer domain.ReinsuranceLayer
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.ReinsurerParty").
		First(&layer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &layer, nil
}

// ListLayers returns a treaty's layers ordered by layer_order
func (r *ReinsuranceRepository) ListLayers(ctx context.Context, treatyID uuid.UUID) ([]domain.ReinsuranceLayer, error) {
	var layers []domain.ReinsuranceLayer
	err := r.db.WithContext(ctx).
		Where("treaty_id = ?", treatyID).
		Order("layer_order ASC").
		Find(&layers).Error
	return layers, err
}

func (r *ReinsuranceRepository) AddParticipant(ctx context.Context, participant *domain.LayerParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *ReinsuranceRepository) GetParticipantByID(ctx context.Context, id uuid.UUID) (*domain.LayerParticipant, error) {
	var participant domain.LayerParticipant
	err := r.db.WithContext(ctx).
		Preload("ReinsurerParty").
		First(&participant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ReinsuranceRepository) ListParticipants(ctx context.Context, layerID uuid.UUID) ([]domain.LayerParticipant, error) {
	var participants []domain.LayerParticipant
	err := r.db.WithContext(ctx).
		Preload("ReinsurerParty").
		Where("layer_id = ?", layerID).
		Order("share_percentage DESC").
		Find(&participants).Error
	return participants, err
}

// SumParticipantShares returns the total share percentage placed on a layer
func (r *ReinsuranceRepository) SumParticipantShares(ctx context.Context, layerID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.LayerParticipant{}).
		Select("COALESCE(SUM(share_percentage), 0)").
		Where("layer_id = ?", layerID).
		Scan(&total).Error
	return total, err
}
