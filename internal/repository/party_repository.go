package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type PartyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) *PartyRepository {
	return &PartyRepository{db: db}
}

func (r *PartyRepository) Create(ctx context.Context, party *domain.Party) error {
	return r.db.WithContext(ctx).Create(party).Error
}

func (r *PartyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	var party domain.Party
	err := r.db.WithContext(ctx).First(&party, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *PartyRepository) List(ctx context.Context, page, pageSize int) ([]domain.Party, int64, error) {
	var parties []domain.Party
	var total int64

	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).Model(&domain.Party{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("name").
		Offset(offset).
		Limit(pageSize).
		Find(&parties).Error

	return parties, total, err
}

// Update persists mutable contact fields. Identity fields (type, name) are
// written as-is; callers must not change them after creation.
func (r *PartyRepository) Update(ctx context.Context, party *domain.Party) error {
	return r.db.WithContext(ctx).Save(party).Error
}

func (r *PartyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Party{}, "id = ?", id).Error
}

// Search searches parties by name
func (r *PartyRepository) Search(ctx context.Context, query string, limit int) ([]domain.Party, error) {
	var parties []domain.Party
	searchPattern := "%" + query + "%"

	err := r.db.WithContext(ctx).
		Where("name ILIKE ?", searchPattern).
		Order("name").
		Limit(limit).
		Find(&parties).Error

	return parties, err
}

// ListInsureds returns distinct parties holding the Insured role on any record
func (r *PartyRepository) ListInsureds(ctx context.Context) ([]domain.Party, error) {
	var parties []domain.Party

	err := r.db.WithContext(ctx).
		Distinct("parties.*").
		Joins("JOIN party_roles pr ON pr.party_id = parties.id").
		Where("pr.role_name = ?", domain.RoleInsured).
		Order("parties.name").
		Find(&parties).Error

	return parties, err
}
