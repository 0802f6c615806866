package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type PartyRoleRepository struct {
	db *gorm.DB
}

func NewPartyRoleRepository(db *gorm.DB) *PartyRoleRepository {
	return &PartyRoleRepository{db: db}
}

func (r *PartyRoleRepository) Create(ctx context.Context, role *domain.PartyRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *PartyRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PartyRole{}, "id = ?", id).Error
}

// ListForRecord returns all role rows for one record, with parties loaded
func (r *PartyRoleRepository) ListForRecord(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID) ([]domain.PartyRole, error) {
	var roles []domain.PartyRole
	err := r.db.WithContext(ctx).
		Preload("Party").
		Where("record_kind = ? AND record_id = ?", kind, recordID).
		Order("role_name").
		Find(&roles).Error
	return roles, err
}

// ListForParty returns all role rows a party holds across records
func (r *PartyRoleRepository) ListForParty(ctx context.Context, partyID uuid.UUID) ([]domain.PartyRole, error) {
	var roles []domain.PartyRole
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("created_at DESC").
		Find(&roles).Error
	return roles, err
}

// FindByRole returns every row holding the given role on one record.
// Callers expecting a singular role must check the result count themselves.
func (r *PartyRoleRepository) FindByRole(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID, roleName domain.RoleName) ([]domain.PartyRole, error) {
	var roles []domain.PartyRole
	err := r.db.WithContext(ctx).
		Preload("Party").
		Where("record_kind = ? AND record_id = ? AND role_name = ?", kind, recordID, roleName).
		Find(&roles).Error
	return roles, err
}

// Exists checks whether the exact (party, role, record) association is present
func (r *PartyRoleRepository) Exists(ctx context.Context, partyID uuid.UUID, roleName domain.RoleName, kind domain.RecordKind, recordID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PartyRole{}).
		Where("party_id = ? AND role_name = ? AND record_kind = ? AND record_id = ?",
			partyID, roleName, kind, recordID).
		Count(&count).Error
	return count > 0, err
}

// CountByRole counts rows holding a role on one record regardless of party
func (r *PartyRoleRepository) CountByRole(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID, roleName domain.RoleName) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PartyRole{}).
		Where("record_kind = ? AND record_id = ? AND role_name = ?", kind, recordID, roleName).
		Count(&count).Error
	return count, err
}
