package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

// CashCallRepository handles cash calls. Call amounts are append-only: a call
// is created once and only its status may change afterwards.
type CashCallRepository struct {
	db *gorm.DB
}

func NewCashCallRepository(db *gorm.DB) *CashCallRepository {
	return &CashCallRepository{db: db}
}

func (r *CashCallRepository) Create(ctx context.Context, call *domain.CashCall) error {
	return r.db.WithContext(ctx).Create(call).Error
}

func (r *CashCallRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CashCall, error) {
	var call domain.CashCall
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Preload("Participant.ReinsurerParty").
		First(&call, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *CashCallRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]domain.CashCall, error) {
	var calls []domain.CashCall
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Preload("Participant.ReinsurerParty").
		Where("claim_id = ?", claimID).
		Order("issued_date ASC, created_at ASC").
		Find(&calls).Error
	return calls, err
}

// SumForParticipant returns the cumulative amount already called from one
// participant on one claim, across all statuses. The allocation engine uses
// this to compute incremental deltas on re-runs.
func (r *CashCallRepository) SumForParticipant(ctx context.Context, claimID, participantID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.CashCall{}).
		Select("COALESCE(SUM(call_amount), 0)").
		Where("claim_id = ? AND participant_id = ?", claimID, participantID).
		Scan(&total).Error
	return total, err
}

// MarkPaid sets a call to PAID, guarded by the version the caller read.
// PAID is terminal; the status check keeps a paid call paid.
func (r *CashCallRepository) MarkPaid(ctx context.Context, call *domain.CashCall, paidDate time.Time) error {
	currentVersion := call.Version

	result := r.db.WithContext(ctx).
		Model(&domain.CashCall{}).
		Where("id = ? AND version = ? AND status = ?", call.ID, currentVersion, domain.CashCallStatusIssued).
		Updates(map[string]interface{}{
			"status":     domain.CashCallStatusPaid,
			"paid_date":  paidDate,
			"version":    currentVersion + 1,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	call.Status = domain.CashCallStatusPaid
	call.PaidDate = &paidDate
	call.Version = currentVersion + 1
	return nil
}

// ListUpdatedSince returns calls touched since the given instant, with the
// associations the warehouse bordereau needs
func (r *CashCallRepository) ListUpdatedSince(ctx context.Context, since time.Time) ([]domain.CashCall, error) {
	var calls []domain.CashCall
	err := r.db.WithContext(ctx).
		Preload("Claim").
		Preload("Claim.Policy").
		Preload("Participant").
		Preload("Participant.ReinsurerParty").
		Where("updated_at >= ?", since).
		Order("updated_at ASC").
		Find(&calls).Error
	return calls, err
}

// ListOverdue returns ISSUED calls whose due date has passed
func (r *CashCallRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.CashCall, error) {
	var calls []domain.CashCall
	err := r.db.WithContext(ctx).
		Preload("Participant").
		Preload("Participant.ReinsurerParty").
		Where("status = ? AND due_date < ?", domain.CashCallStatusIssued, asOf).
		Order("due_date ASC").
		Find(&calls).Error
	return calls, err
}
