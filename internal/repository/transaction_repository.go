package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

// TransactionRepository handles the claim financial ledger. The ledger is
// append-only: there are create and read methods, never update or delete.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.FinancialTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *TransactionRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]domain.FinancialTransaction, error) {
	var transactions []domain.FinancialTransaction
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("transaction_date ASC, created_at ASC").
		Find(&transactions).Error
	return transactions, err
}

// SumIncurred returns the claim's total incurred amount: the sum of all
// reserve and payment transactions on the ledger.
func (r *TransactionRepository) SumIncurred(ctx context.Context, claimID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.FinancialTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("claim_id = ?", claimID).
		Scan(&total).Error
	return total, err
}

// SumByType returns the ledger total for one transaction type
func (r *TransactionRepository) SumByType(ctx context.Context, claimID uuid.UUID, txType domain.TransactionType) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.FinancialTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("claim_id = ? AND transaction_type = ?", claimID, txType).
		Scan(&total).Error
	return total, err
}

// SumPaid returns the total of both payment transaction types
func (r *TransactionRepository) SumPaid(ctx context.Context, claimID uuid.UUID) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.FinancialTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("claim_id = ? AND transaction_type IN ?", claimID,
			[]domain.TransactionType{domain.TransactionTypePaymentExpense, domain.TransactionTypePaymentIndemnity}).
		Scan(&total).Error
	return total, err
}
