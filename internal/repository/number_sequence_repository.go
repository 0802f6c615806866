package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for number sequences.
// Each entity type (submission, policy, claim, cash_call) keeps its own
// counter per year.
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// lockForUpdate applies SELECT FOR UPDATE where the dialect supports it.
// SQLite serializes writers on its own and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetNextNumber atomically retrieves and increments the sequence for an
// entity type and year. Uses SELECT FOR UPDATE to prevent races; creates the
// sequence row starting at 1 when none exists.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, entityType string, year int) (int, error) {
	var seq domain.NumberSequence
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := lockForUpdate(tx).
			Where("entity_type = ? AND year = ?", entityType, year).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				EntityType:   entityType,
				Year:         year,
				LastSequence: 1,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			nextSeq = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else {
			nextSeq = seq.LastSequence + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": nextSeq,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

// GetCurrentSequence retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the entity type/year.
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, entityType string, year int) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("entity_type = ? AND year = ?", entityType, year).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastSequence, nil
}

// SetSequence sets the sequence to a specific value. Used by data migrations
// so the counter accounts for pre-existing numbered rows. The sequence is
// never lowered.
func (r *NumberSequenceRepository) SetSequence(ctx context.Context, entityType string, year int, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := lockForUpdate(tx).
			Where("entity_type = ? AND year = ?", entityType, year).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				EntityType:   entityType,
				Year:         year,
				LastSequence: value,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else if value > seq.LastSequence {
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_sequence": value,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})
}
