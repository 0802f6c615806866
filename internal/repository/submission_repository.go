package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var submission domain.Submission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) GetByIDWithQuotes(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var submission domain.Submission
	err := r.db.WithContext(ctx).
		Preload("Quotes").
		Preload("Quotes.InsurerParty").
		First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) GetByNumber(ctx context.Context, number string) (*domain.Submission, error) {
	var submission domain.Submission
	err := r.db.WithContext(ctx).First(&submission, "submission_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// SubmissionFilters holds filters for listing submissions
type SubmissionFilters struct {
	Status       *domain.SubmissionStatus
	RiskAppetite *domain.RiskAppetite
	BrokerTier   *domain.BrokerTier
	Search       string
}

// SubmissionSortOption defines sort options for submissions
type SubmissionSortOption string

const (
	SubmissionSortByPriorityDesc SubmissionSortOption = "priority_desc"
	SubmissionSortByCreatedDesc  SubmissionSortOption = "created_desc"
	SubmissionSortByNumberAsc    SubmissionSortOption = "number_asc"
)

// List returns submissions with filters and pagination
func (r *SubmissionRepository) List(ctx context.Context, page, pageSize int, filters *SubmissionFilters, sortBy SubmissionSortOption) ([]domain.Submission, int64, error) {
	var submissions []domain.Submission
	var total int64

	offset := (page - 1) * pageSize

	query := r.db.WithContext(ctx).Model(&domain.Submission{})

	if filters != nil {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.RiskAppetite != nil {
			query = query.Where("risk_appetite = ?", *filters.RiskAppetite)
		}
		if filters.BrokerTier != nil {
			query = query.Where("broker_tier = ?", *filters.BrokerTier)
		}
		if filters.Search != "" {
			searchPattern := "%" + filters.Search + "%"
			query = query.Where("submission_number ILIKE ? OR line_of_business ILIKE ? OR description ILIKE ?",
				searchPattern, searchPattern, searchPattern)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch sortBy {
	case SubmissionSortByPriorityDesc:
		query = query.Order("priority_score DESC, created_at DESC")
	case SubmissionSortByNumberAsc:
		query = query.Order("submission_number ASC")
	case SubmissionSortByCreatedDesc:
		query = query.Order("created_at DESC")
	default:
		query = query.Order("priority_score DESC, created_at DESC")
	}

	err := query.Offset(offset).Limit(pageSize).Find(&submissions).Error

	return submissions, total, err
}

// Update saves a submission and bumps its version. The write is guarded by
// the version the caller read; a concurrent update makes it affect zero rows.
func (r *SubmissionRepository) Update(ctx context.Context, submission *domain.Submission) error {
	currentVersion := submission.Version
	submission.Version++

	result := r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ? AND version = ?", submission.ID, currentVersion).
		Select("status", "line_of_business", "description", "completeness",
			"priority_score", "risk_appetite", "broker_tier", "effective_date",
			"accepted", "version", "updated_at").
		Updates(submission)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Submission{}, "id = ?", id).Error
}

// AddStatusHistory records one status transition
func (r *SubmissionRepository) AddStatusHistory(ctx context.Context, history *domain.SubmissionStatusHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// GetStatusHistory returns all transitions for a submission, newest first
func (r *SubmissionRepository) GetStatusHistory(ctx context.Context, submissionID uuid.UUID) ([]domain.SubmissionStatusHistory, error) {
	var history []domain.SubmissionStatusHistory
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}
