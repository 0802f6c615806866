package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/mapper"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportService serves the read models: eager-loaded projections assembled
// for consumers, never used for writes
type ReportService struct {
	policyRepo   *repository.PolicyRepository
	claimRepo    *repository.ClaimRepository
	cashCallRepo *repository.CashCallRepository
	roleService  *RoleService
	logger       *zap.Logger
	db           *gorm.DB
}

func NewReportService(
	policyRepo *repository.PolicyRepository,
	claimRepo *repository.ClaimRepository,
	cashCallRepo *repository.CashCallRepository,
	roleService *RoleService,
	logger *zap.Logger,
	db *gorm.DB,
) *ReportService {
	return &ReportService{
		policyRepo:   policyRepo,
		claimRepo:    claimRepo,
		cashCallRepo: cashCallRepo,
		roleService:  roleService,
		logger:       logger,
		db:           db,
	}
}

// GetPolicyDetail returns the full policy projection: coverages, assets with
// locations and details, claims, the coinsurance panel and the treaty stack,
// all loaded in one round of explicit preloads, plus the insured party
// resolved through the role registry
func (s *ReportService) GetPolicyDetail(ctx context.Context, policyID uuid.UUID) (*domain.PolicyDetailDTO, error) {
	policy, err := s.policyRepo.GetByIDWithDetails(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	detail := mapper.ToPolicyDetailDTO(policy)

	insured, err := s.roleService.PartyInRole(ctx, domain.RecordKindPolicy, policyID, domain.RoleInsured)
	if err != nil {
		return nil, err
	}
	detail.InsuredParty = insured

	return &detail, nil
}

// GetBookSummary returns the portfolio counts in a single pass of aggregate
// queries
func (s *ReportService) GetBookSummary(ctx context.Context) (*domain.BookSummaryDTO, error) {
	summary := &domain.BookSummaryDTO{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&domain.Submission{}).
		Where("status IN ?", []domain.SubmissionStatus{domain.SubmissionStatusOpen, domain.SubmissionStatusInReview, domain.SubmissionStatusQuoted}).
		Count(&summary.OpenSubmissions).Error; err != nil {
		return nil, fmt.Errorf("failed to count open submissions: %w", err)
	}

	if err := db.Model(&domain.Submission{}).
		Where("status = ?", domain.SubmissionStatusBound).
		Count(&summary.BoundSubmissions).Error; err != nil {
		return nil, fmt.Errorf("failed to count bound submissions: %w", err)
	}

	if err := db.Model(&domain.Policy{}).
		Where("status = ?", domain.PolicyStatusActive).
		Count(&summary.ActivePolicies).Error; err != nil {
		return nil, fmt.Errorf("failed to count active policies: %w", err)
	}

	if err := db.Model(&domain.Claim{}).
		Where("status IN ?", []domain.ClaimStatus{domain.ClaimStatusOpen, domain.ClaimStatusUnderReview}).
		Count(&summary.OpenClaims).Error; err != nil {
		return nil, fmt.Errorf("failed to count open claims: %w", err)
	}

	if err := db.Model(&domain.CashCall{}).
		Where("status = ? AND due_date < ?", domain.CashCallStatusIssued, time.Now()).
		Count(&summary.OverdueCashCalls).Error; err != nil {
		return nil, fmt.Errorf("failed to count overdue cash calls: %w", err)
	}

	if err := db.Model(&domain.CashCall{}).
		Select("COALESCE(SUM(call_amount), 0)").
		Scan(&summary.TotalCalled).Error; err != nil {
		return nil, fmt.Errorf("failed to sum called amounts: %w", err)
	}

	if err := db.Model(&domain.CashCall{}).
		Select("COALESCE(SUM(call_amount), 0)").
		Where("status = ?", domain.CashCallStatusPaid).
		Scan(&summary.TotalPaid).Error; err != nil {
		return nil, fmt.Errorf("failed to sum paid amounts: %w", err)
	}

	return summary, nil
}
