package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/mapper"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PolicyService struct {
	policyRepo     *repository.PolicyRepository
	assetRepo      *repository.AssetRepository
	submissionRepo *repository.SubmissionRepository
	quoteRepo      *repository.QuoteRepository
	roleRepo       *repository.PartyRoleRepository
	numberSeq      *NumberSequenceService
	logger         *zap.Logger
	db             *gorm.DB
}

func NewPolicyService(
	policyRepo *repository.PolicyRepository,
	assetRepo *repository.AssetRepository,
	submissionRepo *repository.SubmissionRepository,
	quoteRepo *repository.QuoteRepository,
	roleRepo *repository.PartyRoleRepository,
	numberSeq *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *PolicyService {
	return &PolicyService{
		policyRepo:     policyRepo,
		assetRepo:      assetRepo,
		submissionRepo: submissionRepo,
		quoteRepo:      quoteRepo,
		roleRepo:       roleRepo,
		numberSeq:      numberSeq,
		logger:         logger,
		db:             db,
	}
}

// Bind creates a policy from an accepted quote. The submission must be QUOTED
// with its accepted flag set, and the quote must be ACCEPTED. The policy row,
// the submission's move to BOUND, its history entry and the carried-over party
// roles commit as one transaction.
func (s *PolicyService) Bind(ctx context.Context, req *domain.BindPolicyRequest) (*domain.PolicyDTO, error) {
	submission, err := s.submissionRepo.GetByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.Status != domain.SubmissionStatusQuoted || !submission.Accepted {
		return nil, fmt.Errorf("%w: status %s, accepted %t", ErrSubmissionNotQuoted, submission.Status, submission.Accepted)
	}

	quote, err := s.quoteRepo.GetByID(ctx, req.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote", ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.SubmissionID != req.SubmissionID {
		return nil, fmt.Errorf("%w: quote belongs to another submission", ErrInvalidInput)
	}
	if quote.Status != domain.QuoteStatusAccepted {
		return nil, ErrQuoteNotAccepted
	}

	policyNumber, err := s.numberSeq.GeneratePolicyNumber(ctx)
	if err != nil {
		return nil, err
	}

	policy := &domain.Policy{
		PolicyNumber:   policyNumber,
		QuoteID:        &quote.ID,
		Status:         domain.PolicyStatusActive,
		EffectiveDate:  req.EffectiveDate,
		ExpirationDate: req.ExpirationDate,
		Version:        1,
	}

	fromStatus := submission.Status
	userID, userName := actorFromContext(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(policy).Error; err != nil {
			return fmt.Errorf("failed to create policy: %w", err)
		}

		submission.Status = domain.SubmissionStatusBound
		if err := repository.NewSubmissionRepository(tx).Update(ctx, submission); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to bind submission: %w", err)
		}

		history := &domain.SubmissionStatusHistory{
			SubmissionID:  submission.ID,
			FromStatus:    &fromStatus,
			ToStatus:      domain.SubmissionStatusBound,
			ChangedByID:   userID,
			ChangedByName: userName,
			Notes:         fmt.Sprintf("Bound as policy %s", policyNumber),
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		// Carry the submission's insured and broker over to the policy
		roles, err := repository.NewPartyRoleRepository(tx).ListForRecord(ctx, domain.RecordKindSubmission, submission.ID)
		if err != nil {
			return fmt.Errorf("failed to list submission roles: %w", err)
		}
		for _, role := range roles {
			if role.RoleName != domain.RoleInsured && role.RoleName != domain.RoleBroker {
				continue
			}
			if err := tx.Create(&domain.PartyRole{
				PartyID:    role.PartyID,
				RoleName:   role.RoleName,
				RecordKind: domain.RecordKindPolicy,
				RecordID:   policy.ID,
			}).Error; err != nil {
				return fmt.Errorf("failed to carry over %s role: %w", role.RoleName, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("policy bound",
		zap.String("policy_id", policy.ID.String()),
		zap.String("policy_number", policy.PolicyNumber),
		zap.String("submission_id", submission.ID.String()),
		zap.String("quote_id", quote.ID.String()))

	dto := mapper.ToPolicyDTO(policy)
	return &dto, nil
}

func (s *PolicyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PolicyDTO, error) {
	policy, err := s.policyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	dto := mapper.ToPolicyDTO(policy)
	return &dto, nil
}

func (s *PolicyService) List(ctx context.Context, page, pageSize int, status *domain.PolicyStatus) ([]domain.PolicyDTO, int64, error) {
	policies, total, err := s.policyRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list policies: %w", err)
	}

	dtos := make([]domain.PolicyDTO, len(policies))
	for i := range policies {
		dtos[i] = mapper.ToPolicyDTO(&policies[i])
	}
	return dtos, total, nil
}

// AddCoverage attaches coverage terms to a policy. The limit must cover at
// least the deductible.
func (s *PolicyService) AddCoverage(ctx context.Context, policyID uuid.UUID, req *domain.AddCoverageRequest) (*domain.CoverageDTO, error) {
	if req.LimitAmount < req.DeductibleAmount {
		return nil, ErrInvalidCoverageTerms
	}

	if _, err := s.policyRepo.GetByID(ctx, policyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	coverage := &domain.Coverage{
		PolicyID:         policyID,
		CoverageType:     req.CoverageType,
		LimitAmount:      req.LimitAmount,
		DeductibleAmount: req.DeductibleAmount,
	}

	if err := s.policyRepo.AddCoverage(ctx, coverage); err != nil {
		return nil, fmt.Errorf("failed to add coverage: %w", err)
	}

	dto := mapper.ToCoverageDTO(coverage)
	return &dto, nil
}

// AddAsset attaches an insurable asset, with its locations and details, to a policy
func (s *PolicyService) AddAsset(ctx context.Context, policyID uuid.UUID, req *domain.AddAssetRequest) (*domain.InsurableAssetDTO, error) {
	if _, err := s.policyRepo.GetByID(ctx, policyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	asset := &domain.InsurableAsset{
		PolicyID:    policyID,
		AssetType:   req.AssetType,
		Description: req.Description,
	}
	for _, loc := range req.Locations {
		asset.Locations = append(asset.Locations, domain.AssetLocation{
			Address:    loc.Address,
			City:       loc.City,
			PostalCode: loc.PostalCode,
			Country:    loc.Country,
		})
	}
	for _, detail := range req.Details {
		asset.Details = append(asset.Details, domain.AssetDetail{
			DetailKey: detail.Key,
			Value:     detail.Value,
		})
	}

	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to add asset: %w", err)
	}

	dto := mapper.ToInsurableAssetDTO(asset)
	return &dto, nil
}

// ListAssets returns a policy's assets with locations and details
func (s *PolicyService) ListAssets(ctx context.Context, policyID uuid.UUID) ([]domain.InsurableAssetDTO, error) {
	assets, err := s.assetRepo.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	dtos := make([]domain.InsurableAssetDTO, len(assets))
	for i := range assets {
		dtos[i] = mapper.ToInsurableAssetDTO(&assets[i])
	}
	return dtos, nil
}
