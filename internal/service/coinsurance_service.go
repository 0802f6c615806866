package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/mapper"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// shareTolerance absorbs representation noise when checking percentage sums
const shareTolerance = 0.01

type CoinsuranceService struct {
	coinsuranceRepo *repository.CoinsuranceRepository
	policyRepo      *repository.PolicyRepository
	partyRepo       *repository.PartyRepository
	roleRepo        *repository.PartyRoleRepository
	logger          *zap.Logger
	db              *gorm.DB
}

func NewCoinsuranceService(
	coinsuranceRepo *repository.CoinsuranceRepository,
	policyRepo *repository.PolicyRepository,
	partyRepo *repository.PartyRepository,
	roleRepo *repository.PartyRoleRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *CoinsuranceService {
	return &CoinsuranceService{
		coinsuranceRepo: coinsuranceRepo,
		policyRepo:      policyRepo,
		partyRepo:       partyRepo,
		roleRepo:        roleRepo,
		logger:          logger,
		db:              db,
	}
}

// AddCoinsurer places a share of the policy with an insurer. The new share may
// not push the policy total above 100 percent and at most one coinsurer is the
// lead. Both checks run before anything is written.
func (s *CoinsuranceService) AddCoinsurer(ctx context.Context, policyID uuid.UUID, req *domain.AddCoinsurerRequest) (*domain.PolicyInsurerDTO, error) {
	if _, err := s.policyRepo.GetByID(ctx, policyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	if _, err := s.partyRepo.GetByID(ctx, req.InsurerPartyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: insurer party", ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get insurer party: %w", err)
	}

	exists, err := s.coinsuranceRepo.ExistsForParty(ctx, policyID, req.InsurerPartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing participation: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: insurer already participates on policy", ErrConflict)
	}

	currentTotal, err := s.coinsuranceRepo.SumShares(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum shares: %w", err)
	}
	if currentTotal+req.SharePercentage > 100+shareTolerance {
		return nil, fmt.Errorf("%w: %.2f placed, %.2f requested", ErrSharesExceedFull,
			currentTotal, req.SharePercentage)
	}

	if req.IsLead {
		leadCount, err := s.coinsuranceRepo.CountLead(ctx, policyID)
		if err != nil {
			return nil, fmt.Errorf("failed to count leads: %w", err)
		}
		if leadCount > 0 {
			return nil, ErrDuplicateLead
		}
	}

	insurer := &domain.PolicyInsurer{
		PolicyID:        policyID,
		InsurerPartyID:  req.InsurerPartyID,
		SharePercentage: req.SharePercentage,
		IsLead:          req.IsLead,
	}

	roleName := domain.RoleCoInsurer
	if req.IsLead {
		roleName = domain.RoleLeadInsurer
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCoinsuranceRepository(tx).Create(ctx, insurer); err != nil {
			return fmt.Errorf("failed to add coinsurer: %w", err)
		}
		return repository.NewPartyRoleRepository(tx).Create(ctx, &domain.PartyRole{
			PartyID:    req.InsurerPartyID,
			RoleName:   roleName,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policyID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("coinsurer added",
		zap.String("policy_id", policyID.String()),
		zap.String("insurer_party_id", req.InsurerPartyID.String()),
		zap.Float64("share", req.SharePercentage),
		zap.Bool("is_lead", req.IsLead))

	dto := mapper.ToPolicyInsurerDTO(insurer)
	return &dto, nil
}

// GetView returns the full panel with the placed total and whether the policy
// is balanced: shares summing to 100 within tolerance and exactly one lead
func (s *CoinsuranceService) GetView(ctx context.Context, policyID uuid.UUID) (*domain.CoinsuranceViewDTO, error) {
	policy, err := s.policyRepo.GetByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	insurers, err := s.coinsuranceRepo.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coinsurers: %w", err)
	}

	var total float64
	leadCount := 0
	dtos := make([]domain.PolicyInsurerDTO, len(insurers))
	for i := range insurers {
		total += insurers[i].SharePercentage
		if insurers[i].IsLead {
			leadCount++
		}
		dtos[i] = mapper.ToPolicyInsurerDTO(&insurers[i])
	}

	return &domain.CoinsuranceViewDTO{
		PolicyID:     policyID,
		PolicyNumber: policy.PolicyNumber,
		Insurers:     dtos,
		TotalShare:   total,
		Balanced:     math.Abs(total-100) <= shareTolerance && leadCount == 1,
	}, nil
}

// GetLead returns the lead coinsurer, or ErrNoLeadInsurer when shares are
// placed but no row carries the lead flag
func (s *CoinsuranceService) GetLead(ctx context.Context, policyID uuid.UUID) (*domain.PolicyInsurerDTO, error) {
	lead, err := s.coinsuranceRepo.GetLead(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			insurers, listErr := s.coinsuranceRepo.ListByPolicy(ctx, policyID)
			if listErr != nil {
				return nil, fmt.Errorf("failed to list coinsurers: %w", listErr)
			}
			if len(insurers) > 0 {
				return nil, ErrNoLeadInsurer
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead coinsurer: %w", err)
	}

	dto := mapper.ToPolicyInsurerDTO(lead)
	return &dto, nil
}

// RemoveCoinsurer deletes a share row together with the insurer's role on the policy
func (s *CoinsuranceService) RemoveCoinsurer(ctx context.Context, policyID, insurerID uuid.UUID) error {
	insurers, err := s.coinsuranceRepo.ListByPolicy(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to list coinsurers: %w", err)
	}

	var target *domain.PolicyInsurer
	for i := range insurers {
		if insurers[i].ID == insurerID {
			target = &insurers[i]
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}

	roleName := domain.RoleCoInsurer
	if target.IsLead {
		roleName = domain.RoleLeadInsurer
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewCoinsuranceRepository(tx).Delete(ctx, insurerID); err != nil {
			return fmt.Errorf("failed to remove coinsurer: %w", err)
		}
		return tx.
			Where("party_id = ? AND role_name = ? AND record_kind = ? AND record_id = ?",
				target.InsurerPartyID, roleName, domain.RecordKindPolicy, policyID).
			Delete(&domain.PartyRole{}).Error
	})
}
