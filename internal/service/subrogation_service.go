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

type SubrogationService struct {
	subrogationRepo *repository.SubrogationRepository
	claimRepo       *repository.ClaimRepository
	partyRepo       *repository.PartyRepository
	roleRepo        *repository.PartyRoleRepository
	logger          *zap.Logger
	db              *gorm.DB
}

func NewSubrogationService(
	subrogationRepo *repository.SubrogationRepository,
	claimRepo *repository.ClaimRepository,
	partyRepo *repository.PartyRepository,
	roleRepo *repository.PartyRoleRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *SubrogationService {
	return &SubrogationService{
		subrogationRepo: subrogationRepo,
		claimRepo:       claimRepo,
		partyRepo:       partyRepo,
		roleRepo:        roleRepo,
		logger:          logger,
		db:              db,
	}
}

// Record opens a recovery opportunity against a liable third party. The party
// gets the Liable Party role on the claim in the same transaction.
func (s *SubrogationService) Record(ctx context.Context, claimID uuid.UUID, req *domain.RecordSubrogationRequest) (*domain.SubrogationDTO, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	if claim.Status == domain.ClaimStatusClosed {
		return nil, fmt.Errorf("%w: claim is closed", ErrInvalidStatusTransition)
	}

	if _, err := s.partyRepo.GetByID(ctx, req.LiablePartyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: liable party", ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get liable party: %w", err)
	}

	subrogation := &domain.Subrogation{
		ClaimID:                 claimID,
		LiablePartyID:           req.LiablePartyID,
		Status:                  domain.SubrogationStatusIdentified,
		PotentialRecoveryAmount: req.PotentialRecoveryAmount,
		Notes:                   req.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubrogationRepository(tx).Create(ctx, subrogation); err != nil {
			return fmt.Errorf("failed to create subrogation: %w", err)
		}

		txRoleRepo := repository.NewPartyRoleRepository(tx)
		exists, err := txRoleRepo.Exists(ctx, req.LiablePartyID, domain.RoleLiableParty, domain.RecordKindClaim, claimID)
		if err != nil {
			return fmt.Errorf("failed to check liable party role: %w", err)
		}
		if !exists {
			if err := txRoleRepo.Create(ctx, &domain.PartyRole{
				PartyID:    req.LiablePartyID,
				RoleName:   domain.RoleLiableParty,
				RecordKind: domain.RecordKindClaim,
				RecordID:   claimID,
			}); err != nil {
				return fmt.Errorf("failed to assign liable party role: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subrogation recorded",
		zap.String("subrogation_id", subrogation.ID.String()),
		zap.String("claim_id", claimID.String()),
		zap.Float64("potential_recovery", req.PotentialRecoveryAmount))

	dto := mapper.ToSubrogationDTO(subrogation)
	return &dto, nil
}

func (s *SubrogationService) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]domain.SubrogationDTO, error) {
	subrogations, err := s.subrogationRepo.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subrogations: %w", err)
	}

	dtos := make([]domain.SubrogationDTO, len(subrogations))
	for i := range subrogations {
		dtos[i] = mapper.ToSubrogationDTO(&subrogations[i])
	}
	return dtos, nil
}

// RecordRecovery books the realised recovery on a subrogation. The actual
// amount may never exceed the recorded potential. A full recovery moves the
// status to RECOVERED, a partial one to IN_PROGRESS. The recovery is mirrored
// on the claim log.
func (s *SubrogationService) RecordRecovery(ctx context.Context, id uuid.UUID, req *domain.RecordRecoveryRequest) (*domain.SubrogationDTO, error) {
	subrogation, err := s.subrogationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subrogation: %w", err)
	}

	if subrogation.Status == domain.SubrogationStatusClosed {
		return nil, fmt.Errorf("%w: subrogation is closed", ErrInvalidStatusTransition)
	}

	newActual := subrogation.ActualRecoveryAmount + req.ActualRecoveryAmount
	if newActual > subrogation.PotentialRecoveryAmount {
		return nil, fmt.Errorf("%w: %.2f of %.2f", ErrRecoveryExceedsPotential,
			newActual, subrogation.PotentialRecoveryAmount)
	}

	subrogation.ActualRecoveryAmount = newActual
	if newActual == subrogation.PotentialRecoveryAmount {
		subrogation.Status = domain.SubrogationStatusRecovered
	} else {
		subrogation.Status = domain.SubrogationStatusInProgress
	}

	userID, _ := actorFromContext(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSubrogationRepository(tx).Update(ctx, subrogation); err != nil {
			return fmt.Errorf("failed to update subrogation: %w", err)
		}
		return repository.NewClaimRepository(tx).AddLogEntry(ctx, &domain.ClaimLogEntry{
			ClaimID:  subrogation.ClaimID,
			Entry:    fmt.Sprintf("Subrogation recovery of %.2f booked (%.2f of %.2f recovered)", req.ActualRecoveryAmount, newActual, subrogation.PotentialRecoveryAmount),
			AuthorID: userID,
			LoggedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subrogation recovery recorded",
		zap.String("subrogation_id", id.String()),
		zap.Float64("recovered", req.ActualRecoveryAmount),
		zap.String("status", string(subrogation.Status)))

	dto := mapper.ToSubrogationDTO(subrogation)
	return &dto, nil
}

// Close ends the recovery effort regardless of how much was collected
func (s *SubrogationService) Close(ctx context.Context, id uuid.UUID) (*domain.SubrogationDTO, error) {
	subrogation, err := s.subrogationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subrogation: %w", err)
	}

	if subrogation.Status != domain.SubrogationStatusClosed {
		subrogation.Status = domain.SubrogationStatusClosed
		if err := s.subrogationRepo.Update(ctx, subrogation); err != nil {
			return nil, fmt.Errorf("failed to close subrogation: %w", err)
		}
	}

	dto := mapper.ToSubrogationDTO(subrogation)
	return &dto, nil
}
