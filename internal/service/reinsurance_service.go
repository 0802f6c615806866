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

type ReinsuranceService struct {
	reinsuranceRepo *repository.ReinsuranceRepository
	policyRepo      *repository.PolicyRepository
	partyRepo       *repository.PartyRepository
	roleRepo        *repository.PartyRoleRepository
	logger          *zap.Logger
	db              *gorm.DB
}

func NewReinsuranceService(
	reinsuranceRepo *repository.ReinsuranceRepository,
	policyRepo *repository.PolicyRepository,
	partyRepo *repository.PartyRepository,
	roleRepo *repository.PartyRoleRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *ReinsuranceService {
	return &ReinsuranceService{
		reinsuranceRepo: reinsuranceRepo,
		policyRepo:      policyRepo,
		partyRepo:       partyRepo,
		roleRepo:        roleRepo,
		logger:          logger,
		db:              db,
	}
}

// CreateTreaty opens a treaty on a policy. A policy carries at most one treaty.
func (s *ReinsuranceService) CreateTreaty(ctx context.Context, policyID uuid.UUID, req *domain.CreateTreatyRequest) (*domain.TreatyDTO, error) {
	if _, err := s.policyRepo.GetByID(ctx, policyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	if _, err := s.reinsuranceRepo.GetTreatyByPolicy(ctx, policyID); err == nil {
		return nil, fmt.Errorf("%w: policy already has a treaty", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing treaty: %w", err)
	}

	treatyType := req.TreatyType
	if treatyType == "" {
		treatyType = domain.TreatyTypeFacultative
	}

	treaty := &domain.ReinsuranceTreaty{
		PolicyID:   policyID,
		TreatyName: req.TreatyName,
		TreatyType: treatyType,
	}

	if err := s.reinsuranceRepo.CreateTreaty(ctx, treaty); err != nil {
		return nil, fmt.Errorf("failed to create treaty: %w", err)
	}

	s.logger.Info("treaty created",
		zap.String("treaty_id", treaty.ID.String()),
		zap.String("policy_id", policyID.String()),
		zap.String("treaty_type", string(treatyType)))

	dto := mapper.ToTreatyDTO(treaty)
	return &dto, nil
}

func (s *ReinsuranceService) GetTreaty(ctx context.Context, treatyID uuid.UUID) (*domain.TreatyDTO, error) {
	treaty, err := s.reinsuranceRepo.GetTreatyByID(ctx, treatyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get treaty: %w", err)
	}

	dto := mapper.ToTreatyDTO(treaty)
	return &dto, nil
}

// DefineLayer appends a layer to the tower. Layers must be defined bottom-up
// and contiguous: the new layer's attachment point must equal the previous
// layer's attachment point plus its limit, and the ground layer attaches at 0.
func (s *ReinsuranceService) DefineLayer(ctx context.Context, treatyID uuid.UUID, req *domain.DefineLayerRequest) (*domain.LayerDTO, error) {
	if _, err := s.reinsuranceRepo.GetTreatyByID(ctx, treatyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get treaty: %w", err)
	}

	layers, err := s.reinsuranceRepo.ListLayers(ctx, treatyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}

	if req.LayerOrder != len(layers)+1 {
		return nil, fmt.Errorf("%w: next layer order is %d", ErrInvalidInput, len(layers)+1)
	}

	expectedAttachment := 0.0
	if len(layers) > 0 {
		top := layers[len(layers)-1]
		expectedAttachment = top.AttachmentPoint + top.LayerLimit
	}
	if req.AttachmentPoint != expectedAttachment {
		return nil, fmt.Errorf("%w: expected attachment %.2f, got %.2f",
			ErrNonContiguousLayer, expectedAttachment, req.AttachmentPoint)
	}

	layer := &domain.ReinsuranceLayer{
		TreatyID:        treatyID,
		LayerOrder:      req.LayerOrder,
		AttachmentPoint: req.AttachmentPoint,
		LayerLimit:      req.LayerLimit,
		Premium:         req.Premium,
	}

	if err := s.reinsuranceRepo.AddLayer(ctx, layer); err != nil {
		return nil, fmt.Errorf("failed to add layer: %w", err)
	}

	s.logger.Info("layer defined",
		zap.String("treaty_id", treatyID.String()),
		zap.Int("layer_order", req.LayerOrder),
		zap.Float64("attachment", req.AttachmentPoint),
		zap.Float64("limit", req.LayerLimit))

	dto := mapper.ToLayerDTO(layer)
	return &dto, nil
}

// AddParticipant places a reinsurer's share on a layer. The new share may not
// push the layer total above 100 percent. The reinsurer gets the Reinsurer
// role on the treaty's policy in the same transaction.
func (s *ReinsuranceService) AddParticipant(ctx context.Context, layerID uuid.UUID, req *domain.AddLayerParticipantRequest) (*domain.LayerParticipantDTO, error) {
	layer, err := s.reinsuranceRepo.GetLayerByID(ctx, layerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get layer: %w", err)
	}

	if _, err := s.partyRepo.GetByID(ctx, req.ReinsurerPartyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reinsurer party", ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get reinsurer party: %w", err)
	}

	for _, existing := range layer.Participants {
		if existing.ReinsurerPartyID == req.ReinsurerPartyID {
			return nil, fmt.Errorf("%w: reinsurer already participates on layer", ErrConflict)
		}
	}

	currentTotal, err := s.reinsuranceRepo.SumParticipantShares(ctx, layerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum participant shares: %w", err)
	}
	if currentTotal+req.SharePercentage > 100+shareTolerance {
		return nil, fmt.Errorf("%w: %.2f placed, %.2f requested", ErrSharesExceedFull,
			currentTotal, req.SharePercentage)
	}

	status := req.Status
	if status == "" {
		status = domain.ParticipantStatusQuoted
	}

	participant := &domain.LayerParticipant{
		LayerID:          layerID,
		ReinsurerPartyID: req.ReinsurerPartyID,
		SharePercentage:  req.SharePercentage,
		Status:           status,
	}

	treaty, err := s.reinsuranceRepo.GetTreatyByID(ctx, layer.TreatyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get treaty: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewReinsuranceRepository(tx).AddParticipant(ctx, participant); err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}

		txRoleRepo := repository.NewPartyRoleRepository(tx)
		exists, err := txRoleRepo.Exists(ctx, req.ReinsurerPartyID, domain.RoleReinsurer, domain.RecordKindPolicy, treaty.PolicyID)
		if err != nil {
			return fmt.Errorf("failed to check reinsurer role: %w", err)
		}
		if !exists {
			return txRoleRepo.Create(ctx, &domain.PartyRole{
				PartyID:    req.ReinsurerPartyID,
				RoleName:   domain.RoleReinsurer,
				RecordKind: domain.RecordKindPolicy,
				RecordID:   treaty.PolicyID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("layer participant added",
		zap.String("layer_id", layerID.String()),
		zap.String("reinsurer_party_id", req.ReinsurerPartyID.String()),
		zap.Float64("share", req.SharePercentage))

	dto := mapper.ToLayerParticipantDTO(participant)
	return &dto, nil
}

// GetTower returns the tower projection for a policy: layers bottom-up with
// their coverage strings, participant panels and balance flags
func (s *ReinsuranceService) GetTower(ctx context.Context, policyID uuid.UUID) (*domain.TowerViewDTO, error) {
	policy, err := s.policyRepo.GetByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	treaty, err := s.reinsuranceRepo.GetTreatyByPolicy(ctx, policyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTreaty
		}
		return nil, fmt.Errorf("failed to get treaty: %w", err)
	}

	view := &domain.TowerViewDTO{
		PolicyID:     policyID,
		PolicyNumber: policy.PolicyNumber,
		TreatyID:     treaty.ID,
		TreatyName:   treaty.TreatyName,
		TreatyType:   treaty.TreatyType,
		Layers:       make([]domain.TowerLayerViewDTO, len(treaty.Layers)),
	}

	for i := range treaty.Layers {
		layer := &treaty.Layers[i]

		var placed float64
		for _, p := range layer.Participants {
			placed += p.SharePercentage
		}

		view.Layers[i] = domain.TowerLayerViewDTO{
			LayerDTO:       mapper.ToLayerDTO(layer),
			CoverageString: formatCoverage(layer.LayerLimit, layer.AttachmentPoint),
			Unplaced:       len(layer.Participants) == 0,
			Balanced:       math.Abs(placed-100) <= shareTolerance,
		}
		view.TotalTowerLimit += layer.LayerLimit
	}

	return view, nil
}

// formatCoverage renders the market shorthand for a layer, e.g.
// "40000000 xs 10000000" for a 40M layer attaching at 10M
func formatCoverage(limit, attachment float64) string {
	return fmt.Sprintf("%s xs %s", formatAmount(limit), formatAmount(attachment))
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
