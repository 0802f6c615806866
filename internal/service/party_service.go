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

type PartyService struct {
	partyRepo *repository.PartyRepository
	roleRepo  *repository.PartyRoleRepository
	logger    *zap.Logger
	db        *gorm.DB
}

func NewPartyService(
	partyRepo *repository.PartyRepository,
	roleRepo *repository.PartyRoleRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		roleRepo:  roleRepo,
		logger:    logger,
		db:        db,
	}
}

func (s *PartyService) Create(ctx context.Context, req *domain.CreatePartyRequest) (*domain.PartyDTO, error) {
	if !req.PartyType.IsValid() {
		return nil, fmt.Errorf("%w: party type %q", ErrInvalidInput, req.PartyType)
	}

	country := req.Country
	if country == "" {
		country = "Switzerland"
	}

	party := &domain.Party{
		PartyType: req.PartyType,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		Country:   country,
	}

	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, fmt.Errorf("failed to create party: %w", err)
	}

	s.logger.Info("party created",
		zap.String("party_id", party.ID.String()),
		zap.String("party_type", string(party.PartyType)),
		zap.String("name", party.Name))

	dto := mapper.ToPartyDTO(party)
	return &dto, nil
}

func (s *PartyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PartyDTO, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	dto := mapper.ToPartyDTO(party)
	return &dto, nil
}

func (s *PartyService) List(ctx context.Context, page, pageSize int) ([]domain.PartyDTO, int64, error) {
	parties, total, err := s.partyRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list parties: %w", err)
	}

	dtos := make([]domain.PartyDTO, len(parties))
	for i := range parties {
		dtos[i] = mapper.ToPartyDTO(&parties[i])
	}
	return dtos, total, nil
}

// ListInsureds returns every party holding the Insured role on any record
func (s *PartyService) ListInsureds(ctx context.Context) ([]domain.PartyDTO, error) {
	parties, err := s.partyRepo.ListInsureds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list insured parties: %w", err)
	}

	dtos := make([]domain.PartyDTO, len(parties))
	for i := range parties {
		dtos[i] = mapper.ToPartyDTO(&parties[i])
	}
	return dtos, nil
}

// Update changes contact fields only. Party identity (type, name) is immutable.
func (s *PartyService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePartyRequest) (*domain.PartyDTO, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	if req.Email != "" {
		party.Email = req.Email
	}
	if req.Phone != "" {
		party.Phone = req.Phone
	}
	if req.Address != "" {
		party.Address = req.Address
	}
	if req.City != "" {
		party.City = req.City
	}
	if req.Country != "" {
		party.Country = req.Country
	}

	if err := s.partyRepo.Update(ctx, party); err != nil {
		return nil, fmt.Errorf("failed to update party: %w", err)
	}

	dto := mapper.ToPartyDTO(party)
	return &dto, nil
}

func (s *PartyService) Search(ctx context.Context, query string, limit int) ([]domain.PartyDTO, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	parties, err := s.partyRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search parties: %w", err)
	}

	dtos := make([]domain.PartyDTO, len(parties))
	for i := range parties {
		dtos[i] = mapper.ToPartyDTO(&parties[i])
	}
	return dtos, nil
}
