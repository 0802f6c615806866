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

// RoleService is the party-role registry: it links parties to the roles they
// play on records. The (kind, id) reference crosses tables, so the schema
// cannot enforce it; AssignRole validates the kind and the target row before
// any write.
type RoleService struct {
	roleRepo  *repository.PartyRoleRepository
	partyRepo *repository.PartyRepository
	logger    *zap.Logger
	db        *gorm.DB
}

func NewRoleService(
	roleRepo *repository.PartyRoleRepository,
	partyRepo *repository.PartyRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *RoleService {
	return &RoleService{
		roleRepo:  roleRepo,
		partyRepo: partyRepo,
		logger:    logger,
		db:        db,
	}
}

// AssignRole associates a party with a role on a record. Singular roles
// (Insured, Lead Insurer) may be held by at most one party per record.
func (s *RoleService) AssignRole(ctx context.Context, req *domain.AssignRoleRequest) (*domain.PartyRoleDTO, error) {
	if !req.RecordKind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordKind, req.RecordKind)
	}

	if _, err := s.partyRepo.GetByID(ctx, req.PartyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get party: %w", err)
	}

	exists, err := s.recordExists(ctx, req.RecordKind, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify record: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s %s", ErrRecordNotFound, req.RecordKind, req.RecordID)
	}

	duplicate, err := s.roleRepo.Exists(ctx, req.PartyID, req.RoleName, req.RecordKind, req.RecordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateRole
	}

	if req.RoleName.IsSingular() {
		count, err := s.roleRepo.CountByRole(ctx, req.RecordKind, req.RecordID, req.RoleName)
		if err != nil {
			return nil, fmt.Errorf("failed to check singular role: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %s", ErrSingularRoleTaken, req.RoleName)
		}
	}

	role := &domain.PartyRole{
		PartyID:    req.PartyID,
		RoleName:   req.RoleName,
		RecordKind: req.RecordKind,
		RecordID:   req.RecordID,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	s.logger.Info("role assigned",
		zap.String("party_id", req.PartyID.String()),
		zap.String("role", string(req.RoleName)),
		zap.String("record_kind", string(req.RecordKind)),
		zap.String("record_id", req.RecordID.String()))

	dto := mapper.ToPartyRoleDTO(role)
	return &dto, nil
}

// RolesFor returns all (party, role) pairs attached to a record
func (s *RoleService) RolesFor(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID) ([]domain.PartyRoleDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordKind, kind)
	}

	roles, err := s.roleRepo.ListForRecord(ctx, kind, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	dtos := make([]domain.PartyRoleDTO, len(roles))
	for i := range roles {
		dtos[i] = mapper.ToPartyRoleDTO(&roles[i])
	}
	return dtos, nil
}

// PartyInRole returns the single party holding a role on a record, nil when
// nobody holds it, and ErrAmbiguousRole when the caller assumed singularity
// but multiple rows exist.
func (s *RoleService) PartyInRole(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID, roleName domain.RoleName) (*domain.PartyDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordKind, kind)
	}

	roles, err := s.roleRepo.FindByRole(ctx, kind, recordID, roleName)
	if err != nil {
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	switch len(roles) {
	case 0:
		return nil, nil
	case 1:
		if roles[0].Party == nil {
			return nil, fmt.Errorf("%w: party %s", ErrRecordNotFound, roles[0].PartyID)
		}
		dto := mapper.ToPartyDTO(roles[0].Party)
		return &dto, nil
	default:
		return nil, fmt.Errorf("%w: %s on %s %s", ErrAmbiguousRole, roleName, kind, recordID)
	}
}

// RemoveRole deletes one role association
func (s *RoleService) RemoveRole(ctx context.Context, id uuid.UUID) error {
	return s.roleRepo.Delete(ctx, id)
}

// VerifyRecordExists checks that a polymorphic (kind, id) reference resolves
// to an existing row. Returns ErrRecordNotFound when it does not.
func (s *RoleService) VerifyRecordExists(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID) error {
	exists, err := s.recordExists(ctx, kind, recordID)
	if err != nil {
		return fmt.Errorf("failed to verify record: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, kind, recordID)
	}
	return nil
}

// recordExists resolves the closed RecordKind enum to the right table and
// checks the target row is present
func (s *RoleService) recordExists(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID) (bool, error) {
	var model interface{}
	switch kind {
	case domain.RecordKindParty:
		model = &domain.Party{}
	case domain.RecordKindSubmission:
		model = &domain.Submission{}
	case domain.RecordKindQuote:
		model = &domain.Quote{}
	case domain.RecordKindPolicy:
		model = &domain.Policy{}
	case domain.RecordKindClaim:
		model = &domain.Claim{}
	case domain.RecordKindTreaty:
		model = &domain.ReinsuranceTreaty{}
	case domain.RecordKindCashCall:
		model = &domain.CashCall{}
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidRecordKind, kind)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(model).Where("id = ?", recordID).Count(&count).Error
	return count > 0, err
}
