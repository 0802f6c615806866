package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/mapper"
	"github.com/lucerne-re/policy-api/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cashCallPaymentTermDays is the payment window granted on an issued call
const cashCallPaymentTermDays = 30

type CashCallService struct {
	cashCallRepo    *repository.CashCallRepository
	claimRepo       *repository.ClaimRepository
	transactionRepo *repository.TransactionRepository
	reinsuranceRepo *repository.ReinsuranceRepository
	numberSeq       *NumberSequenceService
	logger          *zap.Logger
	db              *gorm.DB
}

func NewCashCallService(
	cashCallRepo *repository.CashCallRepository,
	claimRepo *repository.ClaimRepository,
	transactionRepo *repository.TransactionRepository,
	reinsuranceRepo *repository.ReinsuranceRepository,
	numberSeq *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *CashCallService {
	return &CashCallService{
		cashCallRepo:    cashCallRepo,
		claimRepo:       claimRepo,
		transactionRepo: transactionRepo,
		reinsuranceRepo: reinsuranceRepo,
		numberSeq:       numberSeq,
		logger:          logger,
		db:              db,
	}
}

// participantTarget is one participant's cumulative entitlement on a layer
// for the current incurred amount
type participantTarget struct {
	participant *domain.LayerParticipant
	amount      decimal.Decimal
}

// RunAllocation walks the tower bottom-up and issues cash calls for the
// claim's incurred amount. Per layer, the penetration is the incurred amount
// above the attachment point capped at the layer limit, split across
// participants by share with half-up rounding to the cent; any residual cent
// goes to the largest share. Calls are incremental: each participant is called
// for the difference between its cumulative target and what was already
// called, never below zero, so re-runs with an unchanged incurred amount issue
// nothing. All issued calls commit in one transaction.
func (s *CashCallService) RunAllocation(ctx context.Context, claimID uuid.UUID, req *domain.RunAllocationRequest) (*domain.AllocationResultDTO, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	var incurred float64
	if req != nil && req.IncurredAmount != nil {
		incurred = *req.IncurredAmount
	} else {
		incurred, err = s.transactionRepo.SumIncurred(ctx, claimID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum incurred: %w", err)
		}
	}
	if incurred <= 0 {
		return &domain.AllocationResultDTO{
			ClaimID:        claimID,
			IncurredAmount: incurred,
			IssuedCalls:    []domain.CashCallDTO{},
		}, nil
	}

	treaty, err := s.reinsuranceRepo.GetTreatyByPolicy(ctx, claim.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoTreaty
		}
		return nil, fmt.Errorf("failed to get treaty: %w", err)
	}

	incurredDec := decimal.NewFromFloat(incurred)
	layersTouched := 0

	type pendingCall struct {
		participant *domain.LayerParticipant
		delta       decimal.Decimal
	}
	var pending []pendingCall

	for i := range treaty.Layers {
		layer := &treaty.Layers[i]

		penetration := layerPenetration(incurredDec, layer)
		if penetration.Sign() <= 0 {
			continue
		}

		// An unplaced layer is retained by the cedent, nothing to call
		if len(layer.Participants) == 0 {
			continue
		}

		var placed float64
		for _, p := range layer.Participants {
			placed += p.SharePercentage
		}
		if math.Abs(placed-100) > shareTolerance {
			return nil, fmt.Errorf("%w: layer %d has %.2f placed", ErrUnbalancedLayer,
				layer.LayerOrder, placed)
		}

		layersTouched++

		targets := splitByShares(penetration, layer.Participants)
		for _, target := range targets {
			called, err := s.cashCallRepo.SumForParticipant(ctx, claimID, target.participant.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to sum prior calls: %w", err)
			}
			delta := target.amount.Sub(decimal.NewFromFloat(called))
			if delta.Sign() <= 0 {
				continue
			}
			pending = append(pending, pendingCall{participant: target.participant, delta: delta})
		}
	}

	// Numbers come from their own sequence transaction, before the run
	// commits, same as submission and policy numbering
	callNumbers := make([]string, len(pending))
	for i := range pending {
		callNumbers[i], err = s.numberSeq.GenerateCashCallNumber(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	dueDate := now.AddDate(0, 0, cashCallPaymentTermDays)
	issued := make([]*domain.CashCall, 0, len(pending))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCallRepo := repository.NewCashCallRepository(tx)
		for i, p := range pending {
			call := &domain.CashCall{
				CallNumber:    callNumbers[i],
				ClaimID:       claimID,
				ParticipantID: p.participant.ID,
				CallAmount:    p.delta.InexactFloat64(),
				Currency:      "CHF",
				Status:        domain.CashCallStatusIssued,
				IssuedDate:    now,
				DueDate:       dueDate,
				Version:       1,
			}
			if err := txCallRepo.Create(ctx, call); err != nil {
				return fmt.Errorf("failed to issue cash call: %w", err)
			}
			call.Participant = p.participant
			issued = append(issued, call)
		}

		if len(issued) > 0 {
			userID, _ := actorFromContext(ctx)
			return repository.NewClaimRepository(tx).AddLogEntry(ctx, &domain.ClaimLogEntry{
				ClaimID:  claimID,
				Entry:    fmt.Sprintf("Allocation run issued %d cash call(s) for incurred %.2f", len(issued), incurred),
				AuthorID: userID,
				LoggedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &domain.AllocationResultDTO{
		ClaimID:        claimID,
		IncurredAmount: incurred,
		IssuedCalls:    make([]domain.CashCallDTO, len(issued)),
		LayersTouched:  layersTouched,
	}
	for i, call := range issued {
		result.IssuedCalls[i] = mapper.ToCashCallDTO(call)
		result.TotalCalled += call.CallAmount
	}

	s.logger.Info("allocation run completed",
		zap.String("claim_id", claimID.String()),
		zap.Float64("incurred", incurred),
		zap.Int("calls_issued", len(issued)),
		zap.Float64("total_called", result.TotalCalled),
		zap.Int("layers_touched", layersTouched))

	return result, nil
}

// layerPenetration returns how much of the incurred amount falls into a
// layer: the amount above the attachment point, capped at the layer limit and
// floored at zero
func layerPenetration(incurred decimal.Decimal, layer *domain.ReinsuranceLayer) decimal.Decimal {
	attachment := decimal.NewFromFloat(layer.AttachmentPoint)
	limit := decimal.NewFromFloat(layer.LayerLimit)

	penetration := incurred.Sub(attachment)
	if penetration.Sign() < 0 {
		return decimal.Zero
	}
	if penetration.GreaterThan(limit) {
		return limit
	}
	return penetration
}

// splitByShares divides a layer penetration across participants by share
// percentage, rounding each portion half-up to the cent. The rounded portions
// are reconciled against the rounded penetration and any residual cent lands
// on the participant with the largest share, so the split always sums exactly
// to the layer's penetration.
func splitByShares(penetration decimal.Decimal, participants []domain.LayerParticipant) []participantTarget {
	ordered := make([]*domain.LayerParticipant, len(participants))
	for i := range participants {
		ordered[i] = &participants[i]
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].SharePercentage != ordered[j].SharePercentage {
			return ordered[i].SharePercentage > ordered[j].SharePercentage
		}
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	hundred := decimal.NewFromInt(100)
	targets := make([]participantTarget, len(ordered))
	sum := decimal.Zero
	for i, p := range ordered {
		share := decimal.NewFromFloat(p.SharePercentage)
		amount := penetration.Mul(share).Div(hundred).Round(2)
		targets[i] = participantTarget{participant: p, amount: amount}
		sum = sum.Add(amount)
	}

	if len(targets) > 0 {
		residual := penetration.Round(2).Sub(sum)
		if !residual.IsZero() {
			targets[0].amount = targets[0].amount.Add(residual)
		}
	}

	return targets
}

func (s *CashCallService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CashCallDTO, error) {
	call, err := s.cashCallRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cash call: %w", err)
	}

	dto := mapper.ToCashCallDTO(call)
	return &dto, nil
}

func (s *CashCallService) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]domain.CashCallDTO, error) {
	calls, err := s.cashCallRepo.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash calls: %w", err)
	}

	dtos := make([]domain.CashCallDTO, len(calls))
	for i := range calls {
		dtos[i] = mapper.ToCashCallDTO(&calls[i])
	}
	return dtos, nil
}

// MarkPaid settles an issued call. PAID is terminal.
func (s *CashCallService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.CashCallDTO, error) {
	call, err := s.cashCallRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cash call: %w", err)
	}

	if call.Status == domain.CashCallStatusPaid {
		return nil, ErrCashCallPaid
	}

	if err := s.cashCallRepo.MarkPaid(ctx, call, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to mark cash call paid: %w", err)
	}

	s.logger.Info("cash call paid",
		zap.String("cash_call_id", id.String()),
		zap.String("call_number", call.CallNumber),
		zap.Float64("amount", call.CallAmount))

	dto := mapper.ToCashCallDTO(call)
	return &dto, nil
}

// ListOverdue returns issued calls past their due date
func (s *CashCallService) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.CashCallDTO, error) {
	calls, err := s.cashCallRepo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue cash calls: %w", err)
	}

	dtos := make([]domain.CashCallDTO, len(calls))
	for i := range calls {
		dtos[i] = mapper.ToCashCallDTO(&calls[i])
	}
	return dtos, nil
}
