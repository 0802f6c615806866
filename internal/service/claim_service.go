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

// validClaimTransitions defines the claim workflow. CLOSED is terminal.
var validClaimTransitions = map[domain.ClaimStatus][]domain.ClaimStatus{
	domain.ClaimStatusOpen:        {domain.ClaimStatusUnderReview, domain.ClaimStatusClosed},
	domain.ClaimStatusUnderReview: {domain.ClaimStatusSettled, domain.ClaimStatusClosed},
	domain.ClaimStatusSettled:     {domain.ClaimStatusClosed},
	domain.ClaimStatusClosed:      {},
}

type ClaimService struct {
	claimRepo       *repository.ClaimRepository
	transactionRepo *repository.TransactionRepository
	policyRepo      *repository.PolicyRepository
	partyRepo       *repository.PartyRepository
	numberSeq       *NumberSequenceService
	logger          *zap.Logger
	db              *gorm.DB
}

func NewClaimService(
	claimRepo *repository.ClaimRepository,
	transactionRepo *repository.TransactionRepository,
	policyRepo *repository.PolicyRepository,
	partyRepo *repository.PartyRepository,
	numberSeq *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *ClaimService {
	return &ClaimService{
		claimRepo:       claimRepo,
		transactionRepo: transactionRepo,
		policyRepo:      policyRepo,
		partyRepo:       partyRepo,
		numberSeq:       numberSeq,
		logger:          logger,
		db:              db,
	}
}

// File opens a claim against a policy. The date of loss must not be after the
// reported date. The claim and its opening log entry commit together.
func (s *ClaimService) File(ctx context.Context, req *domain.FileClaimRequest) (*domain.ClaimDTO, error) {
	policy, err := s.policyRepo.GetByID(ctx, req.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: policy", ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	reportedDate := time.Now()
	if req.ReportedDate != nil {
		reportedDate = *req.ReportedDate
	}
	if req.DateOfLoss.After(reportedDate) {
		return nil, ErrInvalidClaimDates
	}

	if req.ReportedByID != nil {
		if _, err := s.partyRepo.GetByID(ctx, *req.ReportedByID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: reporting party", ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to get reporting party: %w", err)
		}
	}

	claimNumber, err := s.numberSeq.GenerateClaimNumber(ctx)
	if err != nil {
		return nil, err
	}

	claim := &domain.Claim{
		ClaimNumber:  claimNumber,
		PolicyID:     policy.ID,
		Status:       domain.ClaimStatusOpen,
		DateOfLoss:   req.DateOfLoss,
		ReportedDate: reportedDate,
		ReportedByID: req.ReportedByID,
		Description:  req.Description,
	}

	userID, _ := actorFromContext(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewClaimRepository(tx)
		if err := txRepo.Create(ctx, claim); err != nil {
			return fmt.Errorf("failed to create claim: %w", err)
		}
		entry := &domain.ClaimLogEntry{
			ClaimID:  claim.ID,
			Entry:    fmt.Sprintf("Claim filed against policy %s", policy.PolicyNumber),
			AuthorID: userID,
			LoggedAt: time.Now(),
		}
		if err := txRepo.AddLogEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to write opening log entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("claim filed",
		zap.String("claim_id", claim.ID.String()),
		zap.String("claim_number", claim.ClaimNumber),
		zap.String("policy_id", policy.ID.String()))

	dto := mapper.ToClaimDTO(claim)
	return &dto, nil
}

func (s *ClaimService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClaimDetailDTO, error) {
	claim, err := s.claimRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	incurred, err := s.transactionRepo.SumIncurred(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum incurred: %w", err)
	}
	reserved, err := s.transactionRepo.SumByType(ctx, id, domain.TransactionTypeReserve)
	if err != nil {
		return nil, fmt.Errorf("failed to sum reserves: %w", err)
	}
	paid, err := s.transactionRepo.SumPaid(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	dto := mapper.ToClaimDetailDTO(claim, incurred, reserved, paid)
	return &dto, nil
}

func (s *ClaimService) List(ctx context.Context, page, pageSize int, status *domain.ClaimStatus) ([]domain.ClaimDTO, int64, error) {
	claims, total, err := s.claimRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list claims: %w", err)
	}

	dtos := make([]domain.ClaimDTO, len(claims))
	for i := range claims {
		dtos[i] = mapper.ToClaimDTO(&claims[i])
	}
	return dtos, total, nil
}

func (s *ClaimService) ListByPolicy(ctx context.Context, policyID uuid.UUID) ([]domain.ClaimDTO, error) {
	claims, err := s.claimRepo.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	dtos := make([]domain.ClaimDTO, len(claims))
	for i := range claims {
		dtos[i] = mapper.ToClaimDTO(&claims[i])
	}
	return dtos, nil
}

// UpdateStatus moves a claim through its workflow and records the move in the
// claim log
func (s *ClaimService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateClaimStatusRequest) (*domain.ClaimDTO, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	if claim.Status == req.Status {
		dto := mapper.ToClaimDTO(claim)
		return &dto, nil
	}

	allowed := false
	for _, next := range validClaimTransitions[claim.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, claim.Status, req.Status)
	}

	fromStatus := claim.Status
	userID, _ := actorFromContext(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewClaimRepository(tx)
		if err := txRepo.UpdateStatus(ctx, id, req.Status); err != nil {
			return fmt.Errorf("failed to update claim status: %w", err)
		}
		entryText := fmt.Sprintf("Status changed from %s to %s", fromStatus, req.Status)
		if req.Notes != "" {
			entryText = fmt.Sprintf("%s: %s", entryText, req.Notes)
		}
		return txRepo.AddLogEntry(ctx, &domain.ClaimLogEntry{
			ClaimID:  id,
			Entry:    entryText,
			AuthorID: userID,
			LoggedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	claim.Status = req.Status
	s.logger.Info("claim status updated",
		zap.String("claim_id", id.String()),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(req.Status)))

	dto := mapper.ToClaimDTO(claim)
	return &dto, nil
}

// AddLogEntry appends a narrative entry to the claim log
func (s *ClaimService) AddLogEntry(ctx context.Context, claimID uuid.UUID, req *domain.AddClaimLogEntryRequest) (*domain.ClaimLogEntryDTO, error) {
	if _, err := s.claimRepo.GetByID(ctx, claimID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	userID, _ := actorFromContext(ctx)
	entry := &domain.ClaimLogEntry{
		ClaimID:  claimID,
		Entry:    req.Entry,
		AuthorID: userID,
		LoggedAt: time.Now(),
	}
	if err := s.claimRepo.AddLogEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add log entry: %w", err)
	}

	dto := mapper.ToClaimLogEntryDTO(entry)
	return &dto, nil
}

func (s *ClaimService) GetLogEntries(ctx context.Context, claimID uuid.UUID) ([]domain.ClaimLogEntryDTO, error) {
	entries, err := s.claimRepo.ListLogEntries(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}

	dtos := make([]domain.ClaimLogEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToClaimLogEntryDTO(&entries[i])
	}
	return dtos, nil
}

// PostTransaction appends a reserve or payment to the claim ledger. The ledger
// is append-only; corrections are posted as new entries.
func (s *ClaimService) PostTransaction(ctx context.Context, claimID uuid.UUID, req *domain.PostTransactionRequest) (*domain.FinancialTransactionDTO, error) {
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

	if !req.TransactionType.IsValid() {
		return nil, fmt.Errorf("%w: transaction type %q", ErrInvalidInput, req.TransactionType)
	}

	currency := req.Currency
	if currency == "" {
		currency = "CHF"
	}
	txDate := time.Now()
	if req.TransactionDate != nil {
		txDate = *req.TransactionDate
	}

	transaction := &domain.FinancialTransaction{
		ClaimID:         claimID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Currency:        currency,
		TransactionDate: txDate,
		Description:     req.Description,
	}

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to post transaction: %w", err)
	}

	s.logger.Info("transaction posted",
		zap.String("claim_id", claimID.String()),
		zap.String("type", string(req.TransactionType)),
		zap.Float64("amount", req.Amount))

	dto := mapper.ToFinancialTransactionDTO(transaction)
	return &dto, nil
}

func (s *ClaimService) GetTransactions(ctx context.Context, claimID uuid.UUID) ([]domain.FinancialTransactionDTO, error) {
	transactions, err := s.transactionRepo.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	dtos := make([]domain.FinancialTransactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = mapper.ToFinancialTransactionDTO(&transactions[i])
	}
	return dtos, nil
}
