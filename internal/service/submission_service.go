package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/auth"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/mapper"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status transition rules: the lifecycle only moves forward. DECLINED is
// reachable from any non-terminal status; BOUND and DECLINED are terminal.
// Regressions are not listed and therefore rejected.
var validStatusTransitions = map[domain.SubmissionStatus][]domain.SubmissionStatus{
	domain.SubmissionStatusOpen:     {domain.SubmissionStatusInReview, domain.SubmissionStatusDeclined},
	domain.SubmissionStatusInReview: {domain.SubmissionStatusQuoted, domain.SubmissionStatusDeclined},
	domain.SubmissionStatusQuoted:   {domain.SubmissionStatusBound, domain.SubmissionStatusDeclined},
	domain.SubmissionStatusBound:    {},
	domain.SubmissionStatusDeclined: {},
}

// Priority weights by broker tier and risk appetite
var brokerTierScores = map[domain.BrokerTier]int{
	domain.BrokerTierA: 30,
	domain.BrokerTierB: 15,
	domain.BrokerTierC: 5,
}

var riskAppetiteScores = map[domain.RiskAppetite]int{
	domain.RiskAppetiteIn:    20,
	domain.RiskAppetiteRefer: 5,
	domain.RiskAppetiteOut:   0,
}

type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	quoteRepo      *repository.QuoteRepository
	partyRepo      *repository.PartyRepository
	roleRepo       *repository.PartyRoleRepository
	numberSeq      *NumberSequenceService
	logger         *zap.Logger
	db             *gorm.DB
}

func NewSubmissionService(
	submissionRepo *repository.SubmissionRepository,
	quoteRepo *repository.QuoteRepository,
	partyRepo *repository.PartyRepository,
	roleRepo *repository.PartyRoleRepository,
	numberSeq *NumberSequenceService,
	logger *zap.Logger,
	db *gorm.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		quoteRepo:      quoteRepo,
		partyRepo:      partyRepo,
		roleRepo:       roleRepo,
		numberSeq:      numberSeq,
		logger:         logger,
		db:             db,
	}
}

func (s *SubmissionService) Create(ctx context.Context, req *domain.CreateSubmissionRequest) (*domain.SubmissionDTO, error) {
	if req.RiskAppetite != "" && !req.RiskAppetite.IsValid() {
		return nil, fmt.Errorf("%w: risk appetite %q", ErrInvalidInput, req.RiskAppetite)
	}
	if req.BrokerTier != "" && !req.BrokerTier.IsValid() {
		return nil, fmt.Errorf("%w: broker tier %q", ErrInvalidInput, req.BrokerTier)
	}

	number, err := s.numberSeq.GenerateSubmissionNumber(ctx)
	if err != nil {
		return nil, err
	}

	appetite := req.RiskAppetite
	if appetite == "" {
		appetite = domain.RiskAppetiteRefer
	}

	submission := &domain.Submission{
		SubmissionNumber: number,
		Status:           domain.SubmissionStatusOpen,
		LineOfBusiness:   req.LineOfBusiness,
		Description:      req.Description,
		Completeness:     req.Completeness,
		RiskAppetite:     appetite,
		BrokerTier:       req.BrokerTier,
		EffectiveDate:    req.EffectiveDate,
		Version:          1,
	}
	submission.PriorityScore = computePriorityScore(submission)

	userID, userName := actorFromContext(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		history := &domain.SubmissionStatusHistory{
			SubmissionID:  submission.ID,
			ToStatus:      domain.SubmissionStatusOpen,
			ChangedByID:   userID,
			ChangedByName: userName,
			Notes:         "Submission created",
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if req.BrokerPartyID != nil {
			if err := tx.Create(&domain.PartyRole{
				PartyID:    *req.BrokerPartyID,
				RoleName:   domain.RoleBroker,
				RecordKind: domain.RecordKindSubmission,
				RecordID:   submission.ID,
			}).Error; err != nil {
				return fmt.Errorf("failed to assign broker role: %w", err)
			}
		}
		if req.InsuredPartyID != nil {
			if err := tx.Create(&domain.PartyRole{
				PartyID:    *req.InsuredPartyID,
				RoleName:   domain.RoleInsured,
				RecordKind: domain.RecordKindSubmission,
				RecordID:   submission.ID,
			}).Error; err != nil {
				return fmt.Errorf("failed to assign insured role: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("submission created",
		zap.String("submission_id", submission.ID.String()),
		zap.String("submission_number", submission.SubmissionNumber),
		zap.Int("priority_score", submission.PriorityScore))

	dto := mapper.ToSubmissionDTO(submission)
	return &dto, nil
}

func (s *SubmissionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.SubmissionDTO, error) {
	submission, err := s.submissionRepo.GetByIDWithQuotes(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	dto := mapper.ToSubmissionDTO(submission)
	return &dto, nil
}

func (s *SubmissionService) List(ctx context.Context, page, pageSize int, filters *repository.SubmissionFilters, sortBy repository.SubmissionSortOption) ([]domain.SubmissionDTO, int64, error) {
	submissions, total, err := s.submissionRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	dtos := make([]domain.SubmissionDTO, len(submissions))
	for i := range submissions {
		dtos[i] = mapper.ToSubmissionDTO(&submissions[i])
	}
	return dtos, total, nil
}

// Advance moves a submission along its lifecycle. The transition table defines
// the only legal moves; QUOTED additionally requires a SENT or ACCEPTED quote.
// The status write and the history row commit atomically.
func (s *SubmissionService) Advance(ctx context.Context, id uuid.UUID, req *domain.AdvanceSubmissionRequest) (*domain.SubmissionDTO, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, req.Status)
	}
	if submission.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionTerminal, submission.Status)
	}
	if !isValidTransition(submission.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, submission.Status, req.Status)
	}

	if req.Status == domain.SubmissionStatusQuoted {
		released, err := s.quoteRepo.HasReleasedQuote(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check quotes: %w", err)
		}
		if !released {
			return nil, ErrNoReleasedQuote
		}
	}

	fromStatus := submission.Status
	submission.Status = req.Status
	if req.Completeness != nil {
		submission.Completeness = *req.Completeness
	}
	submission.PriorityScore = computePriorityScore(submission)

	userID, userName := actorFromContext(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewSubmissionRepository(tx)
		if err := txRepo.Update(ctx, submission); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVersionConflict
			}
			return fmt.Errorf("failed to update submission: %w", err)
		}

		history := &domain.SubmissionStatusHistory{
			SubmissionID:  submission.ID,
			FromStatus:    &fromStatus,
			ToStatus:      req.Status,
			ChangedByID:   userID,
			ChangedByName: userName,
			Notes:         req.Notes,
		}
		return txRepo.AddStatusHistory(ctx, history)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("submission status changed",
		zap.String("submission_id", submission.ID.String()),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(req.Status)))

	dto := mapper.ToSubmissionDTO(submission)
	return &dto, nil
}

// GetStatusHistory returns all recorded transitions for a submission
func (s *SubmissionService) GetStatusHistory(ctx context.Context, id uuid.UUID) ([]domain.SubmissionStatusHistoryDTO, error) {
	if _, err := s.submissionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	history, err := s.submissionRepo.GetStatusHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}

	dtos := make([]domain.SubmissionStatusHistoryDTO, len(history))
	for i := range history {
		dtos[i] = mapper.ToSubmissionStatusHistoryDTO(&history[i])
	}
	return dtos, nil
}

// AddQuote attaches a PENDING quote from an insurer to a submission
func (s *SubmissionService) AddQuote(ctx context.Context, submissionID uuid.UUID, req *domain.AddQuoteRequest) (*domain.QuoteDTO, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s", ErrSubmissionTerminal, submission.Status)
	}

	if _, err := s.partyRepo.GetByID(ctx, req.InsurerPartyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: insurer party", ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get insurer party: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "CHF"
	}

	quote := &domain.Quote{
		SubmissionID:   submissionID,
		InsurerPartyID: req.InsurerPartyID,
		TotalPremium:   req.TotalPremium,
		Currency:       currency,
		Status:         domain.QuoteStatusPending,
		ValidUntil:     req.ValidUntil,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	quote, err = s.quoteRepo.GetByID(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetQuotes returns all quotes for a submission
func (s *SubmissionService) GetQuotes(ctx context.Context, submissionID uuid.UUID) ([]domain.QuoteDTO, error) {
	if _, err := s.submissionRepo.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	quotes, err := s.quoteRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}
	return dtos, nil
}

// UpdateQuoteStatus moves a quote between PENDING, SENT, ACCEPTED and
// REJECTED. Accepting a quote requires the submission to be QUOTED, allows at
// most one accepted quote, and releases the submission to the broker by
// setting its accepted flag.
func (s *SubmissionService) UpdateQuoteStatus(ctx context.Context, quoteID uuid.UUID, req *domain.UpdateQuoteStatusRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if req.Status == domain.QuoteStatusAccepted {
		submission, err := s.submissionRepo.GetByID(ctx, quote.SubmissionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get submission: %w", err)
		}
		if submission.Status != domain.SubmissionStatusQuoted {
			return nil, fmt.Errorf("%w: submission is %s", ErrSubmissionNotQuoted, submission.Status)
		}

		accepted, err := s.quoteRepo.CountAccepted(ctx, quote.SubmissionID)
		if err != nil {
			return nil, fmt.Errorf("failed to count accepted quotes: %w", err)
		}
		if accepted > 0 {
			return nil, ErrQuoteAlreadyAccepted
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := repository.NewQuoteRepository(tx).UpdateStatus(ctx, quoteID, req.Status); err != nil {
				return fmt.Errorf("failed to update quote status: %w", err)
			}

			submission.Accepted = true
			if err := repository.NewSubmissionRepository(tx).Update(ctx, submission); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVersionConflict
				}
				return fmt.Errorf("failed to flag submission accepted: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.quoteRepo.UpdateStatus(ctx, quoteID, req.Status); err != nil {
			return nil, fmt.Errorf("failed to update quote status: %w", err)
		}
	}

	quote, err = s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// isValidTransition checks if a status transition is allowed
func isValidTransition(from, to domain.SubmissionStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// computePriorityScore ranks a submission for the underwriting queue from its
// completeness, broker tier and appetite verdict
func computePriorityScore(submission *domain.Submission) int {
	score := submission.Completeness / 2
	score += brokerTierScores[submission.BrokerTier]
	score += riskAppetiteScores[submission.RiskAppetite]
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// actorFromContext returns the acting user's id and name, empty when the
// request is unauthenticated
func actorFromContext(ctx context.Context) (string, string) {
	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		return userCtx.UserID.String(), userCtx.DisplayName
	}
	return "", ""
}
