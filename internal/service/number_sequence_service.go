package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
)

// Entity types tracked by the number sequence table
const (
	sequenceEntitySubmission = "submission"
	sequenceEntityPolicy     = "policy"
	sequenceEntityClaim      = "claim"
	sequenceEntityCashCall   = "cash_call"
)

// Prefixes for generated business numbers
var sequencePrefixes = map[string]string{
	sequenceEntitySubmission: "SUB",
	sequenceEntityPolicy:     "POL",
	sequenceEntityClaim:      "CLM",
	sequenceEntityCashCall:   "CC",
}

// NumberSequenceService generates unique, formatted business numbers for
// submissions, policies, claims and cash calls. Each entity type keeps its
// own counter per year.
//
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
// Example: SUB-2026-00017, POL-2026-00004
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateSubmissionNumber generates a unique submission number, e.g. "SUB-2026-00017"
func (s *NumberSequenceService) GenerateSubmissionNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, sequenceEntitySubmission)
}

// GeneratePolicyNumber generates a unique policy number, e.g. "POL-2026-00004"
func (s *NumberSequenceService) GeneratePolicyNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, sequenceEntityPolicy)
}

// GenerateClaimNumber generates a unique claim number, e.g. "CLM-2026-00021"
func (s *NumberSequenceService) GenerateClaimNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, sequenceEntityClaim)
}

// GenerateCashCallNumber generates a unique cash call number, e.g. "CC-2026-00113"
func (s *NumberSequenceService) GenerateCashCallNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, sequenceEntityCashCall)
}

// generateNumber is the internal method that generates a formatted number
func (s *NumberSequenceService) generateNumber(ctx context.Context, entityType string) (string, error) {
	year := time.Now().Year()
	prefix := sequencePrefixes[entityType]

	nextSeq, err := s.repo.GetNextNumber(ctx, entityType, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("entity_type", entityType),
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", entityType, err)
	}

	number := fmt.Sprintf("%s-%d-%05d", prefix, year, nextSeq)

	s.logger.Debug("generated number",
		zap.String("number", number),
		zap.String("entity_type", entityType),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// GetCurrentSequence returns the current sequence value for an entity type and
// year without incrementing it. Returns 0 if no sequence exists.
func (s *NumberSequenceService) GetCurrentSequence(ctx context.Context, entityType string, year int) (int, error) {
	return s.repo.GetCurrentSequence(ctx, entityType, year)
}

// InitializeSequence sets the sequence to a specific value so the counter
// accounts for pre-existing numbered rows. The value is the LAST USED number.
func (s *NumberSequenceService) InitializeSequence(ctx context.Context, entityType string, year int, value int) error {
	return s.repo.SetSequence(ctx, entityType, year, value)
}
