package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/auth"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: "Test Underwriter",
		Email:       "underwriter@example.com",
		Roles:       []string{"Underwriter"},
	})
}

func TestSubmissionService_Create(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	t.Run("create with defaults", func(t *testing.T) {
		dto, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{
			LineOfBusiness: "Property",
			Description:    "Industrial site in Zug",
			Completeness:   40,
		})
		require.NoError(t, err)
		assert.Regexp(t, `^SUB-\d{4}-\d{5}$`, dto.SubmissionNumber)
		assert.Equal(t, domain.SubmissionStatusOpen, dto.Status)
		assert.Equal(t, domain.RiskAppetiteRefer, dto.RiskAppetite)
		assert.False(t, dto.Accepted)
		assert.Equal(t, 1, dto.Version)
	})

	t.Run("creation is recorded in status history", func(t *testing.T) {
		dto, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{})
		require.NoError(t, err)

		history, err := svc.submission.GetStatusHistory(ctx, dto.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Nil(t, history[0].FromStatus)
		assert.Equal(t, domain.SubmissionStatusOpen, history[0].ToStatus)
	})

	t.Run("broker and insured roles are assigned", func(t *testing.T) {
		broker := testutil.CreateTestParty(t, svc.db, "Helvetia Brokers", domain.PartyTypeOrganization)
		insured := testutil.CreateTestParty(t, svc.db, "Müller Maschinen AG", domain.PartyTypeOrganization)

		dto, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{
			BrokerPartyID:  &broker.ID,
			InsuredPartyID: &insured.ID,
		})
		require.NoError(t, err)

		roles, err := svc.role.RolesFor(ctx, domain.RecordKindSubmission, dto.ID)
		require.NoError(t, err)
		assert.Len(t, roles, 2)
	})

	t.Run("invalid appetite rejected", func(t *testing.T) {
		_, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{
			RiskAppetite: "MAYBE",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSubmissionService_Advance(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	create := func(t *testing.T) uuid.UUID {
		dto, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{})
		require.NoError(t, err)
		return dto.ID
	}

	t.Run("open to in review", func(t *testing.T) {
		id := create(t)
		dto, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusInReview,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusInReview, dto.Status)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		id := create(t)
		_, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusQuoted,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("regression is rejected", func(t *testing.T) {
		id := create(t)
		_, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusInReview,
		})
		require.NoError(t, err)

		_, err = svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusOpen,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("quoted requires a released quote", func(t *testing.T) {
		id := create(t)
		_, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusInReview,
		})
		require.NoError(t, err)

		_, err = svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusQuoted,
		})
		assert.ErrorIs(t, err, ErrNoReleasedQuote)
	})

	t.Run("quoted with a sent quote", func(t *testing.T) {
		id := create(t)
		insurer := testutil.CreateTestParty(t, svc.db, "Lucerne Re", domain.PartyTypeOrganization)

		_, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusInReview,
		})
		require.NoError(t, err)

		quote, err := svc.submission.AddQuote(ctx, id, &domain.AddQuoteRequest{
			InsurerPartyID: insurer.ID,
			TotalPremium:   125000,
		})
		require.NoError(t, err)
		assert.Equal(t, "CHF", quote.Currency)

		_, err = svc.submission.UpdateQuoteStatus(ctx, quote.ID, &domain.UpdateQuoteStatusRequest{
			Status: domain.QuoteStatusSent,
		})
		require.NoError(t, err)

		dto, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusQuoted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusQuoted, dto.Status)
	})

	t.Run("declined is terminal", func(t *testing.T) {
		id := create(t)
		_, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusDeclined,
		})
		require.NoError(t, err)

		_, err = svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusInReview,
		})
		assert.ErrorIs(t, err, ErrSubmissionTerminal)
	})

	t.Run("every transition lands in history", func(t *testing.T) {
		id := create(t)
		_, err := svc.submission.Advance(ctx, id, &domain.AdvanceSubmissionRequest{
			Status: domain.SubmissionStatusInReview,
			Notes:  "Docs complete",
		})
		require.NoError(t, err)

		history, err := svc.submission.GetStatusHistory(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 2)
	})
}

func TestSubmissionService_AcceptQuote(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	insurerA := testutil.CreateTestParty(t, svc.db, "Insurer A", domain.PartyTypeOrganization)
	insurerB := testutil.CreateTestParty(t, svc.db, "Insurer B", domain.PartyTypeOrganization)

	submission, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{})
	require.NoError(t, err)

	quoteA, err := svc.submission.AddQuote(ctx, submission.ID, &domain.AddQuoteRequest{
		InsurerPartyID: insurerA.ID,
		TotalPremium:   100000,
	})
	require.NoError(t, err)
	quoteB, err := svc.submission.AddQuote(ctx, submission.ID, &domain.AddQuoteRequest{
		InsurerPartyID: insurerB.ID,
		TotalPremium:   90000,
	})
	require.NoError(t, err)

	t.Run("accept requires submission to be quoted", func(t *testing.T) {
		_, err := svc.submission.UpdateQuoteStatus(ctx, quoteA.ID, &domain.UpdateQuoteStatusRequest{
			Status: domain.QuoteStatusAccepted,
		})
		assert.ErrorIs(t, err, ErrSubmissionNotQuoted)
	})

	// Move the submission to QUOTED
	_, err = svc.submission.Advance(ctx, submission.ID, &domain.AdvanceSubmissionRequest{
		Status: domain.SubmissionStatusInReview,
	})
	require.NoError(t, err)
	_, err = svc.submission.UpdateQuoteStatus(ctx, quoteA.ID, &domain.UpdateQuoteStatusRequest{
		Status: domain.QuoteStatusSent,
	})
	require.NoError(t, err)
	_, err = svc.submission.Advance(ctx, submission.ID, &domain.AdvanceSubmissionRequest{
		Status: domain.SubmissionStatusQuoted,
	})
	require.NoError(t, err)

	t.Run("accept releases the submission", func(t *testing.T) {
		dto, err := svc.submission.UpdateQuoteStatus(ctx, quoteA.ID, &domain.UpdateQuoteStatusRequest{
			Status: domain.QuoteStatusAccepted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusAccepted, dto.Status)

		reloaded, err := svc.submission.GetByID(ctx, submission.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.Accepted)
	})

	t.Run("second accept is rejected", func(t *testing.T) {
		_, err := svc.submission.UpdateQuoteStatus(ctx, quoteB.ID, &domain.UpdateQuoteStatusRequest{
			Status: domain.QuoteStatusAccepted,
		})
		assert.ErrorIs(t, err, ErrQuoteAlreadyAccepted)
	})
}

func TestComputePriorityScore(t *testing.T) {
	tests := []struct {
		name         string
		completeness int
		tier         domain.BrokerTier
		appetite     domain.RiskAppetite
		want         int
	}{
		{"top tier in appetite", 80, domain.BrokerTierA, domain.RiskAppetiteIn, 90},
		{"capped at 100", 100, domain.BrokerTierA, domain.RiskAppetiteIn, 100},
		{"out of appetite scores nothing for appetite", 60, domain.BrokerTierC, domain.RiskAppetiteOut, 35},
		{"empty submission", 0, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := computePriorityScore(&domain.Submission{
				Completeness: tt.completeness,
				BrokerTier:   tt.tier,
				RiskAppetite: tt.appetite,
			})
			assert.Equal(t, tt.want, score)
		})
	}
}
