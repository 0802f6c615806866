package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quotedSubmission runs a submission through the pipeline up to an accepted
// quote and returns the submission and quote IDs.
func quotedSubmission(t *testing.T, svc *testServices) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := testContext()

	broker := testutil.CreateTestParty(t, svc.db, "Broker AG", domain.PartyTypeOrganization)
	insured := testutil.CreateTestParty(t, svc.db, "Insured AG", domain.PartyTypeOrganization)
	insurer := testutil.CreateTestParty(t, svc.db, "Insurer AG", domain.PartyTypeOrganization)

	submission, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{
		LineOfBusiness: "Property",
		BrokerPartyID:  &broker.ID,
		InsuredPartyID: &insured.ID,
	})
	require.NoError(t, err)

	_, err = svc.submission.Advance(ctx, submission.ID, &domain.AdvanceSubmissionRequest{
		Status: domain.SubmissionStatusInReview,
	})
	require.NoError(t, err)

	quote, err := svc.submission.AddQuote(ctx, submission.ID, &domain.AddQuoteRequest{
		InsurerPartyID: insurer.ID,
		TotalPremium:   250000,
	})
	require.NoError(t, err)

	_, err = svc.submission.UpdateQuoteStatus(ctx, quote.ID, &domain.UpdateQuoteStatusRequest{
		Status: domain.QuoteStatusSent,
	})
	require.NoError(t, err)
	_, err = svc.submission.Advance(ctx, submission.ID, &domain.AdvanceSubmissionRequest{
		Status: domain.SubmissionStatusQuoted,
	})
	require.NoError(t, err)
	_, err = svc.submission.UpdateQuoteStatus(ctx, quote.ID, &domain.UpdateQuoteStatusRequest{
		Status: domain.QuoteStatusAccepted,
	})
	require.NoError(t, err)

	return submission.ID, quote.ID
}

func TestPolicyService_Bind(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	now := time.Now()

	t.Run("bind an accepted quote", func(t *testing.T) {
		submissionID, quoteID := quotedSubmission(t, svc)

		policy, err := svc.policy.Bind(ctx, &domain.BindPolicyRequest{
			SubmissionID:   submissionID,
			QuoteID:        quoteID,
			EffectiveDate:  now,
			ExpirationDate: now.AddDate(1, 0, 0),
		})
		require.NoError(t, err)
		assert.Regexp(t, `^POL-\d{4}-\d{5}$`, policy.PolicyNumber)
		assert.Equal(t, domain.PolicyStatusActive, policy.Status)

		submission, err := svc.submission.GetByID(ctx, submissionID)
		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionStatusBound, submission.Status)

		// Insured and broker ride along to the policy
		roles, err := svc.role.RolesFor(ctx, domain.RecordKindPolicy, policy.ID)
		require.NoError(t, err)
		assert.Len(t, roles, 2)
	})

	t.Run("submission without an accepted quote", func(t *testing.T) {
		broker := testutil.CreateTestParty(t, svc.db, "Another Broker", domain.PartyTypeOrganization)
		submission, err := svc.submission.Create(ctx, &domain.CreateSubmissionRequest{
			BrokerPartyID: &broker.ID,
		})
		require.NoError(t, err)

		_, err = svc.policy.Bind(ctx, &domain.BindPolicyRequest{
			SubmissionID:   submission.ID,
			QuoteID:        uuid.New(),
			EffectiveDate:  now,
			ExpirationDate: now.AddDate(1, 0, 0),
		})
		assert.ErrorIs(t, err, ErrSubmissionNotQuoted)
	})

	t.Run("quote from another submission", func(t *testing.T) {
		submissionID, _ := quotedSubmission(t, svc)
		_, otherQuoteID := quotedSubmission(t, svc)

		_, err := svc.policy.Bind(ctx, &domain.BindPolicyRequest{
			SubmissionID:   submissionID,
			QuoteID:        otherQuoteID,
			EffectiveDate:  now,
			ExpirationDate: now.AddDate(1, 0, 0),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("quote not accepted", func(t *testing.T) {
		submissionID, quoteID := quotedSubmission(t, svc)

		// Add a second quote that stays pending and try to bind it
		insurer := testutil.CreateTestParty(t, svc.db, "Second Insurer", domain.PartyTypeOrganization)
		pending, err := svc.submission.AddQuote(ctx, submissionID, &domain.AddQuoteRequest{
			InsurerPartyID: insurer.ID,
			TotalPremium:   200000,
		})
		require.NoError(t, err)
		require.NotEqual(t, quoteID, pending.ID)

		_, err = svc.policy.Bind(ctx, &domain.BindPolicyRequest{
			SubmissionID:   submissionID,
			QuoteID:        pending.ID,
			EffectiveDate:  now,
			ExpirationDate: now.AddDate(1, 0, 0),
		})
		assert.ErrorIs(t, err, ErrQuoteNotAccepted)
	})
}

func TestPolicyService_AddCoverage(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	t.Run("add coverage", func(t *testing.T) {
		coverage, err := svc.policy.AddCoverage(ctx, policy.ID, &domain.AddCoverageRequest{
			CoverageType:     "Fire",
			LimitAmount:      5000000,
			DeductibleAmount: 50000,
		})
		require.NoError(t, err)
		assert.Equal(t, "Fire", coverage.CoverageType)
	})

	t.Run("deductible above limit", func(t *testing.T) {
		_, err := svc.policy.AddCoverage(ctx, policy.ID, &domain.AddCoverageRequest{
			CoverageType:     "Flood",
			LimitAmount:      10000,
			DeductibleAmount: 20000,
		})
		assert.ErrorIs(t, err, ErrInvalidCoverageTerms)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := svc.policy.AddCoverage(ctx, uuid.New(), &domain.AddCoverageRequest{
			CoverageType: "Fire",
			LimitAmount:  1000,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPolicyService_AddAsset(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	asset, err := svc.policy.AddAsset(ctx, policy.ID, &domain.AddAssetRequest{
		AssetType:   "Building",
		Description: "Production hall",
		Locations: []domain.AddAssetLocationRequest{
			{Address: "Industriestrasse 12", City: "Zug", PostalCode: "6300", Country: "Switzerland"},
		},
		Details: []domain.AddAssetDetailRequest{
			{Key: "construction", Value: "steel frame"},
			{Key: "year_built", Value: "2009"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, asset.Locations, 1)
	assert.Len(t, asset.Details, 2)

	assets, err := svc.policy.ListAssets(ctx, policy.ID)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}
