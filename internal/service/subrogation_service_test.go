package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubrogationService_Record(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	liable := testutil.CreateTestParty(t, svc.db, "Liable Contractor GmbH", domain.PartyTypeOrganization)

	t.Run("record against an open claim", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		dto, err := svc.subrogation.Record(ctx, claim.ID, &domain.RecordSubrogationRequest{
			LiablePartyID:           liable.ID,
			PotentialRecoveryAmount: 10000,
			Notes:                   "Contractor caused the water damage",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubrogationStatusIdentified, dto.Status)
		assert.Equal(t, 0.0, dto.ActualRecoveryAmount)

		// Liable party role lands on the claim
		party, err := svc.role.PartyInRole(ctx, domain.RecordKindClaim, claim.ID, domain.RoleLiableParty)
		require.NoError(t, err)
		require.NotNil(t, party)
		assert.Equal(t, liable.ID, party.ID)
	})

	t.Run("closed claim takes no subrogation", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		_, err := svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusClosed,
		})
		require.NoError(t, err)

		_, err = svc.subrogation.Record(ctx, claim.ID, &domain.RecordSubrogationRequest{
			LiablePartyID:           liable.ID,
			PotentialRecoveryAmount: 10000,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("unknown liable party", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		_, err := svc.subrogation.Record(ctx, claim.ID, &domain.RecordSubrogationRequest{
			LiablePartyID:           uuid.New(),
			PotentialRecoveryAmount: 10000,
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestSubrogationService_RecordRecovery(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	liable := testutil.CreateTestParty(t, svc.db, "Liable Contractor GmbH", domain.PartyTypeOrganization)
	claim := testutil.CreateTestClaim(t, svc.db, policy.ID)

	subrogation, err := svc.subrogation.Record(ctx, claim.ID, &domain.RecordSubrogationRequest{
		LiablePartyID:           liable.ID,
		PotentialRecoveryAmount: 10000,
	})
	require.NoError(t, err)

	t.Run("partial recovery", func(t *testing.T) {
		dto, err := svc.subrogation.RecordRecovery(ctx, subrogation.ID, &domain.RecordRecoveryRequest{
			ActualRecoveryAmount: 4000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubrogationStatusInProgress, dto.Status)
		assert.Equal(t, 4000.0, dto.ActualRecoveryAmount)
	})

	t.Run("recovery is mirrored on the claim log", func(t *testing.T) {
		entries, err := svc.claim.GetLogEntries(ctx, claim.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Entry, "Subrogation recovery")
	})

	t.Run("recovery above potential", func(t *testing.T) {
		_, err := svc.subrogation.RecordRecovery(ctx, subrogation.ID, &domain.RecordRecoveryRequest{
			ActualRecoveryAmount: 7000,
		})
		assert.ErrorIs(t, err, ErrRecoveryExceedsPotential)
	})

	t.Run("full recovery", func(t *testing.T) {
		dto, err := svc.subrogation.RecordRecovery(ctx, subrogation.ID, &domain.RecordRecoveryRequest{
			ActualRecoveryAmount: 6000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SubrogationStatusRecovered, dto.Status)
		assert.Equal(t, 10000.0, dto.ActualRecoveryAmount)
	})

	t.Run("closed subrogation takes no recovery", func(t *testing.T) {
		_, err := svc.subrogation.Close(ctx, subrogation.ID)
		require.NoError(t, err)

		_, err = svc.subrogation.RecordRecovery(ctx, subrogation.ID, &domain.RecordRecoveryRequest{
			ActualRecoveryAmount: 1,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})
}

func TestSubrogationService_Close(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	liable := testutil.CreateTestParty(t, svc.db, "Liable AG", domain.PartyTypeOrganization)
	claim := testutil.CreateTestClaim(t, svc.db, policy.ID)

	subrogation, err := svc.subrogation.Record(ctx, claim.ID, &domain.RecordSubrogationRequest{
		LiablePartyID:           liable.ID,
		PotentialRecoveryAmount: 5000,
	})
	require.NoError(t, err)

	dto, err := svc.subrogation.Close(ctx, subrogation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubrogationStatusClosed, dto.Status)

	// Closing again is a no-op
	dto, err = svc.subrogation.Close(ctx, subrogation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubrogationStatusClosed, dto.Status)
}
