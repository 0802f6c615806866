package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinsuranceService_AddCoinsurer(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	lead := testutil.CreateTestParty(t, svc.db, "Lead Insurer AG", domain.PartyTypeOrganization)
	follower := testutil.CreateTestParty(t, svc.db, "Follower AG", domain.PartyTypeOrganization)

	t.Run("place the lead", func(t *testing.T) {
		dto, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  lead.ID,
			SharePercentage: 60,
			IsLead:          true,
		})
		require.NoError(t, err)
		assert.True(t, dto.IsLead)

		// The lead insurer role lands on the policy
		party, err := svc.role.PartyInRole(ctx, domain.RecordKindPolicy, policy.ID, domain.RoleLeadInsurer)
		require.NoError(t, err)
		require.NotNil(t, party)
		assert.Equal(t, lead.ID, party.ID)
	})

	t.Run("same insurer twice", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  lead.ID,
			SharePercentage: 10,
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("shares above one hundred percent", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  follower.ID,
			SharePercentage: 50,
		})
		assert.ErrorIs(t, err, ErrSharesExceedFull)
	})

	t.Run("second lead", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  follower.ID,
			SharePercentage: 40,
			IsLead:          true,
		})
		assert.ErrorIs(t, err, ErrDuplicateLead)
	})

	t.Run("fill the panel", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  follower.ID,
			SharePercentage: 40,
		})
		require.NoError(t, err)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, uuid.New(), &domain.AddCoinsurerRequest{
			InsurerPartyID:  follower.ID,
			SharePercentage: 10,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCoinsuranceService_GetView(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	lead := testutil.CreateTestParty(t, svc.db, "Lead AG", domain.PartyTypeOrganization)
	follower := testutil.CreateTestParty(t, svc.db, "Follower AG", domain.PartyTypeOrganization)

	t.Run("unbalanced until fully placed", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  lead.ID,
			SharePercentage: 70,
			IsLead:          true,
		})
		require.NoError(t, err)

		view, err := svc.coinsurance.GetView(ctx, policy.ID)
		require.NoError(t, err)
		assert.Equal(t, 70.0, view.TotalShare)
		assert.False(t, view.Balanced)
	})

	t.Run("balanced at one hundred with one lead", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  follower.ID,
			SharePercentage: 30,
		})
		require.NoError(t, err)

		view, err := svc.coinsurance.GetView(ctx, policy.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, view.TotalShare)
		assert.True(t, view.Balanced)
		assert.Len(t, view.Insurers, 2)
	})
}

func TestCoinsuranceService_GetLead(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	follower := testutil.CreateTestParty(t, svc.db, "Follower AG", domain.PartyTypeOrganization)

	t.Run("no coinsurers at all", func(t *testing.T) {
		_, err := svc.coinsurance.GetLead(ctx, policy.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("shares placed but no lead", func(t *testing.T) {
		_, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
			InsurerPartyID:  follower.ID,
			SharePercentage: 40,
		})
		require.NoError(t, err)

		_, err = svc.coinsurance.GetLead(ctx, policy.ID)
		assert.ErrorIs(t, err, ErrNoLeadInsurer)
	})
}

func TestCoinsuranceService_RemoveCoinsurer(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	insurer := testutil.CreateTestParty(t, svc.db, "Departing AG", domain.PartyTypeOrganization)

	dto, err := svc.coinsurance.AddCoinsurer(ctx, policy.ID, &domain.AddCoinsurerRequest{
		InsurerPartyID:  insurer.ID,
		SharePercentage: 25,
	})
	require.NoError(t, err)

	require.NoError(t, svc.coinsurance.RemoveCoinsurer(ctx, policy.ID, dto.ID))

	view, err := svc.coinsurance.GetView(ctx, policy.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Insurers)

	// The role goes with it
	party, err := svc.role.PartyInRole(ctx, domain.RecordKindPolicy, policy.ID, domain.RoleCoInsurer)
	require.NoError(t, err)
	assert.Nil(t, party)

	assert.ErrorIs(t, svc.coinsurance.RemoveCoinsurer(ctx, policy.ID, dto.ID), ErrNotFound)
}
