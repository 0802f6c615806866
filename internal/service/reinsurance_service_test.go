package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReinsuranceService_CreateTreaty(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	t.Run("create", func(t *testing.T) {
		treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
			TreatyName: "2026 Property XL",
			TreatyType: domain.TreatyTypeExcessLoss,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TreatyTypeExcessLoss, treaty.TreatyType)
	})

	t.Run("one treaty per policy", func(t *testing.T) {
		_, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
			TreatyName: "Second attempt",
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("treaty type defaults to facultative", func(t *testing.T) {
		other := testutil.CreateTestPolicy(t, svc.db)
		treaty, err := svc.reinsurance.CreateTreaty(ctx, other.ID, &domain.CreateTreatyRequest{
			TreatyName: "Fac placement",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TreatyTypeFacultative, treaty.TreatyType)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := svc.reinsurance.CreateTreaty(ctx, uuid.New(), &domain.CreateTreatyRequest{
			TreatyName: "Orphan",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReinsuranceService_DefineLayer(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
		TreatyName: "2026 Property XL",
		TreatyType: domain.TreatyTypeExcessLoss,
	})
	require.NoError(t, err)

	t.Run("ground layer attaches at zero", func(t *testing.T) {
		_, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder:      1,
			AttachmentPoint: 500000,
			LayerLimit:      1000000,
		})
		assert.ErrorIs(t, err, ErrNonContiguousLayer)

		layer, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder:      1,
			AttachmentPoint: 0,
			LayerLimit:      1000000,
			Premium:         80000,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, layer.LayerOrder)
	})

	t.Run("order must be sequential", func(t *testing.T) {
		_, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder:      3,
			AttachmentPoint: 1000000,
			LayerLimit:      2000000,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("layers must be contiguous", func(t *testing.T) {
		_, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder:      2,
			AttachmentPoint: 1500000,
			LayerLimit:      2000000,
		})
		assert.ErrorIs(t, err, ErrNonContiguousLayer)

		layer, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder:      2,
			AttachmentPoint: 1000000,
			LayerLimit:      2000000,
		})
		require.NoError(t, err)
		assert.Equal(t, 1000000.0, layer.AttachmentPoint)
	})
}

func TestReinsuranceService_AddParticipant(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	reinsurerA := testutil.CreateTestParty(t, svc.db, "Swiss Re", domain.PartyTypeOrganization)
	reinsurerB := testutil.CreateTestParty(t, svc.db, "Munich Re", domain.PartyTypeOrganization)

	treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
		TreatyName: "2026 Property XL",
	})
	require.NoError(t, err)
	layer, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder: 1,
		LayerLimit: 5000000,
	})
	require.NoError(t, err)

	t.Run("add participant", func(t *testing.T) {
		p, err := svc.reinsurance.AddParticipant(ctx, layer.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurerA.ID,
			SharePercentage:  60,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ParticipantStatusQuoted, p.Status)

		// Reinsurer role lands on the policy
		roles, err := svc.role.RolesFor(ctx, domain.RecordKindPolicy, policy.ID)
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, domain.RoleReinsurer, roles[0].RoleName)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		_, err := svc.reinsurance.AddParticipant(ctx, layer.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurerA.ID,
			SharePercentage:  10,
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("shares above one hundred percent", func(t *testing.T) {
		_, err := svc.reinsurance.AddParticipant(ctx, layer.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurerB.ID,
			SharePercentage:  50,
		})
		assert.ErrorIs(t, err, ErrSharesExceedFull)
	})

	t.Run("role is not duplicated across layers", func(t *testing.T) {
		upper, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder:      2,
			AttachmentPoint: 5000000,
			LayerLimit:      10000000,
		})
		require.NoError(t, err)

		_, err = svc.reinsurance.AddParticipant(ctx, upper.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurerA.ID,
			SharePercentage:  100,
		})
		require.NoError(t, err)

		roles, err := svc.role.RolesFor(ctx, domain.RecordKindPolicy, policy.ID)
		require.NoError(t, err)
		assert.Len(t, roles, 1)
	})
}

func TestReinsuranceService_GetTower(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	reinsurer := testutil.CreateTestParty(t, svc.db, "Swiss Re", domain.PartyTypeOrganization)

	t.Run("no treaty", func(t *testing.T) {
		_, err := svc.reinsurance.GetTower(ctx, policy.ID)
		assert.ErrorIs(t, err, ErrNoTreaty)
	})

	treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
		TreatyName: "2026 Property XL",
		TreatyType: domain.TreatyTypeExcessLoss,
	})
	require.NoError(t, err)

	ground, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder: 1,
		LayerLimit: 10000000,
	})
	require.NoError(t, err)
	_, err = svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder:      2,
		AttachmentPoint: 10000000,
		LayerLimit:      40000000,
	})
	require.NoError(t, err)

	_, err = svc.reinsurance.AddParticipant(ctx, ground.ID, &domain.AddLayerParticipantRequest{
		ReinsurerPartyID: reinsurer.ID,
		SharePercentage:  100,
	})
	require.NoError(t, err)

	view, err := svc.reinsurance.GetTower(ctx, policy.ID)
	require.NoError(t, err)
	require.Len(t, view.Layers, 2)
	assert.Equal(t, 50000000.0, view.TotalTowerLimit)

	assert.Equal(t, "10000000 xs 0", view.Layers[0].CoverageString)
	assert.True(t, view.Layers[0].Balanced)
	assert.False(t, view.Layers[0].Unplaced)

	assert.Equal(t, "40000000 xs 10000000", view.Layers[1].CoverageString)
	assert.True(t, view.Layers[1].Unplaced)
	assert.False(t, view.Layers[1].Balanced)
}

func TestFormatCoverage(t *testing.T) {
	assert.Equal(t, "1000000 xs 0", formatCoverage(1000000, 0))
	assert.Equal(t, "2500000.50 xs 1000000", formatCoverage(2500000.5, 1000000))
}
