package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyService_Create(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	t.Run("create an organization", func(t *testing.T) {
		dto, err := svc.party.Create(ctx, &domain.CreatePartyRequest{
			PartyType: domain.PartyTypeOrganization,
			Name:      "Pilatus Werke AG",
			Email:     "risk@pilatuswerke.example",
			City:      "Stans",
		})
		require.NoError(t, err)
		assert.Equal(t, "Pilatus Werke AG", dto.Name)
		assert.Equal(t, "Switzerland", dto.Country)
	})

	t.Run("invalid party type", func(t *testing.T) {
		_, err := svc.party.Create(ctx, &domain.CreatePartyRequest{
			PartyType: "ROBOT",
			Name:      "Not a party",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestPartyService_Update(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	party := testutil.CreateTestParty(t, svc.db, "Rigi Holding AG", domain.PartyTypeOrganization)

	t.Run("update contact fields", func(t *testing.T) {
		dto, err := svc.party.Update(ctx, party.ID, &domain.UpdatePartyRequest{
			Email: "claims@rigi.example",
			City:  "Lucerne",
		})
		require.NoError(t, err)
		assert.Equal(t, "claims@rigi.example", dto.Email)
		assert.Equal(t, "Lucerne", dto.City)
		// Identity is untouched
		assert.Equal(t, "Rigi Holding AG", dto.Name)
	})

	t.Run("blank fields are kept", func(t *testing.T) {
		dto, err := svc.party.Update(ctx, party.ID, &domain.UpdatePartyRequest{
			Phone: "+41 41 000 00 00",
		})
		require.NoError(t, err)
		assert.Equal(t, "claims@rigi.example", dto.Email)
	})

	t.Run("unknown party", func(t *testing.T) {
		_, err := svc.party.Update(ctx, uuid.New(), &domain.UpdatePartyRequest{Email: "x@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPartyService_ListInsureds(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	insured := testutil.CreateTestParty(t, svc.db, "Insured AG", domain.PartyTypeOrganization)
	testutil.CreateTestParty(t, svc.db, "Bystander AG", domain.PartyTypeOrganization)

	_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
		PartyID:    insured.ID,
		RoleName:   domain.RoleInsured,
		RecordKind: domain.RecordKindPolicy,
		RecordID:   policy.ID,
	})
	require.NoError(t, err)

	insureds, err := svc.party.ListInsureds(ctx)
	require.NoError(t, err)
	require.Len(t, insureds, 1)
	assert.Equal(t, insured.ID, insureds[0].ID)
}
