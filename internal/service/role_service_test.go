package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_AssignRole(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	party := testutil.CreateTestParty(t, svc.db, "Zurich Insurance", domain.PartyTypeOrganization)
	other := testutil.CreateTestParty(t, svc.db, "Baloise", domain.PartyTypeOrganization)

	t.Run("assign a role", func(t *testing.T) {
		dto, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    party.ID,
			RoleName:   domain.RoleInsurer,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleInsurer, dto.RoleName)
	})

	t.Run("invalid record kind", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    party.ID,
			RoleName:   domain.RoleInsurer,
			RecordKind: "invoice",
			RecordID:   policy.ID,
		})
		assert.ErrorIs(t, err, ErrInvalidRecordKind)
	})

	t.Run("unknown party", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    uuid.New(),
			RoleName:   domain.RoleInsurer,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("dangling record reference", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    party.ID,
			RoleName:   domain.RoleInsurer,
			RecordKind: domain.RecordKindClaim,
			RecordID:   uuid.New(),
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("duplicate role", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    party.ID,
			RoleName:   domain.RoleInsurer,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		assert.ErrorIs(t, err, ErrDuplicateRole)
	})

	t.Run("singular role taken", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    party.ID,
			RoleName:   domain.RoleInsured,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		require.NoError(t, err)

		_, err = svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    other.ID,
			RoleName:   domain.RoleInsured,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		assert.ErrorIs(t, err, ErrSingularRoleTaken)
	})

	t.Run("plural roles stack", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    other.ID,
			RoleName:   domain.RoleInsurer,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		require.NoError(t, err)
	})
}

func TestRoleService_PartyInRole(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	partyA := testutil.CreateTestParty(t, svc.db, "Adjusters AG", domain.PartyTypeOrganization)
	partyB := testutil.CreateTestParty(t, svc.db, "Loss Experts GmbH", domain.PartyTypeOrganization)

	t.Run("nobody holds the role", func(t *testing.T) {
		party, err := svc.role.PartyInRole(ctx, domain.RecordKindPolicy, policy.ID, domain.RoleAdjuster)
		require.NoError(t, err)
		assert.Nil(t, party)
	})

	t.Run("one holder", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    partyA.ID,
			RoleName:   domain.RoleAdjuster,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		require.NoError(t, err)

		party, err := svc.role.PartyInRole(ctx, domain.RecordKindPolicy, policy.ID, domain.RoleAdjuster)
		require.NoError(t, err)
		require.NotNil(t, party)
		assert.Equal(t, partyA.ID, party.ID)
	})

	t.Run("multiple holders are ambiguous", func(t *testing.T) {
		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    partyB.ID,
			RoleName:   domain.RoleAdjuster,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		require.NoError(t, err)

		_, err = svc.role.PartyInRole(ctx, domain.RecordKindPolicy, policy.ID, domain.RoleAdjuster)
		assert.ErrorIs(t, err, ErrAmbiguousRole)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := svc.role.PartyInRole(ctx, "ledger", policy.ID, domain.RoleAdjuster)
		assert.ErrorIs(t, err, ErrInvalidRecordKind)
	})
}

func TestRoleService_VerifyRecordExists(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	assert.NoError(t, svc.role.VerifyRecordExists(ctx, domain.RecordKindPolicy, policy.ID))
	assert.ErrorIs(t, svc.role.VerifyRecordExists(ctx, domain.RecordKindPolicy, uuid.New()), ErrRecordNotFound)
	assert.ErrorIs(t, svc.role.VerifyRecordExists(ctx, "warehouse", uuid.New()), ErrInvalidRecordKind)
}
