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

func TestReportService_GetPolicyDetail(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	t.Run("resolves the insured party through the role registry", func(t *testing.T) {
		policy := testutil.CreateTestPolicy(t, svc.db)
		insured := testutil.CreateTestParty(t, svc.db, "Helvetia Mills AG", domain.PartyTypeOrganization)

		_, err := svc.role.AssignRole(ctx, &domain.AssignRoleRequest{
			PartyID:    insured.ID,
			RoleName:   domain.RoleInsured,
			RecordKind: domain.RecordKindPolicy,
			RecordID:   policy.ID,
		})
		require.NoError(t, err)

		detail, err := svc.report.GetPolicyDetail(ctx, policy.ID)
		require.NoError(t, err)
		assert.Equal(t, policy.PolicyNumber, detail.PolicyNumber)
		require.NotNil(t, detail.InsuredParty)
		assert.Equal(t, "Helvetia Mills AG", detail.InsuredParty.Name)
	})

	t.Run("no insured on record leaves the party empty", func(t *testing.T) {
		policy := testutil.CreateTestPolicy(t, svc.db)

		detail, err := svc.report.GetPolicyDetail(ctx, policy.ID)
		require.NoError(t, err)
		assert.Nil(t, detail.InsuredParty)
	})

	t.Run("two insured roles on one policy surface as ambiguous", func(t *testing.T) {
		policy := testutil.CreateTestPolicy(t, svc.db)
		first := testutil.CreateTestParty(t, svc.db, "First Insured AG", domain.PartyTypeOrganization)
		second := testutil.CreateTestParty(t, svc.db, "Second Insured AG", domain.PartyTypeOrganization)

		// Seeded directly: AssignRole refuses a second Insured, but rows
		// written outside the service can still disagree
		for _, p := range []*domain.Party{first, second} {
			require.NoError(t, svc.db.Create(&domain.PartyRole{
				PartyID:    p.ID,
				RoleName:   domain.RoleInsured,
				RecordKind: domain.RecordKindPolicy,
				RecordID:   policy.ID,
			}).Error)
		}

		_, err := svc.report.GetPolicyDetail(ctx, policy.ID)
		assert.ErrorIs(t, err, ErrAmbiguousRole)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := svc.report.GetPolicyDetail(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReportService_GetBookSummary(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	now := time.Now()
	require.NoError(t, svc.db.Create(&domain.Submission{SubmissionNumber: "SUB-2026-90001", Status: domain.SubmissionStatusOpen}).Error)
	require.NoError(t, svc.db.Create(&domain.Submission{SubmissionNumber: "SUB-2026-90002", Status: domain.SubmissionStatusQuoted}).Error)
	require.NoError(t, svc.db.Create(&domain.Submission{SubmissionNumber: "SUB-2026-90003", Status: domain.SubmissionStatusBound}).Error)

	policy := testutil.CreateTestPolicy(t, svc.db)
	testutil.CreateTestClaim(t, svc.db, policy.ID)

	require.NoError(t, svc.db.Create(&domain.CashCall{
		CallNumber:    "CC-2026-90001",
		ClaimID:       uuid.New(),
		ParticipantID: uuid.New(),
		CallAmount:    60000,
		Currency:      "CHF",
		Status:        domain.CashCallStatusIssued,
		IssuedDate:    now.AddDate(0, -2, 0),
		DueDate:       now.AddDate(0, -1, 0),
		Version:       1,
	}).Error)
	require.NoError(t, svc.db.Create(&domain.CashCall{
		CallNumber:    "CC-2026-90002",
		ClaimID:       uuid.New(),
		ParticipantID: uuid.New(),
		CallAmount:    40000,
		Currency:      "CHF",
		Status:        domain.CashCallStatusPaid,
		IssuedDate:    now.AddDate(0, -2, 0),
		DueDate:       now.AddDate(0, -1, 0),
		Version:       1,
	}).Error)

	summary, err := svc.report.GetBookSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.OpenSubmissions)
	assert.Equal(t, int64(1), summary.BoundSubmissions)
	assert.Equal(t, int64(1), summary.ActivePolicies)
	assert.Equal(t, int64(1), summary.OpenClaims)
	assert.Equal(t, int64(1), summary.OverdueCashCalls)
	assert.InDelta(t, 100000.0, summary.TotalCalled, 0.001)
	assert.InDelta(t, 40000.0, summary.TotalPaid, 0.001)
}
