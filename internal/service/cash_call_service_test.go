package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allocationFixture is a claim on a policy with a two-layer tower:
// layer 1 covers 1M xs 0 split 60/40, layer 2 covers 1M xs 1M fully
// placed with one reinsurer.
type allocationFixture struct {
	claim      *domain.Claim
	reinsurerA *domain.Party
	reinsurerB *domain.Party
	reinsurerC *domain.Party
}

func setupAllocationFixture(t *testing.T, svc *testServices) *allocationFixture {
	t.Helper()
	ctx := testContext()

	policy := testutil.CreateTestPolicy(t, svc.db)
	claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
	reinsurerA := testutil.CreateTestParty(t, svc.db, "Reinsurer A", domain.PartyTypeOrganization)
	reinsurerB := testutil.CreateTestParty(t, svc.db, "Reinsurer B", domain.PartyTypeOrganization)
	reinsurerC := testutil.CreateTestParty(t, svc.db, "Reinsurer C", domain.PartyTypeOrganization)

	treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
		TreatyName: "Test XL",
		TreatyType: domain.TreatyTypeExcessLoss,
	})
	require.NoError(t, err)

	layer1, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder: 1,
		LayerLimit: 1000000,
	})
	require.NoError(t, err)
	layer2, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder:      2,
		AttachmentPoint: 1000000,
		LayerLimit:      1000000,
	})
	require.NoError(t, err)

	_, err = svc.reinsurance.AddParticipant(ctx, layer1.ID, &domain.AddLayerParticipantRequest{
		ReinsurerPartyID: reinsurerA.ID,
		SharePercentage:  60,
	})
	require.NoError(t, err)
	_, err = svc.reinsurance.AddParticipant(ctx, layer1.ID, &domain.AddLayerParticipantRequest{
		ReinsurerPartyID: reinsurerB.ID,
		SharePercentage:  40,
	})
	require.NoError(t, err)
	_, err = svc.reinsurance.AddParticipant(ctx, layer2.ID, &domain.AddLayerParticipantRequest{
		ReinsurerPartyID: reinsurerC.ID,
		SharePercentage:  100,
	})
	require.NoError(t, err)

	return &allocationFixture{
		claim:      claim,
		reinsurerA: reinsurerA,
		reinsurerB: reinsurerB,
		reinsurerC: reinsurerC,
	}
}

func callAmounts(calls []domain.CashCallDTO) []float64 {
	amounts := make([]float64, len(calls))
	for i, c := range calls {
		amounts[i] = c.CallAmount
	}
	return amounts
}

func TestCashCallService_RunAllocation(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	fx := setupAllocationFixture(t, svc)

	incurred := func(v float64) *domain.RunAllocationRequest {
		return &domain.RunAllocationRequest{IncurredAmount: &v}
	}

	t.Run("first run splits the ground layer", func(t *testing.T) {
		result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, incurred(500000))
		require.NoError(t, err)
		assert.Equal(t, 1, result.LayersTouched)
		require.Len(t, result.IssuedCalls, 2)
		assert.ElementsMatch(t, []float64{300000, 200000}, callAmounts(result.IssuedCalls))
		assert.Equal(t, 500000.0, result.TotalCalled)

		// Each call draws its own number; the run commits on the same
		// single-connection pool the sequence uses
		numbers := map[string]bool{}
		for _, call := range result.IssuedCalls {
			assert.Regexp(t, `^CC-\d{4}-\d{5}$`, call.CallNumber)
			assert.Equal(t, "CHF", call.Currency)
			assert.Equal(t, domain.CashCallStatusIssued, call.Status)
			numbers[call.CallNumber] = true
		}
		assert.Len(t, numbers, len(result.IssuedCalls))
	})

	t.Run("rerun with unchanged incurred issues nothing", func(t *testing.T) {
		result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, incurred(500000))
		require.NoError(t, err)
		assert.Empty(t, result.IssuedCalls)
		assert.Equal(t, 0.0, result.TotalCalled)
	})

	t.Run("higher incurred calls only the deltas", func(t *testing.T) {
		result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, incurred(1200000))
		require.NoError(t, err)
		assert.Equal(t, 2, result.LayersTouched)
		require.Len(t, result.IssuedCalls, 3)
		// Ground layer tops up to 600k/400k, second layer is entered for 200k
		assert.ElementsMatch(t, []float64{300000, 200000, 200000}, callAmounts(result.IssuedCalls))
	})

	t.Run("lower incurred never claws back", func(t *testing.T) {
		result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, incurred(800000))
		require.NoError(t, err)
		assert.Empty(t, result.IssuedCalls)
	})

	t.Run("allocation run is logged on the claim", func(t *testing.T) {
		entries, err := svc.claim.GetLogEntries(ctx, fx.claim.ID)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Contains(t, entries[len(entries)-1].Entry, "Allocation run")
	})
}

func TestCashCallService_RunAllocation_FromLedger(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	fx := setupAllocationFixture(t, svc)

	t.Run("zero incurred is a no-op", func(t *testing.T) {
		result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.IncurredAmount)
		assert.Empty(t, result.IssuedCalls)
	})

	t.Run("incurred defaults to the claim ledger", func(t *testing.T) {
		_, err := svc.claim.PostTransaction(ctx, fx.claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypeReserve,
			Amount:          100000,
		})
		require.NoError(t, err)

		result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 100000.0, result.IncurredAmount)
		require.Len(t, result.IssuedCalls, 2)
		assert.ElementsMatch(t, []float64{60000, 40000}, callAmounts(result.IssuedCalls))
	})
}

func TestCashCallService_RunAllocation_Guards(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	t.Run("unknown claim", func(t *testing.T) {
		amount := 1000.0
		_, err := svc.cashCall.RunAllocation(ctx, uuid.New(), &domain.RunAllocationRequest{IncurredAmount: &amount})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("policy without a treaty", func(t *testing.T) {
		policy := testutil.CreateTestPolicy(t, svc.db)
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)

		amount := 1000.0
		_, err := svc.cashCall.RunAllocation(ctx, claim.ID, &domain.RunAllocationRequest{IncurredAmount: &amount})
		assert.ErrorIs(t, err, ErrNoTreaty)
	})

	t.Run("unbalanced layer blocks the run", func(t *testing.T) {
		policy := testutil.CreateTestPolicy(t, svc.db)
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		reinsurer := testutil.CreateTestParty(t, svc.db, "Half Placed Re", domain.PartyTypeOrganization)

		treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
			TreatyName: "Half placed",
		})
		require.NoError(t, err)
		layer, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
			LayerOrder: 1,
			LayerLimit: 1000000,
		})
		require.NoError(t, err)
		_, err = svc.reinsurance.AddParticipant(ctx, layer.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurer.ID,
			SharePercentage:  50,
		})
		require.NoError(t, err)

		amount := 200000.0
		_, err = svc.cashCall.RunAllocation(ctx, claim.ID, &domain.RunAllocationRequest{IncurredAmount: &amount})
		assert.ErrorIs(t, err, ErrUnbalancedLayer)

		// Nothing was issued
		calls, err := svc.cashCall.ListByClaim(ctx, claim.ID)
		require.NoError(t, err)
		assert.Empty(t, calls)
	})
}

// Three-layer tower with a retained ground layer: 10M xs 0 unplaced,
// 40M xs 10M split 50/50, 200M xs 50M split 33.33/33.33/33.34.
func TestCashCallService_RunAllocation_RetainedGroundLayer(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()

	policy := testutil.CreateTestPolicy(t, svc.db)
	claim := testutil.CreateTestClaim(t, svc.db, policy.ID)

	treaty, err := svc.reinsurance.CreateTreaty(ctx, policy.ID, &domain.CreateTreatyRequest{
		TreatyName: "Large Property XL",
		TreatyType: domain.TreatyTypeExcessLoss,
	})
	require.NoError(t, err)

	_, err = svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder: 1,
		LayerLimit: 10000000,
	})
	require.NoError(t, err)
	layer2, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder:      2,
		AttachmentPoint: 10000000,
		LayerLimit:      40000000,
	})
	require.NoError(t, err)
	layer3, err := svc.reinsurance.DefineLayer(ctx, treaty.ID, &domain.DefineLayerRequest{
		LayerOrder:      3,
		AttachmentPoint: 50000000,
		LayerLimit:      200000000,
	})
	require.NoError(t, err)

	for _, share := range []float64{50, 50} {
		reinsurer := testutil.CreateTestParty(t, svc.db, uuid.New().String(), domain.PartyTypeOrganization)
		_, err = svc.reinsurance.AddParticipant(ctx, layer2.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurer.ID,
			SharePercentage:  share,
		})
		require.NoError(t, err)
	}
	for _, share := range []float64{33.33, 33.33, 33.34} {
		reinsurer := testutil.CreateTestParty(t, svc.db, uuid.New().String(), domain.PartyTypeOrganization)
		_, err = svc.reinsurance.AddParticipant(ctx, layer3.ID, &domain.AddLayerParticipantRequest{
			ReinsurerPartyID: reinsurer.ID,
			SharePercentage:  share,
		})
		require.NoError(t, err)
	}

	t.Run("ground layer is retained, second layer splits", func(t *testing.T) {
		amount := 30000000.0
		result, err := svc.cashCall.RunAllocation(ctx, claim.ID, &domain.RunAllocationRequest{IncurredAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, 1, result.LayersTouched)
		require.Len(t, result.IssuedCalls, 2)
		assert.ElementsMatch(t, []float64{10000000, 10000000}, callAmounts(result.IssuedCalls))
	})

	t.Run("deterioration tops up and enters the third layer", func(t *testing.T) {
		amount := 60000000.0
		result, err := svc.cashCall.RunAllocation(ctx, claim.ID, &domain.RunAllocationRequest{IncurredAmount: &amount})
		require.NoError(t, err)
		assert.Equal(t, 2, result.LayersTouched)
		require.Len(t, result.IssuedCalls, 5)
		assert.ElementsMatch(t,
			[]float64{10000000, 10000000, 3333000, 3333000, 3334000},
			callAmounts(result.IssuedCalls))

		// Cumulative calls stay conservative: min(L, tower limit) worth called
		calls, err := svc.cashCall.ListByClaim(ctx, claim.ID)
		require.NoError(t, err)
		var total float64
		for _, c := range calls {
			total += c.CallAmount
		}
		assert.Equal(t, 50000000.0, total)
	})
}

func TestCashCallService_MarkPaid(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	fx := setupAllocationFixture(t, svc)

	amount := 500000.0
	result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, &domain.RunAllocationRequest{IncurredAmount: &amount})
	require.NoError(t, err)
	require.NotEmpty(t, result.IssuedCalls)
	callID := result.IssuedCalls[0].ID

	dto, err := svc.cashCall.MarkPaid(ctx, callID)
	require.NoError(t, err)
	assert.Equal(t, domain.CashCallStatusPaid, dto.Status)

	_, err = svc.cashCall.MarkPaid(ctx, callID)
	assert.ErrorIs(t, err, ErrCashCallPaid)

	_, err = svc.cashCall.MarkPaid(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCashCallService_ListOverdue(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	fx := setupAllocationFixture(t, svc)

	amount := 500000.0
	result, err := svc.cashCall.RunAllocation(ctx, fx.claim.ID, &domain.RunAllocationRequest{IncurredAmount: &amount})
	require.NoError(t, err)
	require.Len(t, result.IssuedCalls, 2)

	// Calls carry a 30 day payment term
	overdue, err := svc.cashCall.ListOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, overdue)

	overdue, err = svc.cashCall.ListOverdue(ctx, time.Now().AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Len(t, overdue, 2)

	// Paid calls fall out of the overdue list
	_, err = svc.cashCall.MarkPaid(ctx, result.IssuedCalls[0].ID)
	require.NoError(t, err)

	overdue, err = svc.cashCall.ListOverdue(ctx, time.Now().AddDate(0, 0, 31))
	require.NoError(t, err)
	assert.Len(t, overdue, 1)
}

func TestLayerPenetration(t *testing.T) {
	layer := &domain.ReinsuranceLayer{AttachmentPoint: 1000000, LayerLimit: 2000000}

	tests := []struct {
		name     string
		incurred float64
		want     float64
	}{
		{"below attachment", 500000, 0},
		{"at attachment", 1000000, 0},
		{"inside the layer", 1500000, 500000},
		{"at exhaustion", 3000000, 2000000},
		{"above exhaustion", 5000000, 2000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := layerPenetration(decimal.NewFromFloat(tt.incurred), layer)
			assert.True(t, got.Equal(decimal.NewFromFloat(tt.want)), "got %s", got)
		})
	}
}

func TestSplitByShares(t *testing.T) {
	participants := func(shares ...float64) []domain.LayerParticipant {
		ps := make([]domain.LayerParticipant, len(shares))
		for i, s := range shares {
			ps[i] = domain.LayerParticipant{SharePercentage: s}
			ps[i].ID = uuid.New()
		}
		return ps
	}

	t.Run("even split", func(t *testing.T) {
		targets := splitByShares(decimal.NewFromInt(100000), participants(60, 40))
		require.Len(t, targets, 2)
		assert.True(t, targets[0].amount.Equal(decimal.NewFromInt(60000)))
		assert.True(t, targets[1].amount.Equal(decimal.NewFromInt(40000)))
	})

	t.Run("residual cent lands on the largest share", func(t *testing.T) {
		penetration := decimal.NewFromFloat(100.01)
		targets := splitByShares(penetration, participants(33.33, 33.33, 33.34))

		sum := decimal.Zero
		for _, target := range targets {
			sum = sum.Add(target.amount)
		}
		assert.True(t, sum.Equal(penetration), "split sums to %s", sum)

		// Ordered by share descending, so the 33.34 participant is first
		assert.Equal(t, 33.34, targets[0].participant.SharePercentage)
		assert.True(t, targets[0].amount.GreaterThan(targets[1].amount))
	})

	t.Run("split always conserves the penetration", func(t *testing.T) {
		cases := []struct {
			penetration float64
			shares      []float64
		}{
			{999999.99, []float64{50, 30, 20}},
			{0.01, []float64{33.33, 33.33, 33.34}},
			{123456.78, []float64{25, 25, 25, 25}},
			{1000000, []float64{66.67, 33.33}},
		}
		for _, c := range cases {
			penetration := decimal.NewFromFloat(c.penetration)
			targets := splitByShares(penetration, participants(c.shares...))
			sum := decimal.Zero
			for _, target := range targets {
				sum = sum.Add(target.amount)
			}
			assert.True(t, sum.Equal(penetration.Round(2)),
				"penetration %.2f shares %v: sum %s", c.penetration, c.shares, sum)
		}
	})

	t.Run("no participants", func(t *testing.T) {
		targets := splitByShares(decimal.NewFromInt(1000), nil)
		assert.Empty(t, targets)
	})
}
