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

func TestClaimService_File(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)
	now := time.Now()

	t.Run("file a claim", func(t *testing.T) {
		reported := now.AddDate(0, 0, -2)
		claim, err := svc.claim.File(ctx, &domain.FileClaimRequest{
			PolicyID:     policy.ID,
			DateOfLoss:   now.AddDate(0, 0, -10),
			ReportedDate: &reported,
			Description:  "Water damage in warehouse",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^CLM-\d{4}-\d{5}$`, claim.ClaimNumber)
		assert.Equal(t, domain.ClaimStatusOpen, claim.Status)

		// Filing writes the opening log entry
		entries, err := svc.claim.GetLogEntries(ctx, claim.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Entry, policy.PolicyNumber)
	})

	t.Run("loss after reported date", func(t *testing.T) {
		reported := now.AddDate(0, 0, -10)
		_, err := svc.claim.File(ctx, &domain.FileClaimRequest{
			PolicyID:     policy.ID,
			DateOfLoss:   now.AddDate(0, 0, -2),
			ReportedDate: &reported,
		})
		assert.ErrorIs(t, err, ErrInvalidClaimDates)
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := svc.claim.File(ctx, &domain.FileClaimRequest{
			PolicyID:   uuid.New(),
			DateOfLoss: now.AddDate(0, 0, -1),
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("unknown reporting party", func(t *testing.T) {
		reporter := uuid.New()
		_, err := svc.claim.File(ctx, &domain.FileClaimRequest{
			PolicyID:     policy.ID,
			DateOfLoss:   now.AddDate(0, 0, -1),
			ReportedByID: &reporter,
		})
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestClaimService_UpdateStatus(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	t.Run("open to under review", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		dto, err := svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusUnderReview,
			Notes:  "Adjuster assigned",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusUnderReview, dto.Status)

		entries, err := svc.claim.GetLogEntries(ctx, claim.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Entry, "Adjuster assigned")
	})

	t.Run("open straight to settled is rejected", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		_, err := svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusSettled,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		dto, err := svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusOpen,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusOpen, dto.Status)

		entries, err := svc.claim.GetLogEntries(ctx, claim.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("closed is terminal", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		_, err := svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusClosed,
		})
		require.NoError(t, err)

		_, err = svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusOpen,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})
}

func TestClaimService_Ledger(t *testing.T) {
	svc := newTestServices(t)
	ctx := testContext()
	policy := testutil.CreateTestPolicy(t, svc.db)

	t.Run("detail view sums the ledger", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)

		_, err := svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypeReserve,
			Amount:          50000,
		})
		require.NoError(t, err)
		_, err = svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypePaymentIndemnity,
			Amount:          20000,
			Description:     "First indemnity payment",
		})
		require.NoError(t, err)

		detail, err := svc.claim.GetByID(ctx, claim.ID)
		require.NoError(t, err)
		assert.Equal(t, 70000.0, detail.TotalIncurred)
		assert.Equal(t, 50000.0, detail.TotalReserved)
		assert.Equal(t, 20000.0, detail.TotalPaid)
	})

	t.Run("default currency", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		txn, err := svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypePaymentExpense,
			Amount:          1500,
		})
		require.NoError(t, err)
		assert.Equal(t, "CHF", txn.Currency)
	})

	t.Run("invalid transaction type", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		_, err := svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: "REFUND",
			Amount:          100,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("closed claim takes no transactions", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		_, err := svc.claim.UpdateStatus(ctx, claim.ID, &domain.UpdateClaimStatusRequest{
			Status: domain.ClaimStatusClosed,
		})
		require.NoError(t, err)

		_, err = svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypeReserve,
			Amount:          1000,
		})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	})

	t.Run("transactions list in posting order", func(t *testing.T) {
		claim := testutil.CreateTestClaim(t, svc.db, policy.ID)
		first := time.Now().AddDate(0, 0, -3)
		second := time.Now().AddDate(0, 0, -1)

		_, err := svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypeReserve,
			Amount:          9000,
			TransactionDate: &second,
		})
		require.NoError(t, err)
		_, err = svc.claim.PostTransaction(ctx, claim.ID, &domain.PostTransactionRequest{
			TransactionType: domain.TransactionTypeReserve,
			Amount:          3000,
			TransactionDate: &first,
		})
		require.NoError(t, err)

		transactions, err := svc.claim.GetTransactions(ctx, claim.ID)
		require.NoError(t, err)
		require.Len(t, transactions, 2)
		assert.Equal(t, 3000.0, transactions[0].Amount)
		assert.Equal(t, 9000.0, transactions[1].Amount)
	})
}
