package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lucerne-re/policy-api/internal/repository"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNumberSequenceService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewNumberSequenceService(repository.NewNumberSequenceRepository(db), zap.NewNop())
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("numbers increment per entity type", func(t *testing.T) {
		first, err := svc.GenerateSubmissionNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SUB-%d-00001", year), first)

		second, err := svc.GenerateSubmissionNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SUB-%d-00002", year), second)

		// Policy counter runs independently
		policy, err := svc.GeneratePolicyNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("POL-%d-00001", year), policy)
	})

	t.Run("current sequence reads without incrementing", func(t *testing.T) {
		current, err := svc.GetCurrentSequence(ctx, "submission", year)
		require.NoError(t, err)
		assert.Equal(t, 2, current)

		missing, err := svc.GetCurrentSequence(ctx, "submission", year-1)
		require.NoError(t, err)
		assert.Equal(t, 0, missing)
	})

	t.Run("initialize never lowers the counter", func(t *testing.T) {
		require.NoError(t, svc.InitializeSequence(ctx, "claim", year, 40))

		number, err := svc.GenerateClaimNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("CLM-%d-00041", year), number)

		require.NoError(t, svc.InitializeSequence(ctx, "claim", year, 5))
		current, err := svc.GetCurrentSequence(ctx, "claim", year)
		require.NoError(t, err)
		assert.Equal(t, 41, current)
	})
}
