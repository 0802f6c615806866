// Package testutil provides the shared database harness for package tests.
// Tests run against an in-memory SQLite database so no external services
// are needed.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/database"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// The connection pool is capped at one connection; a second connection
// to an in-memory SQLite database would see an empty schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")

	return db
}

// CreateTestParty creates a party and returns it
func CreateTestParty(t *testing.T, db *gorm.DB, name string, partyType domain.PartyType) *domain.Party {
	t.Helper()

	party := &domain.Party{
		PartyType: partyType,
		Name:      name,
		Email:     "test@example.com",
		Country:   "Switzerland",
	}
	require.NoError(t, db.Create(party).Error)
	return party
}

// CreateTestPolicy creates an active policy with a unique number and returns it
func CreateTestPolicy(t *testing.T, db *gorm.DB) *domain.Policy {
	t.Helper()

	now := time.Now()
	policy := &domain.Policy{
		PolicyNumber:   fmt.Sprintf("POL-TEST-%s", uuid.New().String()[:8]),
		Status:         domain.PolicyStatusActive,
		EffectiveDate:  now.AddDate(0, -1, 0),
		ExpirationDate: now.AddDate(1, 0, 0),
		Version:        1,
	}
	require.NoError(t, db.Create(policy).Error)
	return policy
}

// CreateTestClaim creates an open claim against a policy and returns it
func CreateTestClaim(t *testing.T, db *gorm.DB, policyID uuid.UUID) *domain.Claim {
	t.Helper()

	now := time.Now()
	claim := &domain.Claim{
		ClaimNumber:  fmt.Sprintf("CLM-TEST-%s", uuid.New().String()[:8]),
		PolicyID:     policyID,
		Status:       domain.ClaimStatusOpen,
		DateOfLoss:   now.AddDate(0, 0, -14),
		ReportedDate: now.AddDate(0, 0, -7),
	}
	require.NoError(t, db.Create(claim).Error)
	return claim
}
