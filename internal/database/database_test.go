package database_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/database"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

// The schema must carry no dialect-specific column defaults: the full model
// set migrates on SQLite as-is.
func TestAutoMigrate_SQLite(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, database.AutoMigrate(db))
}

func TestBeforeCreate_AssignsIDs(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, database.AutoMigrate(db))

	party := &domain.Party{
		PartyType: domain.PartyTypeOrganization,
		Name:      "Titlis Holding AG",
		Country:   "Switzerland",
	}
	require.NoError(t, db.Create(party).Error)
	assert.NotEqual(t, uuid.Nil, party.ID)

	// Models with standalone id columns get theirs app-side too
	role := &domain.PartyRole{
		PartyID:    party.ID,
		RoleName:   domain.RoleInsurer,
		RecordKind: domain.RecordKindParty,
		RecordID:   party.ID,
	}
	require.NoError(t, db.Create(role).Error)
	assert.NotEqual(t, uuid.Nil, role.ID)

	// A caller-chosen id survives the hook
	fixed := uuid.New()
	other := &domain.Party{
		PartyType: domain.PartyTypePerson,
		Name:      "Anna Keller",
		Country:   "Switzerland",
	}
	other.ID = fixed
	require.NoError(t, db.Create(other).Error)
	assert.Equal(t, fixed, other.ID)
}
