package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lucerne-re/policy-api/internal/config"
	"github.com/lucerne-re/policy-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := cfg.ConnectionString()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck pings the database with a timeout
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// HealthCheckWithStats pings the database and returns connection pool stats
func HealthCheckWithStats(ctx context.Context, db *gorm.DB) (map[string]interface{}, error) {
	if err := HealthCheck(ctx, db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"max_open":         stats.MaxOpenConnections,
	}, nil
}

// AutoMigrate runs automatic migrations (for development only)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Party{},
		&domain.PartyRole{},
		&domain.Submission{},
		&domain.SubmissionStatusHistory{},
		&domain.Quote{},
		&domain.Policy{},
		&domain.Coverage{},
		&domain.InsurableAsset{},
		&domain.AssetLocation{},
		&domain.AssetDetail{},
		&domain.Claim{},
		&domain.ClaimLogEntry{},
		&domain.FinancialTransaction{},
		&domain.Subrogation{},
		&domain.PolicyInsurer{},
		&domain.ReinsuranceTreaty{},
		&domain.ReinsuranceLayer{},
		&domain.LayerParticipant{},
		&domain.CashCall{},
		&domain.Document{},
		&domain.NumberSequence{},
		&domain.AuditLog{},
	)
}
