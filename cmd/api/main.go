package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucerne-re/policy-api/docs"
	"github.com/lucerne-re/policy-api/internal/auth"
	"github.com/lucerne-re/policy-api/internal/config"
	"github.com/lucerne-re/policy-api/internal/database"
	"github.com/lucerne-re/policy-api/internal/datawarehouse"
	"github.com/lucerne-re/policy-api/internal/http/handler"
	"github.com/lucerne-re/policy-api/internal/http/middleware"
	"github.com/lucerne-re/policy-api/internal/http/router"
	"github.com/lucerne-re/policy-api/internal/jobs"
	"github.com/lucerne-re/policy-api/internal/logger"
	"github.com/lucerne-re/policy-api/internal/repository"
	"github.com/lucerne-re/policy-api/internal/service"
	"github.com/lucerne-re/policy-api/internal/storage"
	"go.uber.org/zap"
)

// @title Lucerne Re Policy API
// @version 1.0
// @description Policy administration API for submissions, policies, claims, and reinsurance cash calls
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email it@lucerne-re.ch

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "policy-api-staging.lucerne-re.ch"
	case "production":
		docs.SwaggerInfo.Host = "policy-api.lucerne-re.ch"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Schema is managed by goose migrations in staging/production.
	// AutoMigrate keeps local development databases in sync.
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate schema: %w", err)
		}
	}

	// Initialize document storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize reporting warehouse connection (optional)
	// The app continues without it if not configured
	var dwClient *datawarehouse.Client
	if cfg.DataWarehouse.Enabled {
		dwClient, err = datawarehouse.NewClient(&cfg.DataWarehouse, log)
		if err != nil {
			// Log error but don't fail - the warehouse is optional
			log.Warn("Warehouse connection failed, continuing without it",
				zap.Error(err),
			)
		} else if dwClient != nil {
			log.Info("Warehouse connected successfully",
				zap.Int("max_open_conns", cfg.DataWarehouse.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.DataWarehouse.QueryTimeout),
			)
		}
	} else {
		log.Info("Warehouse not configured, skipping",
			zap.Bool("enabled", cfg.DataWarehouse.Enabled),
		)
	}

	// Initialize repositories
	partyRepo := repository.NewPartyRepository(db)
	roleRepo := repository.NewPartyRoleRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	subrogationRepo := repository.NewSubrogationRepository(db)
	coinsuranceRepo := repository.NewCoinsuranceRepository(db)
	reinsuranceRepo := repository.NewReinsuranceRepository(db)
	cashCallRepo := repository.NewCashCallRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	// Number sequence service first (submissions, policies, claims, and
	// cash calls all draw from it)
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)

	partyService := service.NewPartyService(partyRepo, roleRepo, log, db)
	roleService := service.NewRoleService(roleRepo, partyRepo, log, db)
	submissionService := service.NewSubmissionService(submissionRepo, quoteRepo, partyRepo, roleRepo, numberSequenceService, log, db)
	policyService := service.NewPolicyService(policyRepo, assetRepo, submissionRepo, quoteRepo, roleRepo, numberSequenceService, log, db)
	claimService := service.NewClaimService(claimRepo, transactionRepo, policyRepo, partyRepo, numberSequenceService, log, db)
	subrogationService := service.NewSubrogationService(subrogationRepo, claimRepo, partyRepo, roleRepo, log, db)
	coinsuranceService := service.NewCoinsuranceService(coinsuranceRepo, policyRepo, partyRepo, roleRepo, log, db)
	reinsuranceService := service.NewReinsuranceService(reinsuranceRepo, policyRepo, partyRepo, roleRepo, log, db)
	cashCallService := service.NewCashCallService(cashCallRepo, claimRepo, transactionRepo, reinsuranceRepo, numberSequenceService, log, db)
	documentService := service.NewDocumentService(documentRepo, roleService, fileStorage, log)
	reportService := service.NewReportService(policyRepo, claimRepo, cashCallRepo, roleService, log, db)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	// Warehouse export bridges the cash call ledger to the bordereau table
	exporter := datawarehouse.NewExporter(dwClient, log)
	exportService := service.NewExportService(cashCallRepo, exporter, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	partyHandler := handler.NewPartyHandler(partyService, log)
	roleHandler := handler.NewRoleHandler(roleService, log)
	submissionHandler := handler.NewSubmissionHandler(submissionService, log)
	policyHandler := handler.NewPolicyHandler(policyService, reportService, claimService, log)
	coinsuranceHandler := handler.NewCoinsuranceHandler(coinsuranceService, log)
	claimHandler := handler.NewClaimHandler(claimService, log)
	subrogationHandler := handler.NewSubrogationHandler(subrogationService, log)
	reinsuranceHandler := handler.NewReinsuranceHandler(reinsuranceService, log)
	cashCallHandler := handler.NewCashCallHandler(cashCallService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)
	authHandler := handler.NewAuthHandler(log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		partyHandler,
		roleHandler,
		submissionHandler,
		policyHandler,
		coinsuranceHandler,
		claimHandler,
		subrogationHandler,
		reinsuranceHandler,
		cashCallHandler,
		documentHandler,
		reportHandler,
		auditHandler,
		authHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		if dwClient != nil {
			if err := jobs.RegisterWarehouseExportJob(
				scheduler,
				exportService,
				log,
				cfg.Jobs.WarehouseExportCron,
				cfg.Jobs.TimeoutDuration(),
			); err != nil {
				log.Error("Failed to register warehouse export job", zap.Error(err))
			}
		}

		if err := jobs.RegisterOverdueCashCallsJob(
			scheduler,
			cashCallService,
			log,
			cfg.Jobs.OverdueSweepCron,
			cfg.Jobs.TimeoutDuration(),
		); err != nil {
			log.Error("Failed to register overdue cash call job", zap.Error(err))
		}

		if err := jobs.RegisterAuditCleanupJob(
			scheduler,
			auditLogService,
			log,
			cfg.Jobs.AuditCleanupCron,
			cfg.Jobs.AuditRetentionDays,
			cfg.Jobs.TimeoutDuration(),
		); err != nil {
			log.Error("Failed to register audit cleanup job", zap.Error(err))
		}

		scheduler.Start()
		log.Info("Scheduler started",
			zap.Strings("jobs", scheduler.GetJobNames()),
		)
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close warehouse connection if initialized
		if dwClient != nil {
			if err := dwClient.Close(); err != nil {
				log.Warn("Error closing warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
