package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lucerne-re/policy-api/internal/auth"
	"github.com/lucerne-re/policy-api/internal/config"
	"github.com/lucerne-re/policy-api/internal/database"
	"github.com/lucerne-re/policy-api/internal/http/handler"
	"github.com/lucerne-re/policy-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/lucerne-re/policy-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	auditMiddleware    *middleware.AuditMiddleware
	partyHandler       *handler.PartyHandler
	roleHandler        *handler.RoleHandler
	submissionHandler  *handler.SubmissionHandler
	policyHandler      *handler.PolicyHandler
	coinsuranceHandler *handler.CoinsuranceHandler
	claimHandler       *handler.ClaimHandler
	subrogationHandler *handler.SubrogationHandler
	reinsuranceHandler *handler.ReinsuranceHandler
	cashCallHandler    *handler.CashCallHandler
	documentHandler    *handler.DocumentHandler
	reportHandler      *handler.ReportHandler
	auditHandler       *handler.AuditHandler
	authHandler        *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	partyHandler *handler.PartyHandler,
	roleHandler *handler.RoleHandler,
	submissionHandler *handler.SubmissionHandler,
	policyHandler *handler.PolicyHandler,
	coinsuranceHandler *handler.CoinsuranceHandler,
	claimHandler *handler.ClaimHandler,
	subrogationHandler *handler.SubrogationHandler,
	reinsuranceHandler *handler.ReinsuranceHandler,
	cashCallHandler *handler.CashCallHandler,
	documentHandler *handler.DocumentHandler,
	reportHandler *handler.ReportHandler,
	auditHandler *handler.AuditHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		auditMiddleware:    auditMiddleware,
		partyHandler:       partyHandler,
		roleHandler:        roleHandler,
		submissionHandler:  submissionHandler,
		policyHandler:      policyHandler,
		coinsuranceHandler: coinsuranceHandler,
		claimHandler:       claimHandler,
		subrogationHandler: subrogationHandler,
		reinsuranceHandler: reinsuranceHandler,
		cashCallHandler:    cashCallHandler,
		documentHandler:    documentHandler,
		reportHandler:      reportHandler,
		auditHandler:       auditHandler,
		authHandler:        authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Audit logs (admin only)
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.auditHandler.List)
				r.Get("/entity/{entityType}/{entityId}", rt.auditHandler.GetByEntity)
			})

			// Parties
			r.Route("/parties", func(r chi.Router) {
				r.Get("/", rt.partyHandler.List)
				r.Post("/", rt.partyHandler.Create)
				r.Get("/search", rt.partyHandler.Search)
				r.Get("/insureds", rt.partyHandler.ListInsureds)
				r.Get("/{id}", rt.partyHandler.GetByID)
				r.Put("/{id}", rt.partyHandler.Update)
			})

			// Party roles
			r.Route("/roles", func(r chi.Router) {
				r.Post("/", rt.roleHandler.Assign)
				r.Get("/record/{recordKind}/{recordId}", rt.roleHandler.ListForRecord)
				r.Delete("/{id}", rt.roleHandler.Remove)
			})

			// Submissions
			r.Route("/submissions", func(r chi.Router) {
				r.Get("/", rt.submissionHandler.List)
				r.Post("/", rt.submissionHandler.Create)
				r.Get("/{id}", rt.submissionHandler.GetByID)
				r.Post("/{id}/advance", rt.submissionHandler.Advance)
				r.Get("/{id}/history", rt.submissionHandler.GetStatusHistory)
				r.Get("/{id}/quotes", rt.submissionHandler.GetQuotes)
				r.Post("/{id}/quotes", rt.submissionHandler.AddQuote)
			})

			// Quotes
			r.Put("/quotes/{quoteId}/status", rt.submissionHandler.UpdateQuoteStatus)

			// Policies
			r.Route("/policies", func(r chi.Router) {
				r.Get("/", rt.policyHandler.List)
				r.Post("/bind", rt.policyHandler.Bind)
				r.Get("/{id}", rt.policyHandler.GetByID)
				r.Get("/{id}/detail", rt.policyHandler.GetDetail)
				r.Post("/{id}/coverages", rt.policyHandler.AddCoverage)
				r.Get("/{id}/assets", rt.policyHandler.ListAssets)
				r.Post("/{id}/assets", rt.policyHandler.AddAsset)
				r.Get("/{id}/claims", rt.policyHandler.ListClaims)

				// Coinsurance panel
				r.Get("/{id}/coinsurers", rt.coinsuranceHandler.GetView)
				r.Post("/{id}/coinsurers", rt.coinsuranceHandler.AddCoinsurer)
				r.Get("/{id}/coinsurers/lead", rt.coinsuranceHandler.GetLead)
				r.Delete("/{id}/coinsurers/{insurerId}", rt.coinsuranceHandler.RemoveCoinsurer)

				// Reinsurance
				r.Post("/{id}/treaty", rt.reinsuranceHandler.CreateTreaty)
				r.Get("/{id}/tower", rt.reinsuranceHandler.GetTower)
			})

			// Treaties and layers
			r.Get("/treaties/{id}", rt.reinsuranceHandler.GetTreaty)
			r.Post("/treaties/{id}/layers", rt.reinsuranceHandler.DefineLayer)
			r.Post("/layers/{id}/participants", rt.reinsuranceHandler.AddParticipant)

			// Claims
			r.Route("/claims", func(r chi.Router) {
				r.Get("/", rt.claimHandler.List)
				r.Post("/", rt.claimHandler.File)
				r.Get("/{id}", rt.claimHandler.GetByID)
				r.Put("/{id}/status", rt.claimHandler.UpdateStatus)
				r.Get("/{id}/log", rt.claimHandler.GetLogEntries)
				r.Post("/{id}/log", rt.claimHandler.AddLogEntry)
				r.Get("/{id}/transactions", rt.claimHandler.GetTransactions)
				r.Post("/{id}/transactions", rt.claimHandler.PostTransaction)
				r.Get("/{id}/subrogations", rt.subrogationHandler.ListByClaim)
				r.Post("/{id}/subrogations", rt.subrogationHandler.Record)
				r.Post("/{id}/allocations", rt.cashCallHandler.RunAllocation)
				r.Get("/{id}/cashcalls", rt.cashCallHandler.ListByClaim)
			})

			// Subrogations
			r.Post("/subrogations/{id}/recoveries", rt.subrogationHandler.RecordRecovery)
			r.Post("/subrogations/{id}/close", rt.subrogationHandler.Close)

			// Cash calls
			r.Route("/cashcalls", func(r chi.Router) {
				r.Get("/overdue", rt.cashCallHandler.ListOverdue)
				r.Get("/{id}", rt.cashCallHandler.GetByID)
				r.Post("/{id}/pay", rt.cashCallHandler.MarkPaid)
			})

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/record/{recordKind}/{recordId}", rt.documentHandler.ListForRecord)
				r.Post("/record/{recordKind}/{recordId}", rt.documentHandler.Upload)
				r.Get("/{id}", rt.documentHandler.GetByID)
				r.Get("/{id}/download", rt.documentHandler.Download)
				r.Delete("/{id}", rt.documentHandler.Delete)
			})

			// Reports
			r.Get("/reports/summary", rt.reportHandler.GetBookSummary)
		})
	})

	return r
}
