package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains paths that should not be audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that should not be audited
	SkipMethods []string
	// AuditReads enables auditing of GET requests (defaults to false)
	AuditReads bool
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/health/db",
			"/health/ready",
			"/swagger",
		},
		SkipMethods: []string{
			http.MethodOptions,
			http.MethodHead,
		},
		AuditReads: false,
	}
}

// AuditMiddleware provides audit logging for HTTP requests
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit returns middleware that logs modifications to the audit log
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		// Wrap response writer to capture status code
		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.logAudit(r, rw.statusCode)
	})
}

// shouldAudit determines if a request should be audited
func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	for _, method := range m.config.SkipMethods {
		if r.Method == method {
			return false
		}
	}

	if r.Method == http.MethodGet && !m.config.AuditReads {
		return false
	}

	path := r.URL.Path
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return false
		}
	}

	return true
}

// logAudit creates an audit log entry for the request
func (m *AuditMiddleware) logAudit(r *http.Request, statusCode int) {
	if m.auditService == nil {
		return
	}

	// Only log successful modifications
	if statusCode < 200 || statusCode >= 300 {
		return
	}

	action := m.methodToAction(r.Method)
	if action == "" {
		return
	}

	entityType, entityID := m.extractEntityInfo(r)

	m.auditService.Log(r.Context(), r, service.LogEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Method:     r.Method,
		Path:       r.URL.Path,
		StatusCode: statusCode,
	})
}

// methodToAction converts HTTP method to audit action
func (m *AuditMiddleware) methodToAction(method string) domain.AuditAction {
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return ""
	}
}

// extractEntityInfo extracts entity type and ID from the request path
func (m *AuditMiddleware) extractEntityInfo(r *http.Request) (string, *uuid.UUID) {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return m.parseEntityFromPath(r.URL.Path), nil
	}

	var entityID *uuid.UUID
	if idStr := routeCtx.URLParam("id"); idStr != "" {
		if id, err := uuid.Parse(idStr); err == nil {
			entityID = &id
		}
	}

	pattern := routeCtx.RoutePattern()
	entityType := m.parseEntityFromPath(pattern)

	return entityType, entityID
}

// parseEntityFromPath extracts entity type from a URL path
func (m *AuditMiddleware) parseEntityFromPath(path string) string {
	entityMap := map[string]string{
		"parties":      "Party",
		"roles":        "PartyRole",
		"submissions":  "Submission",
		"quotes":       "Quote",
		"policies":     "Policy",
		"claims":       "Claim",
		"subrogations": "Subrogation",
		"treaties":     "ReinsuranceTreaty",
		"layers":       "ReinsuranceLayer",
		"cashcalls":    "CashCall",
		"documents":    "Document",
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, part := range parts {
		if entityType, ok := entityMap[part]; ok {
			return entityType
		}
	}

	return "Unknown"
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
