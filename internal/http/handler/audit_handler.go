package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// AuditLogDTO represents an audit log entry for API response
type AuditLogDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"userId,omitempty"`
	UserName    string `json:"userName,omitempty"`
	Action      string `json:"action"`
	EntityType  string `json:"entityType"`
	EntityID    string `json:"entityId,omitempty"`
	Method      string `json:"method,omitempty"`
	Path        string `json:"path,omitempty"`
	StatusCode  int    `json:"statusCode,omitempty"`
	IPAddress   string `json:"ipAddress,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	PerformedAt string `json:"performedAt"`
}

// @Summary List audit logs
// @Description Returns a paginated list of audit log entries with optional filters
// @Tags Audit
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action type"
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID"
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} domain.PaginatedResponse{data=[]AuditLogDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)
	if pageSize > 100 {
		pageSize = 100
	}

	params := service.AuditLogQueryParams{
		UserID:     r.URL.Query().Get("userId"),
		EntityType: r.URL.Query().Get("entityType"),
		Page:       page,
		PageSize:   pageSize,
	}

	if actionStr := r.URL.Query().Get("action"); actionStr != "" {
		action := domain.AuditAction(actionStr)
		params.Action = &action
	}

	if entityIDStr := r.URL.Query().Get("entityId"); entityIDStr != "" {
		if entityID, err := uuid.Parse(entityIDStr); err == nil {
			params.EntityID = &entityID
		}
	}

	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startStr); err == nil {
			params.StartTime = &startTime
		}
	}

	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endStr); err == nil {
			params.EndTime = &endTime
		}
	}

	logs, total, err := h.auditService.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	dtos := make([]AuditLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = toAuditLogDTO(log)
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(dtos, total, page, pageSize))
}

// @Summary Get audit logs for an entity
// @Description Returns the audit trail of a specific entity
// @Tags Audit
// @Produce json
// @Param entityType path string true "Entity type (e.g., Policy, Claim)"
// @Param entityId path string true "Entity ID"
// @Param limit query int false "Maximum number of entries (default: 50)"
// @Success 200 {array} AuditLogDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit/entity/{entityType}/{entityId} [get]
func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityIDStr := chi.URLParam(r, "entityId")

	entityID, err := uuid.Parse(entityIDStr)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entity ID")
		return
	}

	limit := parseIntQuery(r, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	logs, err := h.auditService.GetByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		h.logger.Error("failed to get entity audit logs",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityIDStr),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	dtos := make([]AuditLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = toAuditLogDTO(log)
	}

	respondJSON(w, http.StatusOK, dtos)
}

// toAuditLogDTO converts an audit log to a DTO
func toAuditLogDTO(log domain.AuditLog) AuditLogDTO {
	dto := AuditLogDTO{
		ID:          log.ID.String(),
		UserID:      log.UserID,
		UserName:    log.UserName,
		Action:      string(log.Action),
		EntityType:  log.EntityType,
		Method:      log.Method,
		Path:        log.Path,
		StatusCode:  log.StatusCode,
		IPAddress:   log.IPAddress,
		RequestID:   log.RequestID,
		PerformedAt: log.PerformedAt.Format(time.RFC3339),
	}

	if log.EntityID != nil {
		dto.EntityID = log.EntityID.String()
	}

	return dto
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}
