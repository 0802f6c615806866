package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

type RoleHandler struct {
	roleService *service.RoleService
	logger      *zap.Logger
}

func NewRoleHandler(roleService *service.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		logger:      logger,
	}
}

// @Summary Assign role
// @Description Associate a party with a record in a named role
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body domain.AssignRoleRequest true "Role assignment"
// @Success 201 {object} domain.PartyRoleDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /roles [post]
func (h *RoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	role, err := h.roleService.AssignRole(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRecordKind):
			respondWithError(w, http.StatusBadRequest, "Unknown record kind")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Party not found")
		case errors.Is(err, service.ErrRecordNotFound):
			respondWithError(w, http.StatusNotFound, "Referenced record not found")
		case errors.Is(err, service.ErrDuplicateRole):
			respondWithError(w, http.StatusConflict, "Role already assigned on this record")
		case errors.Is(err, service.ErrSingularRoleTaken):
			respondWithError(w, http.StatusConflict, "Another party already holds this role on the record")
		default:
			h.logger.Error("failed to assign role", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to assign role")
		}
		return
	}

	respondJSON(w, http.StatusCreated, role)
}

// @Summary List roles on a record
// @Tags Roles
// @Produce json
// @Param recordKind path string true "Record kind (party, submission, quote, policy, claim, reinsurance_treaty, cash_call)"
// @Param recordId path string true "Record ID"
// @Success 200 {array} domain.PartyRoleDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /roles/record/{recordKind}/{recordId} [get]
func (h *RoleHandler) ListForRecord(w http.ResponseWriter, r *http.Request) {
	kind := domain.RecordKind(chi.URLParam(r, "recordKind"))
	recordID, err := uuid.Parse(chi.URLParam(r, "recordId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	roles, err := h.roleService.RolesFor(r.Context(), kind, recordID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecordKind) {
			respondWithError(w, http.StatusBadRequest, "Unknown record kind")
			return
		}
		h.logger.Error("failed to list roles",
			zap.String("record_kind", string(kind)),
			zap.String("record_id", recordID.String()),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list roles")
		return
	}

	respondJSON(w, http.StatusOK, roles)
}

// @Summary Remove role
// @Tags Roles
// @Param id path string true "Role assignment ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /roles/{id} [delete]
func (h *RoleHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid role assignment ID")
		return
	}

	if err := h.roleService.RemoveRole(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Role assignment not found")
			return
		}
		h.logger.Error("failed to remove role", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to remove role")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
