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

type CoinsuranceHandler struct {
	coinsuranceService *service.CoinsuranceService
	logger             *zap.Logger
}

func NewCoinsuranceHandler(coinsuranceService *service.CoinsuranceService, logger *zap.Logger) *CoinsuranceHandler {
	return &CoinsuranceHandler{
		coinsuranceService: coinsuranceService,
		logger:             logger,
	}
}

// @Summary Add coinsurer
// @Description Add an insurer with a percentage share to the policy's coinsurance panel
// @Tags Coinsurance
// @Accept json
// @Produce json
// @Param id path string true "Policy ID"
// @Param request body domain.AddCoinsurerRequest true "Coinsurer data"
// @Success 201 {object} domain.PolicyInsurerDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/coinsurers [post]
func (h *CoinsuranceHandler) AddCoinsurer(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	var req domain.AddCoinsurerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	insurer, err := h.coinsuranceService.AddCoinsurer(r.Context(), policyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Policy or insurer not found")
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, "Insurer already participates on this policy")
		case errors.Is(err, service.ErrSharesExceedFull):
			respondWithError(w, http.StatusUnprocessableEntity, "Shares would exceed 100 percent")
		case errors.Is(err, service.ErrDuplicateLead):
			respondWithError(w, http.StatusConflict, "Policy already has a lead insurer")
		default:
			h.logger.Error("failed to add coinsurer", zap.String("policy_id", policyID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add coinsurer")
		}
		return
	}

	respondJSON(w, http.StatusCreated, insurer)
}

// @Summary Get coinsurance view
// @Description Panel composition with total share and balance flag
// @Tags Coinsurance
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} domain.CoinsuranceViewDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/coinsurers [get]
func (h *CoinsuranceHandler) GetView(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	view, err := h.coinsuranceService.GetView(r.Context(), policyID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("failed to get coinsurance view", zap.String("policy_id", policyID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get coinsurance view")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// @Summary Get lead insurer
// @Tags Coinsurance
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} domain.PolicyInsurerDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/coinsurers/lead [get]
func (h *CoinsuranceHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	lead, err := h.coinsuranceService.GetLead(r.Context(), policyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoLeadInsurer):
			respondWithError(w, http.StatusConflict, "Policy has coinsurers but no lead insurer")
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Policy has no coinsurers")
		default:
			h.logger.Error("failed to get lead insurer", zap.String("policy_id", policyID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to get lead insurer")
		}
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Remove coinsurer
// @Tags Coinsurance
// @Param id path string true "Policy ID"
// @Param insurerId path string true "Insurer party ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/coinsurers/{insurerId} [delete]
func (h *CoinsuranceHandler) RemoveCoinsurer(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	insurerID, err := uuid.Parse(chi.URLParam(r, "insurerId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid insurer ID")
		return
	}

	if err := h.coinsuranceService.RemoveCoinsurer(r.Context(), policyID, insurerID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Coinsurer not found on policy")
			return
		}
		h.logger.Error("failed to remove coinsurer",
			zap.String("policy_id", policyID.String()),
			zap.String("insurer_id", insurerID.String()),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to remove coinsurer")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
