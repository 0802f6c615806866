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

type SubrogationHandler struct {
	subrogationService *service.SubrogationService
	logger             *zap.Logger
}

func NewSubrogationHandler(subrogationService *service.SubrogationService, logger *zap.Logger) *SubrogationHandler {
	return &SubrogationHandler{
		subrogationService: subrogationService,
		logger:             logger,
	}
}

// @Summary Record subrogation
// @Description Open a recovery case against a liable third party
// @Tags Subrogations
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param request body domain.RecordSubrogationRequest true "Subrogation data"
// @Success 201 {object} domain.SubrogationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/subrogations [post]
func (h *SubrogationHandler) Record(w http.ResponseWriter, r *http.Request) {
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	var req domain.RecordSubrogationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	subrogation, err := h.subrogationService.Record(r.Context(), claimID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Claim or liable party not found")
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondWithError(w, http.StatusUnprocessableEntity, "Cannot record subrogation on a closed claim")
		default:
			h.logger.Error("failed to record subrogation", zap.String("claim_id", claimID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to record subrogation")
		}
		return
	}

	respondJSON(w, http.StatusCreated, subrogation)
}

// @Summary List subrogations for claim
// @Tags Subrogations
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {array} domain.SubrogationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/subrogations [get]
func (h *SubrogationHandler) ListByClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	subrogations, err := h.subrogationService.ListByClaim(r.Context(), claimID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Claim not found")
			return
		}
		h.logger.Error("failed to list subrogations", zap.String("claim_id", claimID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list subrogations")
		return
	}

	respondJSON(w, http.StatusOK, subrogations)
}

// @Summary Record recovery
// @Description Book a recovered amount against a subrogation case
// @Tags Subrogations
// @Accept json
// @Produce json
// @Param id path string true "Subrogation ID"
// @Param request body domain.RecordRecoveryRequest true "Recovery amount"
// @Success 200 {object} domain.SubrogationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /subrogations/{id}/recoveries [post]
func (h *SubrogationHandler) RecordRecovery(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subrogation ID")
		return
	}

	var req domain.RecordRecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	subrogation, err := h.subrogationService.RecordRecovery(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Subrogation not found")
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondWithError(w, http.StatusUnprocessableEntity, "Subrogation is closed")
		case errors.Is(err, service.ErrRecoveryExceedsPotential):
			respondWithError(w, http.StatusUnprocessableEntity, "Recovery would exceed the potential amount")
		default:
			h.logger.Error("failed to record recovery", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to record recovery")
		}
		return
	}

	respondJSON(w, http.StatusOK, subrogation)
}

// @Summary Close subrogation
// @Tags Subrogations
// @Produce json
// @Param id path string true "Subrogation ID"
// @Success 200 {object} domain.SubrogationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /subrogations/{id}/close [post]
func (h *SubrogationHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid subrogation ID")
		return
	}

	subrogation, err := h.subrogationService.Close(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Subrogation not found")
			return
		}
		h.logger.Error("failed to close subrogation", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to close subrogation")
		return
	}

	respondJSON(w, http.StatusOK, subrogation)
}
