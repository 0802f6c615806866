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

type ReinsuranceHandler struct {
	reinsuranceService *service.ReinsuranceService
	logger             *zap.Logger
}

func NewReinsuranceHandler(reinsuranceService *service.ReinsuranceService, logger *zap.Logger) *ReinsuranceHandler {
	return &ReinsuranceHandler{
		reinsuranceService: reinsuranceService,
		logger:             logger,
	}
}

// @Summary Create treaty
// @Description Create the reinsurance treaty for a policy. One treaty per policy.
// @Tags Reinsurance
// @Accept json
// @Produce json
// @Param id path string true "Policy ID"
// @Param request body domain.CreateTreatyRequest true "Treaty data"
// @Success 201 {object} domain.TreatyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/treaty [post]
func (h *ReinsuranceHandler) CreateTreaty(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	var req domain.CreateTreatyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	treaty, err := h.reinsuranceService.CreateTreaty(r.Context(), policyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Policy not found")
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, "Policy already has a treaty")
		default:
			h.logger.Error("failed to create treaty", zap.String("policy_id", policyID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create treaty")
		}
		return
	}

	respondJSON(w, http.StatusCreated, treaty)
}

// @Summary Get treaty
// @Tags Reinsurance
// @Produce json
// @Param id path string true "Treaty ID"
// @Success 200 {object} domain.TreatyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /treaties/{id} [get]
func (h *ReinsuranceHandler) GetTreaty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid treaty ID")
		return
	}

	treaty, err := h.reinsuranceService.GetTreaty(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Treaty not found")
			return
		}
		h.logger.Error("failed to get treaty", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get treaty")
		return
	}

	respondJSON(w, http.StatusOK, treaty)
}

// @Summary Define layer
// @Description Add the next layer to the treaty. Layers must be contiguous from the ground up.
// @Tags Reinsurance
// @Accept json
// @Produce json
// @Param id path string true "Treaty ID"
// @Param request body domain.DefineLayerRequest true "Layer data"
// @Success 201 {object} domain.LayerDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /treaties/{id}/layers [post]
func (h *ReinsuranceHandler) DefineLayer(w http.ResponseWriter, r *http.Request) {
	treatyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid treaty ID")
		return
	}

	var req domain.DefineLayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	layer, err := h.reinsuranceService.DefineLayer(r.Context(), treatyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Treaty not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusUnprocessableEntity, "Layer order must extend the tower by one")
		case errors.Is(err, service.ErrNonContiguousLayer):
			respondWithError(w, http.StatusUnprocessableEntity, "Attachment point must equal the cumulative limit below")
		default:
			h.logger.Error("failed to define layer", zap.String("treaty_id", treatyID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to define layer")
		}
		return
	}

	respondJSON(w, http.StatusCreated, layer)
}

// @Summary Add layer participant
// @Description Add a reinsurer with a percentage share to a layer
// @Tags Reinsurance
// @Accept json
// @Produce json
// @Param id path string true "Layer ID"
// @Param request body domain.AddLayerParticipantRequest true "Participant data"
// @Success 201 {object} domain.LayerParticipantDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /layers/{id}/participants [post]
func (h *ReinsuranceHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	layerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid layer ID")
		return
	}

	var req domain.AddLayerParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	participant, err := h.reinsuranceService.AddParticipant(r.Context(), layerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Layer or reinsurer not found")
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, "Reinsurer already participates on this layer")
		case errors.Is(err, service.ErrSharesExceedFull):
			respondWithError(w, http.StatusUnprocessableEntity, "Shares would exceed 100 percent")
		default:
			h.logger.Error("failed to add participant", zap.String("layer_id", layerID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add participant")
		}
		return
	}

	respondJSON(w, http.StatusCreated, participant)
}

// @Summary Get reinsurance tower
// @Description Layer-by-layer tower view with placement and balance per layer
// @Tags Reinsurance
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} domain.TowerViewDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/tower [get]
func (h *ReinsuranceHandler) GetTower(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	tower, err := h.reinsuranceService.GetTower(r.Context(), policyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Policy not found")
		case errors.Is(err, service.ErrNoTreaty):
			respondWithError(w, http.StatusNotFound, "Policy has no reinsurance treaty")
		default:
			h.logger.Error("failed to get tower", zap.String("policy_id", policyID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to get tower")
		}
		return
	}

	respondJSON(w, http.StatusOK, tower)
}
