package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

type CashCallHandler struct {
	cashCallService *service.CashCallService
	logger          *zap.Logger
}

func NewCashCallHandler(cashCallService *service.CashCallService, logger *zap.Logger) *CashCallHandler {
	return &CashCallHandler{
		cashCallService: cashCallService,
		logger:          logger,
	}
}

// @Summary Run allocation
// @Description Allocate the claim's incurred amount across the reinsurance tower and
// issue cash calls for the uncovered deltas. Safe to re-run as the incurred develops.
// @Tags CashCalls
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param request body domain.RunAllocationRequest false "Optional incurred override"
// @Success 200 {object} domain.AllocationResultDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/allocations [post]
func (h *CashCallHandler) RunAllocation(w http.ResponseWriter, r *http.Request) {
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	req := &domain.RunAllocationRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	result, err := h.cashCallService.RunAllocation(r.Context(), claimID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Claim not found")
		case errors.Is(err, service.ErrNoTreaty):
			respondWithError(w, http.StatusUnprocessableEntity, "Policy has no reinsurance treaty")
		case errors.Is(err, service.ErrUnbalancedLayer):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("allocation run failed", zap.String("claim_id", claimID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Allocation run failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary List cash calls for claim
// @Tags CashCalls
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {array} domain.CashCallDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/cashcalls [get]
func (h *CashCallHandler) ListByClaim(w http.ResponseWriter, r *http.Request) {
	claimID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	calls, err := h.cashCallService.ListByClaim(r.Context(), claimID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Claim not found")
			return
		}
		h.logger.Error("failed to list cash calls", zap.String("claim_id", claimID.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list cash calls")
		return
	}

	respondJSON(w, http.StatusOK, calls)
}

// @Summary Get cash call
// @Tags CashCalls
// @Produce json
// @Param id path string true "Cash call ID"
// @Success 200 {object} domain.CashCallDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /cashcalls/{id} [get]
func (h *CashCallHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cash call ID")
		return
	}

	call, err := h.cashCallService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Cash call not found")
			return
		}
		h.logger.Error("failed to get cash call", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get cash call")
		return
	}

	respondJSON(w, http.StatusOK, call)
}

// @Summary Mark cash call paid
// @Tags CashCalls
// @Produce json
// @Param id path string true "Cash call ID"
// @Success 200 {object} domain.CashCallDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /cashcalls/{id}/pay [post]
func (h *CashCallHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cash call ID")
		return
	}

	call, err := h.cashCallService.MarkPaid(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Cash call not found")
		case errors.Is(err, service.ErrCashCallPaid):
			respondWithError(w, http.StatusConflict, "Cash call is already paid")
		case errors.Is(err, service.ErrVersionConflict):
			respondWithError(w, http.StatusConflict, "Cash call was modified concurrently, retry")
		default:
			h.logger.Error("failed to mark cash call paid", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to mark cash call paid")
		}
		return
	}

	respondJSON(w, http.StatusOK, call)
}

// @Summary List overdue cash calls
// @Description ISSUED cash calls whose due date has passed
// @Tags CashCalls
// @Produce json
// @Param asOf query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {array} domain.CashCallDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /cashcalls/overdue [get]
func (h *CashCallHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if s := r.URL.Query().Get("asOf"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid asOf date, expected YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	calls, err := h.cashCallService.ListOverdue(r.Context(), asOf)
	if err != nil {
		h.logger.Error("failed to list overdue cash calls", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list overdue cash calls")
		return
	}

	respondJSON(w, http.StatusOK, calls)
}
