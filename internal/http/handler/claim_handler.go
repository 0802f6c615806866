package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

type ClaimHandler struct {
	claimService *service.ClaimService
	logger       *zap.Logger
}

func NewClaimHandler(claimService *service.ClaimService, logger *zap.Logger) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
		logger:       logger,
	}
}

// @Summary List claims
// @Tags Claims
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status (OPEN, UNDER_REVIEW, SETTLED, CLOSED)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ClaimDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims [get]
func (h *ClaimHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	var status *domain.ClaimStatus
	if s := r.URL.Query().Get("status"); s != "" {
		cs := domain.ClaimStatus(s)
		status = &cs
	}

	claims, total, err := h.claimService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list claims", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list claims")
		return
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(claims, total, page, pageSize))
}

// @Summary File claim
// @Description File a claim against a policy
// @Tags Claims
// @Accept json
// @Produce json
// @Param request body domain.FileClaimRequest true "Claim data"
// @Success 201 {object} domain.ClaimDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims [post]
func (h *ClaimHandler) File(w http.ResponseWriter, r *http.Request) {
	var req domain.FileClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	claim, err := h.claimService.File(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Policy or reporting party not found")
		case errors.Is(err, service.ErrInvalidClaimDates):
			respondWithError(w, http.StatusUnprocessableEntity, "Date of loss must not be after reported date")
		default:
			h.logger.Error("failed to file claim", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to file claim")
		}
		return
	}

	respondJSON(w, http.StatusCreated, claim)
}

// @Summary Get claim
// @Description Claim detail with incurred, reserved and paid figures from the ledger
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} domain.ClaimDetailDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id} [get]
func (h *ClaimHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	claim, err := h.claimService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Claim not found")
			return
		}
		h.logger.Error("failed to get claim", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get claim")
		return
	}

	respondJSON(w, http.StatusOK, claim)
}

// @Summary Update claim status
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param request body domain.UpdateClaimStatusRequest true "Target status"
// @Success 200 {object} domain.ClaimDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/status [put]
func (h *ClaimHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	var req domain.UpdateClaimStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	claim, err := h.claimService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Claim not found")
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondWithError(w, http.StatusUnprocessableEntity, "Claim status transition not allowed")
		default:
			h.logger.Error("failed to update claim status", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update claim status")
		}
		return
	}

	respondJSON(w, http.StatusOK, claim)
}

// @Summary Add claim log entry
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param request body domain.AddClaimLogEntryRequest true "Log entry"
// @Success 201 {object} domain.ClaimLogEntryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/log [post]
func (h *ClaimHandler) AddLogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	var req domain.AddClaimLogEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	entry, err := h.claimService.AddLogEntry(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Claim not found")
			return
		}
		h.logger.Error("failed to add claim log entry", zap.String("claim_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to add claim log entry")
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// @Summary Get claim log
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {array} domain.ClaimLogEntryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/log [get]
func (h *ClaimHandler) GetLogEntries(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	entries, err := h.claimService.GetLogEntries(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Claim not found")
			return
		}
		h.logger.Error("failed to get claim log", zap.String("claim_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get claim log")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// @Summary Post financial transaction
// @Description Append a reserve or payment entry to the claim's financial ledger
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param request body domain.PostTransactionRequest true "Transaction data"
// @Success 201 {object} domain.FinancialTransactionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/transactions [post]
func (h *ClaimHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	var req domain.PostTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	txn, err := h.claimService.PostTransaction(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Claim not found")
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondWithError(w, http.StatusUnprocessableEntity, "Cannot post transactions to a closed claim")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Invalid transaction type")
		default:
			h.logger.Error("failed to post transaction", zap.String("claim_id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to post transaction")
		}
		return
	}

	respondJSON(w, http.StatusCreated, txn)
}

// @Summary List financial transactions
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {array} domain.FinancialTransactionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /claims/{id}/transactions [get]
func (h *ClaimHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}

	txns, err := h.claimService.GetTransactions(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Claim not found")
			return
		}
		h.logger.Error("failed to list transactions", zap.String("claim_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, txns)
}
