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

type PolicyHandler struct {
	policyService *service.PolicyService
	reportService *service.ReportService
	claimService  *service.ClaimService
	logger        *zap.Logger
}

func NewPolicyHandler(
	policyService *service.PolicyService,
	reportService *service.ReportService,
	claimService *service.ClaimService,
	logger *zap.Logger,
) *PolicyHandler {
	return &PolicyHandler{
		policyService: policyService,
		reportService: reportService,
		claimService:  claimService,
		logger:        logger,
	}
}

// @Summary List policies
// @Tags Policies
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status (ACTIVE, EXPIRED, CANCELLED)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.PolicyDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies [get]
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	var status *domain.PolicyStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ps := domain.PolicyStatus(s)
		status = &ps
	}

	policies, total, err := h.policyService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list policies", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list policies")
		return
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(policies, total, page, pageSize))
}

// @Summary Bind policy
// @Description Bind a quoted submission into an active policy
// @Tags Policies
// @Accept json
// @Produce json
// @Param request body domain.BindPolicyRequest true "Bind data"
// @Success 201 {object} domain.PolicyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/bind [post]
func (h *PolicyHandler) Bind(w http.ResponseWriter, r *http.Request) {
	var req domain.BindPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	policy, err := h.policyService.Bind(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Submission or quote not found")
		case errors.Is(err, service.ErrSubmissionNotQuoted):
			respondWithError(w, http.StatusUnprocessableEntity, "Submission is not in QUOTED status")
		case errors.Is(err, service.ErrQuoteNotAccepted):
			respondWithError(w, http.StatusUnprocessableEntity, "Quote is not accepted")
		case errors.Is(err, service.ErrVersionConflict):
			respondWithError(w, http.StatusConflict, "Submission was modified concurrently, retry")
		default:
			h.logger.Error("failed to bind policy", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to bind policy")
		}
		return
	}

	respondJSON(w, http.StatusCreated, policy)
}

// @Summary Get policy
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} domain.PolicyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id} [get]
func (h *PolicyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	policy, err := h.policyService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("failed to get policy", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get policy")
		return
	}

	respondJSON(w, http.StatusOK, policy)
}

// @Summary Get policy detail
// @Description Full policy view with coverages, assets, claims, coinsurers and treaties
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {object} domain.PolicyDetailDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/detail [get]
func (h *PolicyHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	detail, err := h.reportService.GetPolicyDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("failed to get policy detail", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get policy detail")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// @Summary Add coverage
// @Tags Policies
// @Accept json
// @Produce json
// @Param id path string true "Policy ID"
// @Param request body domain.AddCoverageRequest true "Coverage data"
// @Success 201 {object} domain.CoverageDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/coverages [post]
func (h *PolicyHandler) AddCoverage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	var req domain.AddCoverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	coverage, err := h.policyService.AddCoverage(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Policy not found")
		case errors.Is(err, service.ErrInvalidCoverageTerms):
			respondWithError(w, http.StatusUnprocessableEntity, "Coverage limit must be at least the deductible")
		default:
			h.logger.Error("failed to add coverage", zap.String("policy_id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add coverage")
		}
		return
	}

	respondJSON(w, http.StatusCreated, coverage)
}

// @Summary Add insured asset
// @Tags Policies
// @Accept json
// @Produce json
// @Param id path string true "Policy ID"
// @Param request body domain.AddAssetRequest true "Asset data"
// @Success 201 {object} domain.InsurableAssetDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/assets [post]
func (h *PolicyHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	var req domain.AddAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	asset, err := h.policyService.AddAsset(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("failed to add asset", zap.String("policy_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to add asset")
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}

// @Summary List insured assets
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {array} domain.InsurableAssetDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/assets [get]
func (h *PolicyHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	assets, err := h.policyService.ListAssets(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("failed to list assets", zap.String("policy_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list assets")
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

// @Summary List claims on policy
// @Tags Policies
// @Produce json
// @Param id path string true "Policy ID"
// @Success 200 {array} domain.ClaimDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /policies/{id}/claims [get]
func (h *PolicyHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid policy ID")
		return
	}

	claims, err := h.claimService.ListByPolicy(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Policy not found")
			return
		}
		h.logger.Error("failed to list policy claims", zap.String("policy_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list policy claims")
		return
	}

	respondJSON(w, http.StatusOK, claims)
}
