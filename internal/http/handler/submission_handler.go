package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/repository"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	logger            *zap.Logger
}

func NewSubmissionHandler(submissionService *service.SubmissionService, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		logger:            logger,
	}
}

// @Summary List submissions
// @Description List submissions with optional filters
// @Tags Submissions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status (OPEN, IN_REVIEW, QUOTED, BOUND, DECLINED)"
// @Param riskAppetite query string false "Filter by risk appetite (IN, OUT, REFER)"
// @Param brokerTier query string false "Filter by broker tier (A, B, C)"
// @Param q query string false "Search in number and description"
// @Param sort query string false "Sort by (priority_desc, created_desc, number_asc)"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.SubmissionDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	filters := &repository.SubmissionFilters{
		Search: r.URL.Query().Get("q"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.SubmissionStatus(s)
		filters.Status = &status
	}
	if ra := r.URL.Query().Get("riskAppetite"); ra != "" {
		appetite := domain.RiskAppetite(ra)
		filters.RiskAppetite = &appetite
	}
	if bt := r.URL.Query().Get("brokerTier"); bt != "" {
		tier := domain.BrokerTier(bt)
		filters.BrokerTier = &tier
	}

	sortBy := repository.SubmissionSortByCreatedDesc
	if s := r.URL.Query().Get("sort"); s != "" {
		sortBy = repository.SubmissionSortOption(s)
	}

	submissions, total, err := h.submissionService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list submissions", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list submissions")
		return
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(submissions, total, page, pageSize))
}

// @Summary Create submission
// @Description Register a new risk submission in OPEN status
// @Tags Submissions
// @Accept json
// @Produce json
// @Param request body domain.CreateSubmissionRequest true "Submission data"
// @Success 201 {object} domain.SubmissionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions [post]
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	submission, err := h.submissionService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusBadRequest, "Referenced party not found")
			return
		}
		h.logger.Error("failed to create submission", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create submission")
		return
	}

	respondJSON(w, http.StatusCreated, submission)
}

// @Summary Get submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} domain.SubmissionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	submission, err := h.submissionService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Submission not found")
			return
		}
		h.logger.Error("failed to get submission", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get submission")
		return
	}

	respondJSON(w, http.StatusOK, submission)
}

// @Summary Advance submission
// @Description Move a submission through its lifecycle (OPEN, IN_REVIEW, QUOTED, BOUND, DECLINED)
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param request body domain.AdvanceSubmissionRequest true "Target status"
// @Success 200 {object} domain.SubmissionDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id}/advance [post]
func (h *SubmissionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var req domain.AdvanceSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	submission, err := h.submissionService.Advance(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Submission not found")
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondWithError(w, http.StatusUnprocessableEntity, "Status transition not allowed")
		case errors.Is(err, service.ErrSubmissionTerminal):
			respondWithError(w, http.StatusUnprocessableEntity, "Submission is in a terminal status")
		case errors.Is(err, service.ErrNoReleasedQuote):
			respondWithError(w, http.StatusUnprocessableEntity, "Submission has no sent or accepted quote")
		case errors.Is(err, service.ErrVersionConflict):
			respondWithError(w, http.StatusConflict, "Submission was modified concurrently, retry")
		default:
			h.logger.Error("failed to advance submission", zap.String("id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to advance submission")
		}
		return
	}

	respondJSON(w, http.StatusOK, submission)
}

// @Summary Get submission status history
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {array} domain.SubmissionStatusHistoryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id}/history [get]
func (h *SubmissionHandler) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	history, err := h.submissionService.GetStatusHistory(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Submission not found")
			return
		}
		h.logger.Error("failed to get submission history", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get submission history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// @Summary Add quote
// @Description Attach a quote from an insurer to a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param request body domain.AddQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id}/quotes [post]
func (h *SubmissionHandler) AddQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var req domain.AddQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.submissionService.AddQuote(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Submission or insurer not found")
		case errors.Is(err, service.ErrSubmissionTerminal):
			respondWithError(w, http.StatusUnprocessableEntity, "Submission is in a terminal status")
		default:
			h.logger.Error("failed to add quote", zap.String("submission_id", id.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to add quote")
		}
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

// @Summary List quotes
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {array} domain.QuoteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /submissions/{id}/quotes [get]
func (h *SubmissionHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	quotes, err := h.submissionService.GetQuotes(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Submission not found")
			return
		}
		h.logger.Error("failed to list quotes", zap.String("submission_id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// @Summary Update quote status
// @Description Move a quote through PENDING, SENT, ACCEPTED, REJECTED
// @Tags Submissions
// @Accept json
// @Produce json
// @Param quoteId path string true "Quote ID"
// @Param request body domain.UpdateQuoteStatusRequest true "Target status"
// @Success 200 {object} domain.QuoteDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{quoteId}/status [put]
func (h *SubmissionHandler) UpdateQuoteStatus(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "quoteId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID")
		return
	}

	var req domain.UpdateQuoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.submissionService.UpdateQuoteStatus(r.Context(), quoteID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quote not found")
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondWithError(w, http.StatusUnprocessableEntity, "Quote status transition not allowed")
		case errors.Is(err, service.ErrQuoteAlreadyAccepted):
			respondWithError(w, http.StatusConflict, "Submission already has an accepted quote")
		default:
			h.logger.Error("failed to update quote status", zap.String("quote_id", quoteID.String()), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update quote status")
		}
		return
	}

	respondJSON(w, http.StatusOK, quote)
}
