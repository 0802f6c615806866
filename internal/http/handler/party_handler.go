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

type PartyHandler struct {
	partyService *service.PartyService
	logger       *zap.Logger
}

func NewPartyHandler(partyService *service.PartyService, logger *zap.Logger) *PartyHandler {
	return &PartyHandler{
		partyService: partyService,
		logger:       logger,
	}
}

// @Summary List parties
// @Description List all parties with pagination
// @Tags Parties
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.PartyDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties [get]
func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	parties, total, err := h.partyService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list parties", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list parties")
		return
	}

	respondJSON(w, http.StatusOK, domain.NewPaginatedResponse(parties, total, page, pageSize))
}

// @Summary Create party
// @Description Register a person or organization
// @Tags Parties
// @Accept json
// @Produce json
// @Param request body domain.CreatePartyRequest true "Party data"
// @Success 201 {object} domain.PartyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties [post]
func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	party, err := h.partyService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			respondWithError(w, http.StatusConflict, "A party with this email already exists")
			return
		}
		h.logger.Error("failed to create party", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create party")
		return
	}

	respondJSON(w, http.StatusCreated, party)
}

// @Summary Get party
// @Tags Parties
// @Produce json
// @Param id path string true "Party ID"
// @Success 200 {object} domain.PartyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties/{id} [get]
func (h *PartyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid party ID")
		return
	}

	party, err := h.partyService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Party not found")
			return
		}
		h.logger.Error("failed to get party", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get party")
		return
	}

	respondJSON(w, http.StatusOK, party)
}

// @Summary Update party
// @Description Update a party's contact details. Name and type are immutable.
// @Tags Parties
// @Accept json
// @Produce json
// @Param id path string true "Party ID"
// @Param request body domain.UpdatePartyRequest true "Party data"
// @Success 200 {object} domain.PartyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties/{id} [put]
func (h *PartyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid party ID")
		return
	}

	var req domain.UpdatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	party, err := h.partyService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Party not found")
			return
		}
		h.logger.Error("failed to update party", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update party")
		return
	}

	respondJSON(w, http.StatusOK, party)
}

// @Summary Search parties
// @Description Search parties by name or email
// @Tags Parties
// @Produce json
// @Param q query string true "Search query"
// @Param limit query int false "Maximum results" default(20)
// @Success 200 {array} domain.PartyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties/search [get]
func (h *PartyHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	parties, err := h.partyService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search parties", zap.String("query", query), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search parties")
		return
	}

	respondJSON(w, http.StatusOK, parties)
}

// @Summary List insured parties
// @Description List parties currently holding an Insured role on any record
// @Tags Parties
// @Produce json
// @Success 200 {array} domain.PartyDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /parties/insureds [get]
func (h *PartyHandler) ListInsureds(w http.ResponseWriter, r *http.Request) {
	parties, err := h.partyService.ListInsureds(r.Context())
	if err != nil {
		h.logger.Error("failed to list insured parties", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list insured parties")
		return
	}

	respondJSON(w, http.StatusOK, parties)
}
