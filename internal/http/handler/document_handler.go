package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/auth"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// @Summary Upload document
// @Description Attach a document to any record (policy, claim, submission, ...)
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param recordKind path string true "Record kind"
// @Param recordId path string true "Record ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/record/{recordKind}/{recordId} [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind := domain.RecordKind(chi.URLParam(r, "recordKind"))
	recordID, err := uuid.Parse(chi.URLParam(r, "recordId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	var uploaderID *uuid.UUID
	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx.UserID != uuid.Nil {
		id := userCtx.UserID
		uploaderID = &id
	}

	doc, err := h.documentService.Upload(r.Context(), kind, recordID, header.Filename, header.Header.Get("Content-Type"), file, uploaderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRecordKind):
			respondWithError(w, http.StatusBadRequest, "Unknown record kind")
		case errors.Is(err, service.ErrRecordNotFound):
			respondWithError(w, http.StatusNotFound, "Referenced record not found")
		default:
			h.logger.Error("failed to upload document", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		}
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// @Summary List documents on a record
// @Tags Documents
// @Produce json
// @Param recordKind path string true "Record kind"
// @Param recordId path string true "Record ID"
// @Success 200 {array} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/record/{recordKind}/{recordId} [get]
func (h *DocumentHandler) ListForRecord(w http.ResponseWriter, r *http.Request) {
	kind := domain.RecordKind(chi.URLParam(r, "recordKind"))
	recordID, err := uuid.Parse(chi.URLParam(r, "recordId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}

	docs, err := h.documentService.ListForRecord(r.Context(), kind, recordID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRecordKind) {
			respondWithError(w, http.StatusBadRequest, "Unknown record kind")
			return
		}
		h.logger.Error("failed to list documents",
			zap.String("record_kind", string(kind)),
			zap.String("record_id", recordID.String()),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// @Summary Get document metadata
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	doc, err := h.documentService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to get document", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// @Summary Download document
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Document ID"
// @Success 200
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	reader, filename, contentType, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to download document", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to download document")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}

// @Summary Delete document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to delete document", zap.String("id", id.String()), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
