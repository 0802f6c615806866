package handler

import (
	"net/http"

	"github.com/lucerne-re/policy-api/internal/service"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// @Summary Book summary
// @Description Portfolio-wide counts and cash-call totals
// @Tags Reports
// @Produce json
// @Success 200 {object} domain.BookSummaryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/summary [get]
func (h *ReportHandler) GetBookSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reportService.GetBookSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to build book summary", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to build book summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
