package service

import (
	"context"
	"time"

	"github.com/lucerne-re/policy-api/internal/datawarehouse"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
)

// ExportService pushes bordereau snapshots to the reporting warehouse
type ExportService struct {
	cashCallRepo *repository.CashCallRepository
	exporter     *datawarehouse.Exporter
	logger       *zap.Logger
}

func NewExportService(
	cashCallRepo *repository.CashCallRepository,
	exporter *datawarehouse.Exporter,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		cashCallRepo: cashCallRepo,
		exporter:     exporter,
		logger:       logger,
	}
}

// ExportCashCallsSince exports all cash calls touched since the given instant.
// Returns counts of exported and failed rows. A disabled warehouse is not an
// error; the export is simply skipped.
func (s *ExportService) ExportCashCallsSince(ctx context.Context, since time.Time) (int, int, error) {
	if !s.exporter.IsEnabled() {
		s.logger.Debug("warehouse export skipped, exporter disabled")
		return 0, 0, nil
	}

	calls, err := s.cashCallRepo.ListUpdatedSince(ctx, since)
	if err != nil {
		return 0, 0, err
	}
	if len(calls) == 0 {
		return 0, 0, nil
	}

	rows := make([]datawarehouse.CashCallExportRow, 0, len(calls))
	for _, call := range calls {
		rows = append(rows, toExportRow(call))
	}

	exported, err := s.exporter.ExportCashCalls(ctx, rows)
	failed := len(rows) - exported
	if err != nil {
		s.logger.Error("cash call export incomplete",
			zap.Int("exported", exported),
			zap.Int("failed", failed),
			zap.Error(err))
		return exported, failed, err
	}

	s.logger.Info("cash call export completed", zap.Int("exported", exported))
	return exported, 0, nil
}

func toExportRow(call domain.CashCall) datawarehouse.CashCallExportRow {
	row := datawarehouse.CashCallExportRow{
		CallNumber: call.CallNumber,
		CallAmount: call.CallAmount,
		Currency:   call.Currency,
		Status:     string(call.Status),
		IssuedDate: call.IssuedDate,
		DueDate:    call.DueDate,
		PaidDate:   call.PaidDate,
	}

	if call.Claim != nil {
		row.ClaimNumber = call.Claim.ClaimNumber
		if call.Claim.Policy != nil {
			row.PolicyNumber = call.Claim.Policy.PolicyNumber
		}
	}
	if call.Participant != nil && call.Participant.ReinsurerParty != nil {
		row.ReinsurerName = call.Participant.ReinsurerParty.Name
	}

	return row
}
