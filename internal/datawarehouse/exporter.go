package datawarehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CashCallExportRow is one bordereau line pushed to the warehouse
type CashCallExportRow struct {
	CallNumber    string
	ClaimNumber   string
	PolicyNumber  string
	ReinsurerName string
	CallAmount    float64
	Currency      string
	Status        string
	IssuedDate    time.Time
	DueDate       time.Time
	PaidDate      *time.Time
}

const cashCallMergeStatement = `
MERGE dbo.cashcall_bordereau AS target
USING (SELECT @p1 AS call_number) AS source
ON target.call_number = source.call_number
WHEN MATCHED THEN
    UPDATE SET status = @p7, paid_date = @p10, exported_at = SYSUTCDATETIME()
WHEN NOT MATCHED THEN
    INSERT (call_number, claim_number, policy_number, reinsurer_name,
            call_amount, currency, status, issued_date, due_date, paid_date, exported_at)
    VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, SYSUTCDATETIME());`

// Exporter pushes bordereau rows into the reporting warehouse
type Exporter struct {
	client *Client
	logger *zap.Logger
}

// NewExporter creates a new warehouse exporter. Returns nil when the
// warehouse connection is disabled.
func NewExporter(client *Client, logger *zap.Logger) *Exporter {
	if client == nil || !client.IsEnabled() {
		return nil
	}
	return &Exporter{
		client: client,
		logger: logger,
	}
}

// ExportCashCalls upserts the given rows into the cash-call bordereau table.
// Rows are keyed on call number so re-exports update settlement state in place.
func (e *Exporter) ExportCashCalls(ctx context.Context, rows []CashCallExportRow) (int, error) {
	if e == nil {
		return 0, fmt.Errorf("warehouse exporter not initialized")
	}

	exported := 0
	for _, row := range rows {
		var paidDate interface{} = sql.NullTime{}
		if row.PaidDate != nil {
			paidDate = *row.PaidDate
		}

		_, err := e.client.ExecStatement(ctx, cashCallMergeStatement,
			row.CallNumber,
			row.ClaimNumber,
			row.PolicyNumber,
			row.ReinsurerName,
			row.CallAmount,
			row.Currency,
			row.Status,
			row.IssuedDate,
			row.DueDate,
			paidDate,
		)
		if err != nil {
			e.logger.Error("failed to export cash call",
				zap.String("call_number", row.CallNumber),
				zap.Error(err))
			return exported, err
		}
		exported++
	}

	return exported, nil
}

// IsEnabled reports whether the exporter can reach the warehouse
func (e *Exporter) IsEnabled() bool {
	return e != nil && e.client.IsEnabled()
}
