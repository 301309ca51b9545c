package report

import (
	"bytes"
	"encoding/csv"

	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
)

// RenderCSV renders the report rows as CSV with a header row.
func RenderCSV(rpt *TransactionReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"transaction_number", "category", "purpose", "payee", "amount", "payment_method", "status", "transaction_date"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rpt.Rows {
		record := []string{
			row.TransactionNumber,
			row.CategoryName,
			row.Purpose,
			row.PayeeName,
			row.Amount.StringFixed(2),
			row.PaymentMethod,
			row.Status,
			row.TransactionDate.Format(dateLayout),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// RenderLoginActivityCSV renders login attempts as CSV.
func RenderLoginActivityCSV(rows []*auditDatamodel.LoginActivity) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"timestamp", "email", "name", "role", "method", "status", "failure_reason", "ip_address"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, activity := range rows {
		reason := ""
		if activity.FailureReason != nil {
			reason = *activity.FailureReason
		}
		record := []string{
			activity.CreatedAt.Format("2006-01-02 15:04:05"),
			activity.Email,
			activity.Name,
			activity.Role,
			activity.LoginMethod,
			activity.LoginStatus,
			reason,
			activity.IPAddress,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
