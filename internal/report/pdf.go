package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

const dateLayout = "2006-01-02"

func formatWindow(from, to *time.Time) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("%s to %s", from.Format(dateLayout), to.Format(dateLayout))
	case from != nil:
		return fmt.Sprintf("from %s", from.Format(dateLayout))
	case to != nil:
		return fmt.Sprintf("until %s", to.Format(dateLayout))
	}
	return "all time"
}

// RenderPDF renders the report as an A4 landscape PDF.
func RenderPDF(rpt *TransactionReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Petty Cash Transaction Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Petty Cash Transaction Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", formatWindow(rpt.DateFrom, rpt.DateTo)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated by %s at %s", rpt.GeneratedBy, rpt.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.Cell(32, 7, "Number")
	pdf.Cell(40, 7, "Category")
	pdf.Cell(60, 7, "Purpose")
	pdf.Cell(40, 7, "Payee")
	pdf.Cell(28, 7, "Amount")
	pdf.Cell(26, 7, "Method")
	pdf.Cell(28, 7, "Status")
	pdf.Cell(22, 7, "Date")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rpt.Rows {
		pdf.Cell(32, 6, row.TransactionNumber)
		pdf.Cell(40, 6, truncate(row.CategoryName, 24))
		pdf.Cell(60, 6, truncate(row.Purpose, 38))
		pdf.Cell(40, 6, truncate(row.PayeeName, 24))
		pdf.Cell(28, 6, row.Amount.StringFixed(2))
		pdf.Cell(26, 6, row.PaymentMethod)
		pdf.Cell(28, 6, row.Status)
		pdf.Cell(22, 6, row.TransactionDate.Format(dateLayout))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Totals by Status")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	for _, total := range rpt.Totals {
		pdf.Cell(50, 6, total.Status)
		pdf.Cell(30, 6, fmt.Sprintf("%d", total.Count))
		pdf.Cell(40, 6, total.Total.StringFixed(2))
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(50, 7, "Grand total")
	pdf.Cell(30, 7, fmt.Sprintf("%d", len(rpt.Rows)))
	pdf.Cell(40, 7, rpt.GrandTotal.StringFixed(2))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
