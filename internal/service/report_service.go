package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/types"
)

// Report is a generated file ready to stream to the client
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportService exports an owner's operations over a date range
type ReportService struct {
	ops OperationStore
}

// NewReportService creates a new report service
func NewReportService(ops OperationStore) *ReportService {
	return &ReportService{ops: ops}
}

// Generate builds a CSV or PDF report of the owner's operations between the
// two dates inclusive, oldest first. An empty range yields a valid file with
// headers only.
func (s *ReportService) Generate(ctx context.Context, ownerID string, format types.ReportFormat, start, end models.Date) (*Report, error) {
	details := map[string]interface{}{}
	if !format.Valid() {
		details["format"] = "format must be csv or pdf"
	}
	if start.IsZero() {
		details["startDate"] = "startDate is required"
	}
	if end.IsZero() {
		details["endDate"] = "endDate is required"
	}
	if len(details) == 0 && end.Before(start.Time) {
		details["endDate"] = "endDate must not be before startDate"
	}
	if len(details) > 0 {
		return nil, invalidInput(details)
	}

	operations, err := s.ops.ListByOwnerBetween(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing operations for report: %w", err)
	}

	filename := fmt.Sprintf("operations-report-%s-to-%s.%s", start, end, format)

	switch format {
	case types.ReportCSV:
		data, err := renderCSV(operations)
		if err != nil {
			return nil, err
		}
		return &Report{Filename: filename, ContentType: "text/csv", Data: data}, nil
	default:
		data, err := renderPDF(operations, start, end)
		if err != nil {
			return nil, err
		}
		return &Report{Filename: filename, ContentType: "application/pdf", Data: data}, nil
	}
}

var reportHeader = []string{"Date", "Type", "Asset", "Quantity", "Price", "Total"}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderCSV(operations []*models.Operation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, op := range operations {
		record := []string{
			op.Date.String(),
			string(op.Type),
			op.Asset,
			formatQuantity(op.Quantity),
			formatAmount(op.Price),
			formatAmount(op.Total),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}

	return buf.Bytes(), nil
}

func renderPDF(operations []*models.Operation, start, end models.Date) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Operations Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", start, end))
	pdf.Ln(10)

	widths := []float64{28, 20, 32, 30, 30, 30}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range reportHeader {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, op := range operations {
		cells := []string{
			op.Date.String(),
			string(op.Type),
			op.Asset,
			formatQuantity(op.Quantity),
			formatAmount(op.Price),
			formatAmount(op.Total),
		}
		for i, c := range cells {
			align := "L"
			if i >= 3 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}
