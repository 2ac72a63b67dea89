package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/invest-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_CSV(t *testing.T) {
	store := newFakeOperationStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, op("2024-01-10", types.OperationBuy, "PETR4", 100, 10.5)))
	require.NoError(t, store.Create(ctx, op("2024-02-15", types.OperationSell, "PETR4", 40, 12)))
	// outside the requested range
	require.NoError(t, store.Create(ctx, op("2024-06-01", types.OperationBuy, "VALE3", 5, 60)))

	svc := NewReportService(store)
	report, err := svc.Generate(ctx, "owner", types.ReportCSV, mustDate(t, "2024-01-01"), mustDate(t, "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, "operations-report-2024-01-01-to-2024-03-31.csv", report.Filename)
	assert.Equal(t, "text/csv", report.ContentType)

	records, err := csv.NewReader(bytes.NewReader(report.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Date", "Type", "Asset", "Quantity", "Price", "Total"}, records[0])
	assert.Equal(t, []string{"2024-01-10", "buy", "PETR4", "100", "10.50", "1050.00"}, records[1])
	assert.Equal(t, []string{"2024-02-15", "sell", "PETR4", "40", "12.00", "480.00"}, records[2])
}

func TestReportService_EmptyRangeCSV(t *testing.T) {
	svc := NewReportService(newFakeOperationStore())

	report, err := svc.Generate(context.Background(), "owner", types.ReportCSV, mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(report.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestReportService_PDF(t *testing.T) {
	store := newFakeOperationStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, op("2024-01-10", types.OperationBuy, "PETR4", 100, 10)))

	svc := NewReportService(store)
	report, err := svc.Generate(ctx, "owner", types.ReportPDF, mustDate(t, "2024-01-01"), mustDate(t, "2024-03-31"))
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", report.ContentType)
	assert.Equal(t, "operations-report-2024-01-01-to-2024-03-31.pdf", report.Filename)
	require.True(t, bytes.HasPrefix(report.Data, []byte("%PDF")), "pdf magic bytes")
}

func TestReportService_Validation(t *testing.T) {
	svc := NewReportService(newFakeOperationStore())
	ctx := context.Background()

	_, err := svc.Generate(ctx, "owner", "xlsx", mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	serr := requireServiceError(t, err, types.CodeInvalidInput)
	assert.Contains(t, serr.Details, "format")

	_, err = svc.Generate(ctx, "owner", types.ReportCSV, mustDate(t, "2024-02-01"), mustDate(t, "2024-01-01"))
	serr = requireServiceError(t, err, types.CodeInvalidInput)
	assert.Contains(t, serr.Details, "endDate")
}
