package api

import (
	"fmt"
	"net/http"

	"github.com/invest-tracker/internal/models"
	"github.com/invest-tracker/internal/types"
)

// handleGenerateReport handles GET /api/reports?format=csv|pdf&startDate&endDate
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	query := r.URL.Query()

	format := types.ReportFormat(query.Get("format"))

	details := map[string]interface{}{}
	start, err := models.ParseDate(query.Get("startDate"))
	if err != nil {
		details["startDate"] = "startDate must be a YYYY-MM-DD date"
	}
	end, err := models.ParseDate(query.Get("endDate"))
	if err != nil {
		details["endDate"] = "endDate must be a YYYY-MM-DD date"
	}
	if len(details) > 0 {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid report parameters", details)
		return
	}

	report, err := s.reportService.Generate(r.Context(), userID, format, start, end)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(report.Data)
}
