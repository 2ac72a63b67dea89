package api

import (
	"net/http"
)

// handleDetailedPortfolio handles GET /api/portfolio/detailed
func (s *Server) handleDetailedPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	positions, summary, err := s.portfolioService.DetailedPortfolio(r.Context(), userID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"positions": positions,
		"summary":   summary,
	})
}

// handlePortfolioSummary handles GET /api/portfolio/summary
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	summary, err := s.portfolioService.DashboardSummary(r.Context(), userID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
