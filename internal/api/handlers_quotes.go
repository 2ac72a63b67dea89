package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/invest-tracker/internal/types"
)

// handleGetQuotes handles GET /api/quotes/:tickers where tickers is a
// comma-separated symbol list
func (s *Server) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["tickers"]

	symbols := strings.Split(raw, ",")
	quotes := s.quoteService.GetQuotes(r.Context(), symbols)
	if len(quotes) == 0 {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "At least one ticker is required", nil)
		return
	}

	respondJSON(w, http.StatusOK, quotes)
}

// handleGetChart handles GET /api/chart/:ticker
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Ticker is required", nil)
		return
	}

	respondJSON(w, http.StatusOK, s.quoteService.GetChart(r.Context(), ticker))
}

// handleSearchStocks handles GET /api/search/stocks?q=
func (s *Server) handleSearchStocks(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Query parameter q is required", nil)
		return
	}

	results, err := s.quoteService.Search(r.Context(), term)
	if err != nil {
		respondError(w, http.StatusBadGateway, types.CodeUpstreamUnavailable, "Symbol search is unavailable", nil)
		return
	}

	respondJSON(w, http.StatusOK, results)
}
