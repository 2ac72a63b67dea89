package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/invest-tracker/internal/service"
	"github.com/invest-tracker/internal/types"
)

// handleCreateOperation handles POST /api/operations
func (s *Server) handleCreateOperation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req service.OperationInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	op, err := s.operationService.Create(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, op)
}

// handleListOperations handles GET /api/operations
func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	operations, err := s.operationService.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, operations)
}

// handleGetOperation handles GET /api/operations/:id
func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	op, err := s.operationService.Get(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, op)
}

// handleUpdateOperation handles PUT /api/operations/:id
func (s *Server) handleUpdateOperation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req service.OperationInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, types.CodeInvalidInput, "Invalid request body", nil)
		return
	}

	op, err := s.operationService.Update(r.Context(), userID, id, req)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, op)
}

// handleDeleteOperation handles DELETE /api/operations/:id
func (s *Server) handleDeleteOperation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := s.operationService.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
