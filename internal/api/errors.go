package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/invest-tracker/internal/logging"
	"github.com/invest-tracker/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// mapServiceError maps service errors to HTTP status codes. Unknown errors
// collapse to a generic internal error so internals never leak to clients.
func mapServiceError(err error) (int, *types.ServiceError) {
	var serviceErr *types.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case types.CodeInvalidInput:
			return http.StatusBadRequest, serviceErr
		case types.CodeUnauthorized:
			return http.StatusUnauthorized, serviceErr
		case types.CodeForbidden:
			return http.StatusForbidden, serviceErr
		case types.CodeNotFound:
			return http.StatusNotFound, serviceErr
		case types.CodeEmailInUse:
			return http.StatusConflict, serviceErr
		case types.CodeUpstreamUnavailable:
			return http.StatusBadGateway, serviceErr
		}
	}

	return http.StatusInternalServerError, &types.ServiceError{
		Code:    types.CodeInternalError,
		Message: "An internal error occurred",
	}
}

// respondServiceError logs server faults and writes the mapped error response
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	status, serviceErr := mapServiceError(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
	}
	respondError(w, status, serviceErr.Code, serviceErr.Message, serviceErr.Details)
}
