// Package types provides common type definitions for the investment tracking system.
package types

// OperationType represents the side of a recorded trade
type OperationType string

const (
	// OperationBuy represents a purchase of an asset
	OperationBuy OperationType = "buy"
	// OperationSell represents a sale of an asset
	OperationSell OperationType = "sell"
)

// Valid reports whether the operation type is one of the known values
func (t OperationType) Valid() bool {
	return t == OperationBuy || t == OperationSell
}

// ReportFormat represents a supported report output format
type ReportFormat string

const (
	// ReportCSV represents comma-separated output
	ReportCSV ReportFormat = "csv"
	// ReportPDF represents PDF output
	ReportPDF ReportFormat = "pdf"
)

// Valid reports whether the report format is one of the known values
func (f ReportFormat) Valid() bool {
	return f == ReportCSV || f == ReportPDF
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Service error codes shared between the service and API layers
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeEmailInUse          = "EMAIL_IN_USE"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)
