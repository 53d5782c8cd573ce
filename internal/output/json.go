package output

import (
	"github.com/manav03panchal/creatorbook/internal/errors"
	"github.com/manav03panchal/creatorbook/internal/report"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ListResponse wraps a list of records with its count.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse creates a ListResponse, never encoding a null list.
func NewListResponse[T any](items []T) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &ListResponse[T]{Items: items, Count: len(items)}
}

// StatusResponse reports the outcome of a mutation.
type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ReportResponse describes a written report.
type ReportResponse struct {
	*report.Result
	Type   string `json:"type"`
	Title  string `json:"title"`
	Period string `json:"period"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status     string                  `json:"status"`
	Category   string                  `json:"category"`
	Error      string                  `json:"error"`
	Message    string                  `json:"message,omitempty"`
	Violations []errors.FieldViolation `json:"violations,omitempty"`
}

// Print outputs any value as JSON.
func (j *JSONFormatter) Print(v any) error {
	return j.JSON(v)
}

// PrintList outputs items wrapped in a ListResponse.
func PrintList[T any](j *JSONFormatter, items []T) error {
	return j.JSON(NewListResponse(items))
}

// PrintStatus outputs the outcome of a mutation.
func (j *JSONFormatter) PrintStatus(status, id string, data any) error {
	return j.JSON(StatusResponse{Status: status, ID: id, Data: data})
}

// PrintReport outputs a written report.
func (j *JSONFormatter) PrintReport(res *report.Result) error {
	resp := ReportResponse{Result: res}
	if res.Document != nil {
		resp.Type = string(res.Document.Type)
		resp.Title = res.Document.Title
		resp.Period = res.Document.Period.Label
	}
	return j.JSON(resp)
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(err error) error {
	resp := ErrorResponse{
		Status:   "error",
		Category: errors.Classify(err).String(),
		Error:    err.Error(),
		Message:  errors.GetSuggestion(err),
	}
	if ve, ok := errors.AsValidationError(err); ok {
		resp.Violations = ve.Violations
	}
	return j.JSON(resp)
}
