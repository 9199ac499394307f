// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`
	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`
	// Status is the HTTP status code for this occurrence.
	Status int `json:"status"`
	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`
	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
	// Message repeats the detail for clients reading a flat {"error": "..."} body.
	Message string `json:"error,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// Common problem types as URI references.
const (
	TypeValidation       = "/problems/validation-error"
	TypeNotFound         = "/problems/not-found"
	TypeMethodNotAllowed = "/problems/method-not-allowed"
	TypeInternal         = "/problems/internal-error"
	TypeBadRequest       = "/problems/bad-request"
)

// Pre-defined problem templates for common scenarios.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = ProblemDetail{
		Type:   TypeNotFound,
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}

	// ErrValidation indicates the request failed validation.
	ErrValidation = ProblemDetail{
		Type:   TypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
	}

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	// ErrMethodNotAllowed indicates the route exists but not for this method.
	ErrMethodNotAllowed = ProblemDetail{
		Type:   TypeMethodNotAllowed,
		Title:  "Method Not Allowed",
		Status: http.StatusMethodNotAllowed,
	}

	// ErrInternal indicates an unexpected server error.
	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)

// NewValidationError creates a 400 problem carrying a single validation message.
func NewValidationError(message string) ProblemDetail {
	return ErrValidation.WithDetail(message)
}

// NewNotFoundError creates a 404 problem carrying the given message.
func NewNotFoundError(message string) ProblemDetail {
	return ErrNotFound.WithDetail(message)
}
