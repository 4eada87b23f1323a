package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorCode is the machine-readable part of an API error response
type ErrorCode string

const (
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"

	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeDatabaseError ErrorCode = "database_error"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeValidationFailed: http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeInternalError:    http.StatusInternalServerError,
	ErrCodeDatabaseError:    http.StatusServiceUnavailable,
}

// APIError is the JSON body returned for every failed request
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// StatusCode returns the HTTP status for the error code, 500 for unknown codes
func (e *APIError) StatusCode() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ServerSide reports whether the failure is ours rather than the caller's
func (e *APIError) ServerSide() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

func newAPIError(code ErrorCode, message string, details []string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewBadRequestError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeNotFound, message, details)
}

// NewValidationError reports a request that parsed but carries invalid filter values
func NewValidationError(details ...string) *APIError {
	return newAPIError(ErrCodeValidationFailed, "Validation failed", details)
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeUnauthorized, message, details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeInternalError, message, details)
}

// NewDatabaseError reports a store failure; clients may retry
func NewDatabaseError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeDatabaseError, message, details)
}
