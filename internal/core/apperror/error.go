// Package apperror provides structured error handling for the registry API.
// Business errors use AppError so the HTTP layer can map them consistently.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal           = "INTERNAL_ERROR"
	CodeDatabase           = "DATABASE_ERROR"
	CodeTooManyConnections = "DB_TOO_MANY_CONNECTIONS"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeDuplicity    = "DUPLICITY_ERROR"

	CodePublishValidation = "PUBLISH_VALIDATION_FAILED"

	// Lifecycle violations (422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeInvalidTransition      = "INVALID_STATUS_TRANSITION"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeOperationForbidden = "OPERATION_FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// DuplicityDetail is the problem detail clients match on for duplicity failures.
const DuplicityDetail = "Ptv.Error.DuplicityError"

// AppError is the standard error type of the registry.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, languages, ids)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewDuplicityCheck creates a duplicity error (400).
// The HTTP layer renders it as a problem document with DuplicityDetail.
func NewDuplicityCheck(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicity,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidTransition reports a publishing status change the lifecycle does not allow.
func NewInvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot change publishing status from %s to %s", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewPublishValidation reports languages that failed the publishing rules (400).
func NewPublishValidation(violations any) *AppError {
	return &AppError{
		Code:       CodePublishValidation,
		Message:    "publishing validation failed",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"violations": violations},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewTooManyConnections reports database connection exhaustion (500).
func NewTooManyConnections(err error) *AppError {
	return &AppError{
		Code:       CodeTooManyConnections,
		Message:    "Too many connections to database, try again later",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewOperationForbidden is returned when the caller may not touch an entity
// owned by another organization.
func NewOperationForbidden(operation string, entityID any) *AppError {
	return &AppError{
		Code:       CodeOperationForbidden,
		Message:    fmt.Sprintf("operation %s is forbidden", operation),
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"operation": operation, "id": entityID},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsDuplicity checks if error is CodeDuplicity
func IsDuplicity(err error) bool {
	return HasCode(err, CodeDuplicity)
}

// IsOperationForbidden checks if error is CodeOperationForbidden or CodeForbidden
func IsOperationForbidden(err error) bool {
	return HasCode(err, CodeOperationForbidden) || HasCode(err, CodeForbidden)
}

// IsTooManyConnections checks if error is CodeTooManyConnections
func IsTooManyConnections(err error) bool {
	return HasCode(err, CodeTooManyConnections)
}

// Flatten joins the messages of err and all wrapped causes, outermost first.
// Joined errors are walked depth first.
func Flatten(err error) string {
	if err == nil {
		return ""
	}
	var out []string
	seen := make(map[string]bool)
	var walk func(e error)
	walk = func(e error) {
		for e != nil {
			msg := e.Error()
			if ae, ok := e.(*AppError); ok {
				msg = ae.Code + ": " + ae.Message
			}
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
			if joined, ok := e.(interface{ Unwrap() []error }); ok {
				for _, inner := range joined.Unwrap() {
					walk(inner)
				}
				return
			}
			e = errors.Unwrap(e)
		}
	}
	walk(err)

	result := out[0]
	for _, m := range out[1:] {
		result += " -> " + m
	}
	return result
}
