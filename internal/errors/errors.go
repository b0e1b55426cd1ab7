// Package errors provides custom error types for the catalog admin panel
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// PanelError is the base interface for all panel errors
type PanelError interface {
	error
	HTTPStatus() int
	Code() string
}

// BaseError is the base implementation of PanelError
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
	Details    string `json:"details,omitempty"`
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) HTTPStatus() int {
	return e.StatusCode
}

func (e *BaseError) Code() string {
	return e.ErrorCode
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	BaseError
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s not found", resource),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "NOT_FOUND",
		},
		Resource: resource,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	BaseError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "VALIDATION_ERROR",
		},
		Field: field,
	}
}

// PermissionDeniedError represents a permission denied error
type PermissionDeniedError struct {
	BaseError
	Action   string
	Resource string
}

func NewPermissionDeniedError(action, resource string) *PermissionDeniedError {
	return &PermissionDeniedError{
		BaseError: BaseError{
			Message:    "permission denied",
			StatusCode: http.StatusForbidden,
			ErrorCode:  "PERMISSION_DENIED",
		},
		Action:   action,
		Resource: resource,
	}
}

// UnauthorizedError represents an authentication error
type UnauthorizedError struct {
	BaseError
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "authentication required"
	}
	return &UnauthorizedError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
			ErrorCode:  "UNAUTHORIZED",
		},
	}
}

// InternalError represents an internal server error
type InternalError struct {
	BaseError
	OriginalError error
}

func NewInternalError(original error) *InternalError {
	return &InternalError{
		BaseError: BaseError{
			Message:    "internal server error",
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "INTERNAL_ERROR",
		},
		OriginalError: original,
	}
}

func (e *InternalError) Unwrap() error {
	return e.OriginalError
}

// ConflictError represents a conflict error (e.g., duplicate)
type ConflictError struct {
	BaseError
	Resource string
}

func NewConflictError(resource string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s already exists", resource),
			StatusCode: http.StatusConflict,
			ErrorCode:  "CONFLICT",
		},
		Resource: resource,
	}
}

// BadRequestError represents a generic bad request error
type BadRequestError struct {
	BaseError
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "BAD_REQUEST",
		},
	}
}

// UpstreamError is a non-2xx answer from the catalog API.
// Body holds the raw response text, shown to the operator as-is.
type UpstreamError struct {
	BaseError
	Method   string
	Path     string
	Upstream int
	Body     string
}

func NewUpstreamError(method, path string, status int, body string) *UpstreamError {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = fmt.Sprintf("%s %s failed with status %d", method, path, status)
	}
	return &UpstreamError{
		BaseError: BaseError{
			Message:    msg,
			StatusCode: http.StatusBadGateway,
			ErrorCode:  "UPSTREAM_ERROR",
		},
		Method:   method,
		Path:     path,
		Upstream: status,
		Body:     body,
	}
}

// UnknownSectionError is returned when navigating to a section that does not exist
type UnknownSectionError struct {
	BaseError
	Section string
}

func NewUnknownSectionError(section string) *UnknownSectionError {
	return &UnknownSectionError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("unknown section %q", section),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "UNKNOWN_SECTION",
		},
		Section: section,
	}
}

// UnsupportedKindError is returned for a record kind the panel does not manage
type UnsupportedKindError struct {
	BaseError
	Kind string
}

func NewUnsupportedKindError(kind string) *UnsupportedKindError {
	return &UnsupportedKindError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("unsupported record kind %q", kind),
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "UNSUPPORTED_KIND",
		},
		Kind: kind,
	}
}

// NoSelectionError is returned when saving without an open edit form
type NoSelectionError struct {
	BaseError
}

func NewNoSelectionError() *NoSelectionError {
	return &NoSelectionError{
		BaseError: BaseError{
			Message:    "no record is open for editing",
			StatusCode: http.StatusConflict,
			ErrorCode:  "NO_SELECTION",
		},
	}
}

// ToHTTPError converts any error to an appropriate HTTP response
func ToHTTPError(err error) (int, map[string]interface{}) {
	if err == nil {
		return http.StatusOK, nil
	}

	var pe PanelError
	if stderrors.As(err, &pe) {
		return pe.HTTPStatus(), map[string]interface{}{
			"error":   pe.Code(),
			"message": pe.Error(),
		}
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError, map[string]interface{}{
		"error":   "INTERNAL_ERROR",
		"message": "internal server error",
	}
}

// Message returns the text an operator should see for err.
// Upstream failures show the raw backend body.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ue *UpstreamError
	if stderrors.As(err, &ue) {
		return ue.Error()
	}
	var pe PanelError
	if stderrors.As(err, &pe) {
		return pe.Error()
	}
	return err.Error()
}
