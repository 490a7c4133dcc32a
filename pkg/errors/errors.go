// Package errors defines custom error types and error handling utilities for the compliance service.
// This package provides structured error types that map to HTTP status codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/turtacn/compliance/pkg/constants"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError represents a structured error with additional metadata
type AppError interface {
	error

	// Code returns the error code
	Code() constants.ErrorCode

	// HTTPStatus returns the HTTP status code
	HTTPStatus() int

	// Description returns a human-readable description
	Description() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) AppError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) AppError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code        constants.ErrorCode
	httpStatus  int
	description string
	message     string
	cause       error
	metadata    map[string]interface{}
}

func (e *baseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.description
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *baseError) Code() constants.ErrorCode { return e.code }

func (e *baseError) HTTPStatus() int { return e.httpStatus }

func (e *baseError) Description() string { return e.description }

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) WithCause(cause error) AppError {
	e.cause = cause
	return e
}

func (e *baseError) WithMetadata(key string, value interface{}) AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

func (e *baseError) Metadata() map[string]interface{} { return e.metadata }

// NewError creates a new AppError with the specified parameters
func NewError(code constants.ErrorCode, httpStatus int, description string, message string) AppError {
	return &baseError{
		code:        code,
		httpStatus:  httpStatus,
		description: description,
		message:     message,
		metadata:    make(map[string]interface{}),
	}
}

// ================================================================================
// Predefined Error Constructors
// ================================================================================

// ErrInvalidRequest reports malformed or incomplete input
func ErrInvalidRequest(message string) AppError {
	return NewError(
		constants.ErrCodeInvalidRequest,
		http.StatusBadRequest,
		"The request is missing a required parameter or includes an invalid parameter value.",
		message,
	)
}

// ErrNotFound reports a missing resource
func ErrNotFound(resource, id string) AppError {
	return NewError(
		constants.ErrCodeNotFound,
		http.StatusNotFound,
		"The requested resource was not found.",
		fmt.Sprintf("%s %s not found", resource, id),
	).WithMetadata("resource", resource).WithMetadata("id", id)
}

// ErrInvalidState reports an operation that is not allowed in the resource's current state
func ErrInvalidState(resource, id, state string) AppError {
	return NewError(
		constants.ErrCodeInvalidState,
		http.StatusConflict,
		"The resource is not in a state that allows this operation.",
		fmt.Sprintf("%s %s is %s", resource, id, state),
	).WithMetadata("resource", resource).WithMetadata("id", id).WithMetadata("state", state)
}

// ErrDatabaseOperation wraps a storage failure
func ErrDatabaseOperation(op string, cause error) AppError {
	return NewError(
		constants.ErrCodeDatabase,
		http.StatusInternalServerError,
		"database operation failed",
		op,
	).WithCause(cause)
}

// ErrCache wraps a cache failure
func ErrCache(op string, cause error) AppError {
	return NewError(
		constants.ErrCodeCache,
		http.StatusInternalServerError,
		"cache operation failed",
		op,
	).WithCause(cause)
}

// ErrInternal reports an unexpected condition
func ErrInternal(message string) AppError {
	return NewError(
		constants.ErrCodeInternal,
		http.StatusInternalServerError,
		"The server encountered an unexpected condition.",
		message,
	)
}

// ErrInvalidConfig reports an unusable configuration
var ErrInvalidConfig = stderrors.New("invalid configuration")

// ================================================================================
// Error Validation Utilities
// ================================================================================

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps a generic error into an AppError
func WrapError(err error, code constants.ErrorCode, message string) AppError {
	var httpStatus int
	switch code {
	case constants.ErrCodeInvalidRequest:
		httpStatus = http.StatusBadRequest
	case constants.ErrCodeNotFound:
		httpStatus = http.StatusNotFound
	case constants.ErrCodeInvalidState, constants.ErrCodeConflict:
		httpStatus = http.StatusConflict
	case constants.ErrCodeUnavailable:
		httpStatus = http.StatusServiceUnavailable
	default:
		httpStatus = http.StatusInternalServerError
	}
	return NewError(code, httpStatus, err.Error(), message).WithCause(err)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == constants.ErrCodeNotFound
	}
	return false
}

// IsInvalidState checks if an error is an invalid state error.
func IsInvalidState(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == constants.ErrCodeInvalidState
	}
	return false
}

// IsInvalidRequest checks if an error was caused by bad input.
func IsInvalidRequest(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code() == constants.ErrCodeInvalidRequest
	}
	return false
}

// ShouldLogError determines if an error should be logged at error level
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus() >= 500
	}
	return true
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse represents the JSON structure for error responses
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts any error to an ErrorResponse and its HTTP status
func ToErrorResponse(err error) (int, *ErrorResponse) {
	if appErr, ok := AsAppError(err); ok {
		desc := appErr.Error()
		if desc == "" {
			desc = appErr.Description()
		}
		return appErr.HTTPStatus(), &ErrorResponse{
			Error:            string(appErr.Code()),
			ErrorDescription: desc,
			Metadata:         appErr.Metadata(),
		}
	}
	return http.StatusInternalServerError, &ErrorResponse{
		Error:            string(constants.ErrCodeInternal),
		ErrorDescription: "An unexpected error occurred",
	}
}
