// Package errors provides structured error types for the panels engine.
//
// Every failure surfaced by the store, the workspace manager, the keyboard
// layer, or the HTTP API carries a machine-readable [Code] so callers can
// branch on category without string matching.
//
// # Error Codes
//
// Codes are grouped by concern:
//   - INVALID_*: rejected input (geometry, workspace names, keys, config)
//   - *_NOT_FOUND: unknown panel or workspace ids
//   - CONSTRAINT_VIOLATION, COLLISION: operations blocked by panel rules
//   - STORAGE, INTERNAL: backend and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "size %vx%v must be positive", w, h)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // reject
//	}
//
//	err = errors.Wrap(errors.ErrCodeStorage, cause, "save workspace %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidGeometry  Code = "INVALID_GEOMETRY"
	ErrCodeInvalidWorkspace Code = "INVALID_WORKSPACE"
	ErrCodeInvalidKey       Code = "INVALID_KEY"
	ErrCodeInvalidChord     Code = "INVALID_CHORD"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidRequest   Code = "INVALID_REQUEST"

	// Rule violations
	ErrCodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
	ErrCodeCollision           Code = "COLLISION"

	// Resource not found errors
	ErrCodePanelNotFound     Code = "PANEL_NOT_FOUND"
	ErrCodeWorkspaceNotFound Code = "WORKSPACE_NOT_FOUND"

	// Backend errors
	ErrCodeStorage  Code = "STORAGE"
	ErrCodeInternal Code = "INTERNAL"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidGeometry, ErrCodeInvalidWorkspace, ErrCodeInvalidKey,
		ErrCodeInvalidChord, ErrCodeInvalidConfig, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodePanelNotFound, ErrCodeWorkspaceNotFound:
		return http.StatusNotFound
	case ErrCodeConstraintViolation, ErrCodeCollision:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
