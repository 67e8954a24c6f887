package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an Inklings error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrNameAlreadyExists ErrorCode = "NAME_ALREADY_EXISTS" // 409
	ErrConflict          ErrorCode = "CONFLICT"            // 409
	ErrWriteFailed       ErrorCode = "WRITE_FAILED"        // 500
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// InklingsError represents a structured error with code, status, and details.
type InklingsError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. Never shown to MCP or HTTP clients.
	Err error
}

// Error implements the error interface.
func (e *InklingsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *InklingsError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *InklingsError {
	return &InklingsError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a note id that does not resolve.
func NewNotFound(id string) *InklingsError {
	return &InklingsError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("note not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewNameAlreadyExists creates a 409 error when a create or rename target is taken.
func NewNameAlreadyExists(path string) *InklingsError {
	return &InklingsError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("a note already exists at %q", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *InklingsError {
	return &InklingsError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewWriteFailed creates a 500 error for a storage write that did not complete.
func NewWriteFailed(id string, err error) *InklingsError {
	return &InklingsError{
		Code:    ErrWriteFailed,
		Status:  500,
		Message: fmt.Sprintf("failed to write note %s", id),
		Details: map[string]any{"id": id},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *InklingsError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &InklingsError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// As returns the InklingsError in err's chain, if any.
func As(err error) (*InklingsError, bool) {
	var iErr *InklingsError
	if stderrors.As(err, &iErr) {
		return iErr, true
	}
	return nil, false
}

// Is checks if an error is (or wraps) an InklingsError with the given code.
func Is(err error, code ErrorCode) bool {
	if iErr, ok := As(err); ok {
		return iErr.Code == code
	}
	return false
}
