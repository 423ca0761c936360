// Package errors provides structured error types for gridplot.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the layout engine, the CLI and the
//     preview server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (layout strings, documents)
//   - NOT_FOUND_*: Unknown positions, components or formats
//   - LAYOUT_*: Failures raised while resolving or binding the grid
//   - TRANSFORM_*: Per-point failures of data-to-pixel transforms
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConstraintParse, "bad term %q", term)
//	if errors.Is(err, errors.ErrCodeConstraintParse) {
//	    // Reject the layout document
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"
	ErrCodeInvalidName      Code = "INVALID_NAME"
	ErrCodeInvalidSize      Code = "INVALID_SIZE"
	ErrCodeConstraintParse  Code = "INVALID_CONSTRAINT"
	ErrCodeCycle            Code = "INVALID_CYCLE"
	ErrCodeDuplicateName    Code = "INVALID_DUPLICATE"
	ErrCodeInvalidDataRange Code = "INVALID_DATA_RANGE"

	// Resource not found errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodePositionNotFound  Code = "POSITION_NOT_FOUND"
	ErrCodeComponentNotFound Code = "COMPONENT_NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"

	// Layout errors
	ErrCodeUnresolvedBinding Code = "LAYOUT_UNRESOLVED_BINDING"
	ErrCodePositionInUse     Code = "LAYOUT_POSITION_IN_USE"
	ErrCodeWaitInDrain       Code = "LAYOUT_WAIT_IN_DRAIN"
	ErrCodeReentrantResolve  Code = "LAYOUT_REENTRANT_RESOLVE"

	// Transform errors
	ErrCodeDomain              Code = "TRANSFORM_DOMAIN"
	ErrCodeDegenerateTransform Code = "TRANSFORM_DEGENERATE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// PositionError annotates an error with the layout position it concerns.
type PositionError struct {
	Position string // Name of the offending row or column
	Err      error
}

// Error implements the error interface.
func (e *PositionError) Error() string {
	if e.Position == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("position %q: %v", e.Position, e.Err)
}

// Unwrap returns the wrapped error.
func (e *PositionError) Unwrap() error { return e.Err }

// Code returns the error code of the wrapped error, or ErrCodeInternal.
func (e *PositionError) Code() Code {
	if c := GetCode(e.Err); c != "" {
		return c
	}
	return ErrCodeInternal
}
