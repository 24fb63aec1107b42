// Package errors provides structured error types for railplan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Identification of the topology element that caused a failure
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Layout failures are fatal for the current conversion; none are retried.
// Each code names one way a topology can defeat the schematic engine:
//
//	VERTICAL_EDGE             two connected nodes share an original x
//	DEGREE_EXCEEDED           a node exceeds 2 predecessors, 2 successors, or 3 edges
//	MAIN_TRACK_COLLISION      a node would belong to two distinct main tracks
//	DIAGONAL_SIGNAL_OVERFLOW  a fully diagonal edge carries >1 signal per side
//	MALFORMED_BREAKPOINT      a breakpoint aligns with neither edge endpoint
//	BAD_RELATIVE_POSITION     a computed signal position falls outside [0, 1]
//	EDGE_NOT_FOUND            an edge lookup with inconsistent inputs
//	SIGNAL_NOT_ON_EDGE        a signal placed on an edge it does not belong to
//
// # Usage
//
//	err := errors.New(errors.ErrCodeVerticalEdge, edgeID, "nodes %s and %s share x", a, b)
//	if errors.Is(err, errors.ErrCodeVerticalEdge) {
//	    // Handle layout failure
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout failures
	ErrCodeVerticalEdge           Code = "VERTICAL_EDGE"
	ErrCodeDegreeExceeded         Code = "DEGREE_EXCEEDED"
	ErrCodeMainTrackCollision     Code = "MAIN_TRACK_COLLISION"
	ErrCodeDiagonalSignalOverflow Code = "DIAGONAL_SIGNAL_OVERFLOW"
	ErrCodeMalformedBreakpoint    Code = "MALFORMED_BREAKPOINT"
	ErrCodeBadRelativePosition    Code = "BAD_RELATIVE_POSITION"

	// Lookup failures
	ErrCodeEdgeNotFound    Code = "EDGE_NOT_FOUND"
	ErrCodeSignalNotOnEdge Code = "SIGNAL_NOT_ON_EDGE"

	// Outer surfaces
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, the UUID of the offending
// topology element (empty when no single element is at fault), and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Element string // UUID of the offending node, edge, or signal
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Element != "" {
		msg = fmt.Sprintf("%s (element %s)", msg, e.Element)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code, offending element UUID,
// and formatted message.
func New(code Code, element string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Element: element,
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

// GetElement extracts the offending element UUID from an error, if available.
func GetElement(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Element
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
