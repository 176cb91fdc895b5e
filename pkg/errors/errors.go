// Package errors provides structured error types shared by the dialog codec.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the codec packages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - PARSE_*: Malformed binary input (always surfaced, never recovered)
//   - INVALID_*: Invalid values handed to the codec by a caller
//   - UNRESOLVED_*: Degraded-but-tolerated input artifacts (diagnostics)
//   - INTERNAL_*, INDEX_CONFLICT: Writer logic bugs
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPointer, "entry %d has no reply %d", from, to)
//	if errors.Is(err, errors.ErrCodeInvalidPointer) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "flatten dialog")
//
// Types defined in other packages (for example gff.ParseError) participate in
// [Is] and [GetCode] by implementing a Code() method.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Malformed input
	ErrCodeParse       Code = "PARSE_ERROR"
	ErrCodeWrongFormat Code = "PARSE_WRONG_FORMAT"

	// Caller input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPointer Code = "INVALID_POINTER"
	ErrCodeInvalidLabel   Code = "INVALID_LABEL"
	ErrCodeInvalidResRef  Code = "INVALID_RESREF"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Tolerated input artifacts
	ErrCodeUnresolvedPointer Code = "UNRESOLVED_POINTER"
	ErrCodeOrphanLink        Code = "ORPHAN_LINK"
	ErrCodePointerConflict   Code = "POINTER_CONFLICT"
	ErrCodeCascadeLimit      Code = "CASCADE_LIMIT"
	ErrCodeLossyText         Code = "LOSSY_TEXT"

	// Internal errors
	ErrCodeIndexConflict Code = "INDEX_CONFLICT"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
	ErrCodeUnsupported   Code = "UNSUPPORTED"
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

// coder is implemented by error types that carry a code without being an *Error.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error tree, including errors joined with [errors.Join],
// looking for an *Error (or any error with a Code method) with a matching
// code.
func Is(err error, code Code) bool {
	for err != nil {
		if GetCodeOf(err) == code {
			return true
		}
		if j, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range j.Unwrap() {
				if Is(e, code) {
					return true
				}
			}
			return false
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the first error code found in the chain of err.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		if c := GetCodeOf(err); c != "" {
			return c
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// GetCodeOf returns the code of err itself without unwrapping.
func GetCodeOf(err error) Code {
	switch e := err.(type) {
	case *Error:
		return e.Code
	case coder:
		return e.Code()
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
