// Package clierr defines the coded errors shared by the flows, the CLI
// commands and the TUI. Errors carry a machine-readable code, the message
// shown to the operator, optional details and an optional cause.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants. Uppercase, underscore-separated, stable.
const (
	// Validation is a rejection decided locally before any network call.
	Validation = "VALIDATION"
	// ServerRejected is a response whose success flag is false.
	ServerRejected = "SERVER_REJECTED"
	// Transport is a network failure or an unreadable response.
	Transport = "TRANSPORT"
	// Canceled is an operator cancellation at the password prompt.
	Canceled = "CANCELED"
	// Unauthenticated is a request answered with the login page.
	Unauthenticated = "UNAUTHENTICATED"

	EventNotFound  = "EVENT_NOT_FOUND"
	InvalidInput   = "INVALID_INPUT"
	InvalidDate    = "INVALID_DATE"
	ConfigNotFound = "CONFIG_NOT_FOUND"
	InternalError  = "INTERNAL_ERROR"
)

// Error represents a structured error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

// SilentError signals an exit code without additional output.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }

// Notice renders err for the operator. Server and transport failures get
// the error mark; validation messages carry their own.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	switch Code(err) {
	case ServerRejected, Transport, Unauthenticated:
		return "❌ " + err.Error()
	default:
		return err.Error()
	}
}
