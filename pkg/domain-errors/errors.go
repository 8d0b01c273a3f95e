// Package domainerrors provides coded errors shared by services, stores and
// transport adapters.
//
// Services return *Error values; handlers translate the Code into an HTTP
// status through pkg/platform/httputil. Stores should prefer the sentinel
// errors in pkg/platform/sentinel and let services choose the code.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and transport adapters.
type Code string

// Generic codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInternal           Code = "internal_error"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
)

// Lifecycle and compliance codes.
const (
	// CodeInvalidTransition means a guard was not met or the state jump is illegal.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeIneligibleDestination means the evaluator returned eligible=false.
	CodeIneligibleDestination Code = "ineligible_destination"
	// CodeUnknownDestination means no active country rule exists for the code.
	CodeUnknownDestination Code = "unknown_destination"
	// CodeCategoryNotConfigured means the rule lists the category nowhere.
	CodeCategoryNotConfigured Code = "category_not_configured"
	// CodeConflictingRule means the rule lists the category as allowed and restricted.
	CodeConflictingRule Code = "conflicting_rule"
	// CodeStorageUnavailable is the only class callers may retry.
	CodeStorageUnavailable Code = "storage_unavailable"
	// CodeAuthorizationDenied means the actor lacks the capability for the trigger.
	CodeAuthorizationDenied Code = "authorization_denied"
)

// Error is a coded domain error. Err is optional and kept for errors.Is/As.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
// Wrapping a nil error returns nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, or the raw error text.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
