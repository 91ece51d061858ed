package domainerrors

import "errors"

// Code represents a codec error category independent of any caller.
// These codes describe what went wrong with a record, not how it is reported.
type Code string

const (
	CodeMissingRequiredField Code = "missing_required_field"
	CodeUnsupportedType      Code = "unsupported_type"
	CodeMalformedBuffer      Code = "malformed_buffer"
	CodeInvalidInput         Code = "invalid_input"
	CodeInvariantViolation   Code = "invariant_violation" // precomputed length != bytes written
	CodeInternal             Code = "internal_error"
)

// Error wraps record construction or decoding failures with a stable code.
// It is layer-agnostic and is returned unchanged from codec, domain and service code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// Sentinels for errors.Is comparisons; they match any error carrying the same code.
var (
	ErrMissingRequiredField = &Error{Code: CodeMissingRequiredField}
	ErrUnsupportedType      = &Error{Code: CodeUnsupportedType}
	ErrMalformedBuffer      = &Error{Code: CodeMalformedBuffer}
	ErrInvariantViolation   = &Error{Code: CodeInvariantViolation}
)
