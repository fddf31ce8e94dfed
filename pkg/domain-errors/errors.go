// Package domainerrors carries a stable error Code through every layer so the
// HTTP edge can translate failures without inspecting messages.
//
// Services create errors with New or wrap infrastructure failures with Wrap.
// Callers branch on HasCode; errors.Is and errors.As keep working through the
// wrapped cause.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a failure.
type Code string

const (
	// CodeInvalidInput reports a malformed identifier or operation descriptor
	// (wrong alphabet, bad length, unknown partition, bad namespace, bad check digit).
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation reports a request that is well formed but semantically invalid.
	CodeValidation Code = "validation_error"
	// CodeBadRequest reports a request the transport could not decode.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound reports a missing system id, scheme, partition or namespace.
	CodeNotFound Code = "not_found"
	// CodeConflict reports a lifecycle rejection: the requested action is not
	// allowed from the record's current status.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation reports a broken domain invariant.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeResourceExhausted reports that bounded allocation retries ran out.
	CodeResourceExhausted Code = "resource_exhausted"
	// CodeUnauthorized reports a missing or invalid credential.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden reports an authenticated caller without permission.
	CodeForbidden Code = "forbidden"
	// CodeTimeout reports a cancelled or expired context.
	CodeTimeout Code = "timeout"
	// CodeInternal reports an infrastructure failure (store, lock, broker).
	CodeInternal Code = "internal_error"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err is a domain error.
func Is(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any domain error in err's chain carries code.
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

// ToHTTPStatus maps a code to the status the HTTP edge responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvariantViolation:
		return http.StatusConflict
	case CodeResourceExhausted:
		return http.StatusServiceUnavailable
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
