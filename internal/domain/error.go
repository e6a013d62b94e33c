package domain

import (
	"errors"
	"fmt"
)

// Application error codes. Handlers map these onto HTTP status codes;
// services attach them so callers never inspect error strings.
const (
	ECONFLICT     = "conflict"         // 409 - duplicate resource or illegal state transition
	EINTERNAL     = "internal"         // 500 - unexpected failure, details hidden from users
	EINVALID      = "invalid"          // 400 - bad input
	ENOTFOUND     = "not_found"        // 404 - resource does not exist
	EUNAUTHORIZED = "unauthorized"     // 401 - missing or invalid credentials/signature
	EPAYMENT      = "payment_required" // 402 - payment provider rejected or failed
	ENOTIMPL      = "not_implemented"  // 501 - feature not available
)

// Error is the application error type. It carries a machine-readable
// code, a user-safe message, and the operation that produced it.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is safe to return to API clients.
	Message string

	// Op names the failing operation, e.g. "order.create". Logging only.
	Op string

	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the code from err. Non-domain errors report EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage extracts a user-facing message from err. Internal and
// unknown errors collapse to a generic message so details never leak.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// Errorf builds a new domain error with a formatted message.
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a code, operation, and user-safe message to an
// existing error. Returns nil when err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// Internal wraps err as an internal error. The user sees a generic
// message; the cause is preserved for logs.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// NotFound builds a not-found error for a named resource.
func NotFound(op, resource, identifier string) error {
	return &Error{Code: ENOTFOUND, Op: op, Message: fmt.Sprintf("%s not found: %s", resource, identifier)}
}

// Invalid builds a validation error.
func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// Conflict builds a conflict error.
func Conflict(op, message string) error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Unauthorized builds an unauthorized error.
func Unauthorized(op, message string) error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
