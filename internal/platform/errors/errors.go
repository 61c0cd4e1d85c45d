// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode defines supported error codes used across services
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeUnavailable is for transient upstream failures where retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeFlowControl is for an explicit upstream slow-down signal carrying a required wait
	ErrorCodeFlowControl

	// ErrorCodeTooManyRequests is for local rate limiting
	ErrorCodeTooManyRequests

	// ErrorCodeForbidden is for private or otherwise inaccessible collections
	ErrorCodeForbidden

	// ErrorCodeInvalidArgument is for bad input parameters
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for validation failures (input data)
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing/validation errors
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing collections or resources
	ErrorCodeNotFound

	// ErrorCodeResource is for export serialization/storage failures
	ErrorCodeResource

	// ErrorCodeDB is for general database errors
	ErrorCodeDB
)

// HTTPStatusCode turns an ErrorCode into an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeFlowControl, ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeResource:
		return http.StatusBadGateway
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeDB, ErrorCodePanic, ErrorCodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ErrNotFound is a sentinel not found error for convenience
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (for validation); op is optional operation tag
// retryAfter is set for flow-control errors; details carries extra wire data
// orig is the wrapped cause
type Error struct {
	orig       error
	msg        string
	code       ErrorCode
	field      string
	op         string
	retryAfter time.Duration
	details    map[string]any
}

// Wire is the JSON-serializable form returned to callers
type Wire struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Field      string         `json:"field,omitempty"`
	RetryAfter float64        `json:"retry_after,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// RetryAfter returns the upstream-dictated wait, zero when not a flow-control error
func (e *Error) RetryAfter() time.Duration { return e.retryAfter }

// Details returns the attached detail map, may be nil
func (e *Error) Details() map[string]any { return e.details }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire {
	return Wire{
		Code:       e.code,
		Message:    e.msg,
		Field:      e.field,
		RetryAfter: e.retryAfter.Seconds(),
		Details:    e.details,
	}
}

// WireFrom converts any error into a Wire payload with best-effort mapping
// If err is nil, returns the zero-value Wire (no error)
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// RetryAfterOf extracts the flow-control wait from any error, zero when absent
func RetryAfterOf(err error) time.Duration {
	if e, ok := As(err); ok {
		return e.retryAfter
	}
	return 0
}

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// WithDetail attaches a key/value detail to an *Error (copy-on-write)
// Foreign errors are wrapped into an *Error with Unknown code so the detail is not lost
func WithDetail(err error, key string, val any) error {
	e, ok := As(err)
	if !ok {
		return &Error{code: ErrorCodeUnknown, msg: err.Error(), orig: err, details: map[string]any{key: val}}
	}
	c := *e
	c.details = make(map[string]any, len(e.details)+1)
	for k, v := range e.details {
		c.details[k] = v
	}
	c.details[key] = val
	return &c
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// FlowControl returns a flow-control error carrying the upstream-required wait
func FlowControl(wait time.Duration) error {
	return &Error{
		code:       ErrorCodeFlowControl,
		msg:        fmt.Sprintf("rate limited, wait %s before retry", wait),
		retryAfter: wait,
	}
}

// FlowControlWrap wraps orig as a flow-control error with the given wait
func FlowControlWrap(orig error, wait time.Duration) error {
	return &Error{
		code:       ErrorCodeFlowControl,
		msg:        fmt.Sprintf("rate limited, wait %s before retry", wait),
		retryAfter: wait,
		orig:       orig,
	}
}

// Sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Forbiddenf returns a forbidden error
func Forbiddenf(format string, a ...any) error { return Newf(ErrorCodeForbidden, format, a...) }

// Unavailablef returns a transient-upstream error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// Resourcef returns an export/storage resource error
func Resourcef(format string, a ...any) error { return Newf(ErrorCodeResource, format, a...) }

// DBf returns a general database error
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }

// HTTP bundles status + wire in one shot (nice for handlers)
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// Retry semantics

// Retryable reports whether a retry of the failed call may succeed
// Flow-control and transient-upstream errors are retryable; semantic
// rejections (not found, private, validation) are not
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeFlowControl, ErrorCodeUnavailable, ErrorCodeUnknown:
		return true
	default:
		return false
	}
}
