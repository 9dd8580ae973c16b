package insight

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed analysis for retry decisions and HTTP mapping.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindTimeout           ErrorKind = "timeout"
	KindUpstreamHTTP      ErrorKind = "upstream_http"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindTransport         ErrorKind = "transport"
)

// Error is the typed failure produced by validation, the gateway, or the
// queue. StatusCode is only set for KindUpstreamHTTP.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the caller may reasonably retry the request.
// Validation failures need different input; upstream 4xx means the request
// itself was rejected.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindTransport:
		return true
	case KindUpstreamHTTP:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// AsError unwraps err into *Error if possible.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// NewValidationError reports malformed user input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewTimeoutError reports that the upstream did not answer within the
// configured deadline.
func NewTimeoutError(timeoutMs int64, cause error) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("model backend request timed out after %dms", timeoutMs),
		cause:   cause,
	}
}

// NewUpstreamHTTPError reports a non-success status from the model backend.
func NewUpstreamHTTPError(statusCode int, status string) *Error {
	return &Error{
		Kind:       KindUpstreamHTTP,
		Message:    fmt.Sprintf("model backend error: %d %s", statusCode, status),
		StatusCode: statusCode,
	}
}

// NewTransportError reports a connection-level failure.
func NewTransportError(message string, cause error) *Error {
	return &Error{Kind: KindTransport, Message: message, cause: cause}
}

// wrapError coerces any error into *Error, defaulting to KindTransport.
func wrapError(err error) *Error {
	if se, ok := AsError(err); ok {
		return se
	}
	return NewTransportError(err.Error(), err)
}
