package usecase

import "fmt"

type ErrorCode string

const (
	ErrorMalformedRequest ErrorCode = "MALFORMED_REQUEST"
	ErrorUpstream         ErrorCode = "UPSTREAM_ERROR"
	ErrorEmptyGeneration  ErrorCode = "EMPTY_GENERATION"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

// Error is a classified relay failure. Message is the text reported to the
// caller; Reason is a stable tag for logs.
type Error struct {
	Code    ErrorCode
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PublicMessage returns the text placed in the error response body.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// MalformedRequest reports input that could not be turned into a relay call.
func MalformedRequest(reason, message string, err error) *Error {
	return newError(ErrorMalformedRequest, reason, message, err)
}

// Internal reports an unexpected failure.
func Internal(reason, message string, err error) *Error {
	return newError(ErrorInternal, reason, message, err)
}

func newError(code ErrorCode, reason, message string, err error) *Error {
	return &Error{Code: code, Reason: reason, Message: message, Err: err}
}
