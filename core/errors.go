package core

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of stream failure. Codes are stable wire
// contract values; callers branch on them for retry decisions.
type ErrorCode string

const (
	// ErrCodeInvalidPosition marks a malformed position encoding. No
	// resources were acquired.
	ErrCodeInvalidPosition ErrorCode = "invalid_position"
	// ErrCodeEngineUnavailable marks a non-resolvable engine binary. No
	// resources were acquired.
	ErrCodeEngineUnavailable ErrorCode = "engine_unavailable"
	// ErrCodeEngineBusy marks an admission timeout. No resources were
	// acquired.
	ErrCodeEngineBusy ErrorCode = "engine_busy"
	// ErrCodeEngineError marks a worker that crashed or misbehaved
	// mid-analysis. The handle is discarded.
	ErrCodeEngineError ErrorCode = "engine_error"
	// ErrCodeStreamFailed marks an unexpected internal fault. An acquired
	// handle is released normally.
	ErrCodeStreamFailed ErrorCode = "stream_failed"
)

// StreamError carries the stable error taxonomy across package boundaries.
// It implements error and supports errors.As / errors.Is unwrapping.
type StreamError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	cause     error
}

// NewStreamError constructs a StreamError with an explicit retryability flag.
func NewStreamError(code ErrorCode, retryable bool, message string) *StreamError {
	return &StreamError{Code: code, Message: message, Retryable: retryable}
}

// WrapStreamError wraps an underlying error, preserving it for errors.Is.
func WrapStreamError(code ErrorCode, retryable bool, message string, cause error) *StreamError {
	return &StreamError{Code: code, Message: message, Retryable: retryable, cause: cause}
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause, if any.
func (e *StreamError) Unwrap() error { return e.cause }

// AsStreamError extracts a StreamError from an error chain.
func AsStreamError(err error) (*StreamError, bool) {
	var se *StreamError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
