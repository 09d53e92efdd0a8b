package errors

import (
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Transport ---

// ChannelClosed reports that the channel behind an endpoint is closed.
func ChannelClosed(endpoint string) *AppError {
	return &AppError{
		Code: ErrCodeChannelClosed, Message: fmt.Sprintf("channel of %s is closed", endpoint),
		Details: map[string]any{"endpoint": endpoint},
	}
}

// Timeout reports a bounded wait that elapsed without an answer.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out", operation),
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// Cancelled reports a wait ended by exit or context cancellation.
func Cancelled(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: fmt.Sprintf("%s cancelled", operation),
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// Listening reports an attempt to receive on an endpoint owned by a listen loop.
func Listening(endpoint string) *AppError {
	return &AppError{
		Code: ErrCodeListening, Message: fmt.Sprintf("%s is owned by its listen loop", endpoint),
		Details: map[string]any{"endpoint": endpoint},
	}
}

// RoutingMiss reports a reply whose routing key has no registered subscriber.
func RoutingMiss(routingKey string) *AppError {
	return &AppError{
		Code: ErrCodeRoutingMiss, Message: fmt.Sprintf("no subscriber for %q", routingKey),
		Details: map[string]any{"routing_key": routingKey},
	}
}

// --- Payload ---

// Serialization reports a payload that could not be encoded or decoded.
func Serialization(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSerialization, Message: fmt.Sprintf("%s failed", operation),
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// RemoteFailed reports a failure reply sent back by a responder.
func RemoteFailed(endpoint, message string) *AppError {
	return &AppError{
		Code: ErrCodeRemoteFailed, Message: message,
		Details: map[string]any{"endpoint": endpoint},
	}
}

// --- Pipeline ---

// StageFailed wraps the failure observed by a pipeline stage.
func StageFailed(stage string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStageFailed, Message: stage + ".eval",
		Details: map[string]any{"stage": stage}, Cause: cause,
	}
}

// NoCandidates reports a filter stage that rejected every candidate.
func NoCandidates(stage, what string) *AppError {
	return &AppError{
		Code: ErrCodeNoCandidates, Message: fmt.Sprintf("no %s left after filtering", what),
		Details: map[string]any{"stage": stage},
	}
}

// --- Input ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", resource),
		Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "unexpected failure", Cause: cause,
	}
}
