package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors
const (
	// ErrCodeChannelClosed indicates the peer side of a channel has gone away.
	ErrCodeChannelClosed ErrorCode = "CHANNEL_CLOSED"
	// ErrCodeTimeout indicates a bounded wait elapsed without an answer.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeCancelled indicates the wait was ended by exit or context cancellation.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeListening indicates the endpoint's receiver is owned by a listen loop.
	ErrCodeListening ErrorCode = "LISTENING"
	// ErrCodeRoutingMiss indicates no subscriber is registered for a reply.
	ErrCodeRoutingMiss ErrorCode = "ROUTING_MISS"
)

// Payload errors
const (
	// ErrCodeSerialization indicates a payload could not be encoded or decoded.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"
	// ErrCodeRemoteFailed indicates the responder answered with a failure reply.
	ErrCodeRemoteFailed ErrorCode = "REMOTE_FAILED"
)

// Pipeline errors
const (
	// ErrCodeStageFailed indicates a stage observed a failure upstream or in itself.
	ErrCodeStageFailed ErrorCode = "STAGE_FAILED"
	// ErrCodeNoCandidates indicates a filter stage left nothing to choose from.
	ErrCodeNoCandidates ErrorCode = "NO_CANDIDATES"
)

// Input errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:       true,
	ErrCodeChannelClosed: false,
	ErrCodeInternal:      false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
