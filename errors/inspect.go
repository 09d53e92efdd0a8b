package errors

import (
	stderrors "errors"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsTimeout reports whether err is, or wraps, a TIMEOUT error.
func IsTimeout(err error) bool { return HasCode(err, ErrCodeTimeout) }

// IsRetryable reports whether the outermost AppError in err's chain is retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// Chain returns the stage names recorded by StageFailed wrappers, outermost first.
func Chain(err error) []string {
	var stages []string
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == ErrCodeStageFailed {
			if name, ok := appErr.Details["stage"].(string); ok {
				stages = append(stages, name)
			}
		}
		err = stderrors.Unwrap(err)
	}
	return stages
}

// Root returns the innermost error of the chain.
func Root(err error) error {
	for {
		next := stderrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
