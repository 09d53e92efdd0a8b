// Package resilience retries operations that fail transiently, such as an
// operator request that timed out.
//
//	hook, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (Hook, error) {
//	    return req.Fetch(ctx, query)
//	})
//
// Only errors marked retryable are retried by default.
package resilience
