// Package httputil provides retry support for repository HTTP clients.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Callers mark an
// error as transient by wrapping it in [RetryableError]; typical cases are
//
//   - network errors (connection reset, timeout)
//   - 5xx server errors
//
// Everything else (404, malformed documents) is returned on the first
// attempt. The delay between attempts doubles each time:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx, url)
//	})
//
// A [Policy] carries the attempt count and initial delay so the setting can
// flow from configuration to the client. The zero Policy makes one attempt.
package httputil
