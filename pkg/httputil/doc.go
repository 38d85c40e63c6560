// Package httputil provides the retry policy shared by catalog lookups and
// library file downloads.
//
// [Retry] re-runs an operation while it fails with a [RetryableError],
// doubling the wait each time. The catalog client marks network errors,
// 5xx and 429 responses as retryable and copies the server's Retry-After
// into [RetryableError.After]; 404s and malformed responses fail fast:
//
//	err := httputil.Retry(ctx, httputil.DefaultPolicy.WithAttempts(5), func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
package httputil
