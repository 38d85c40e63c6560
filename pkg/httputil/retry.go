package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryableError marks a transient download or catalog failure. After is
// the wait the server asked for through Retry-After; zero means the policy
// backoff applies.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy controls how often a catalog request or file download is retried.
// Attempts counts every try including the first. Delay is the wait before
// the first retry and doubles afterwards. MaxDelay caps every wait, also
// one requested by the server.
type Policy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultPolicy is used when LIBMAN_HTTP_RETRIES is not set.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// WithAttempts returns p with the attempt count replaced. Values below one
// run the operation once.
func (p Policy) WithAttempts(n int) Policy {
	p.Attempts = max(n, 1)
	return p
}

// wait picks the pause before the next try: the larger of the backoff and
// the server's Retry-After, capped by MaxDelay.
func (p Policy) wait(backoff time.Duration, err error) time.Duration {
	d := backoff
	var re *RetryableError
	if errors.As(err, &re) && re.After > d {
		d = re.After
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, returns an error not wrapped in
// [RetryableError], or the policy's attempts are used up. The last error is
// returned, or ctx.Err() when ctx ends while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	backoff := p.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			timer := time.NewTimer(p.wait(backoff, lastErr))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
				backoff *= 2
			}
		}
	}
	return lastErr
}

// ParseRetryAfter reads a Retry-After header value in either delta-seconds
// or HTTP-date form. Unparseable or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
