package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	permanent := errors.New("permanent")
	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 3, 1, false},
		{"retryable then success", 2, &RetryableError{Err: errors.New("503")}, 3, 3, false},
		{"retryable exhausted", 5, &RetryableError{Err: errors.New("503")}, 3, 3, true},
		{"permanent fails fast", 5, permanent, 3, 1, true},
		{"zero attempts runs once", 5, permanent, 0, 1, true},
		{"single attempt does not retry", 5, &RetryableError{Err: errors.New("503")}, 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := Policy{Attempts: tt.attempts, Delay: time.Millisecond}
			err := Retry(context.Background(), p, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, Policy{Attempts: 5, Delay: time.Hour}, func() error {
		calls++
		cancel()
		return &RetryableError{Err: errors.New("503")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicyWait(t *testing.T) {
	p := Policy{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}
	tests := []struct {
		name    string
		backoff time.Duration
		err     error
		want    time.Duration
	}{
		{"backoff only", time.Second, &RetryableError{Err: errors.New("503")}, time.Second},
		{"server asks for longer", time.Second, &RetryableError{Err: errors.New("429"), After: 5 * time.Second}, 5 * time.Second},
		{"server asks for shorter", 4 * time.Second, &RetryableError{Err: errors.New("429"), After: time.Second}, 4 * time.Second},
		{"capped", time.Second, &RetryableError{Err: errors.New("429"), After: time.Hour}, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.wait(tt.backoff, tt.err); got != tt.want {
				t.Errorf("wait = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicyWithAttempts(t *testing.T) {
	if got := DefaultPolicy.WithAttempts(5).Attempts; got != 5 {
		t.Errorf("Attempts = %d, want 5", got)
	}
	if got := DefaultPolicy.WithAttempts(-1).Attempts; got != 1 {
		t.Errorf("Attempts = %d, want 1", got)
	}
	if DefaultPolicy.Attempts != 3 {
		t.Error("WithAttempts modified DefaultPolicy")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{" 2 ", 2 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := ParseRetryAfter(tt.value, now); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
