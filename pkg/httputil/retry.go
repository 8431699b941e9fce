package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// MaxBackoff caps the delay between two attempts, including delays asked for
// by a Retry-After header.
const MaxBackoff = 30 * time.Second

// RetryableError marks a transient feed failure. After, when set, is the
// delay the server asked for.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times. Only [RetryableError] failures are
// retried. The delay starts at delay and doubles, unless the failure carries
// its own delay; either way it is capped at MaxBackoff.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var rerr *RetryableError
		if !errors.As(err, &rerr) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		if rerr.After > 0 {
			wait = rerr.After
		}
		t := time.NewTimer(min(wait, MaxBackoff))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// retryAfter reads a Retry-After header given in seconds. HTTP dates are
// ignored.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
