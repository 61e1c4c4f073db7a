package broker

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

// RetrySpec configures the retry policy wrapped around a call when backoff is
// enabled. Each field is independently overridable; zero values fall back to
// the defaults from DefaultRetrySpec.
type RetrySpec struct {
	// MaxAttempts includes the initial attempt. If <= 0, 3 is used.
	MaxAttempts int

	// Backoff computes the delay before the next attempt. If nil,
	// DefaultBackoff() is used.
	Backoff Backoff

	// Retryable classifies an error as transient. If nil, DefaultRetryable
	// is used.
	Retryable func(error) bool
}

// DefaultRetrySpec returns the default policy: 3 attempts total with
// exponential backoff between 2s and 10s, retrying 429/5xx responses and
// transport-level failures.
func DefaultRetrySpec() RetrySpec {
	return RetrySpec{
		MaxAttempts: 3,
		Backoff:     DefaultBackoff(),
		Retryable:   DefaultRetryable,
	}
}

func (s RetrySpec) withDefaults() RetrySpec {
	d := DefaultRetrySpec()
	if s.MaxAttempts > 0 {
		d.MaxAttempts = s.MaxAttempts
	}
	if s.Backoff != nil {
		d.Backoff = s.Backoff
	}
	if s.Retryable != nil {
		d.Retryable = s.Retryable
	}
	return d
}

// merge overlays per-call overrides on top of the client policy.
func (s RetrySpec) merge(override *RetrySpec) RetrySpec {
	if override == nil {
		return s.withDefaults()
	}
	m := s.withDefaults()
	if override.MaxAttempts > 0 {
		m.MaxAttempts = override.MaxAttempts
	}
	if override.Backoff != nil {
		m.Backoff = override.Backoff
	}
	if override.Retryable != nil {
		m.Retryable = override.Retryable
	}
	return m
}

type Backoff interface {
	// Next returns how long to wait before attempt+1. attempt starts at 1
	// for the first failed attempt.
	Next(attempt int) time.Duration
}

// ExponentialBackoff waits clamp(Multiplier * 2^(attempt-1), Min, Max).
type ExponentialBackoff struct {
	Multiplier time.Duration
	Min        time.Duration
	Max        time.Duration
}

func DefaultBackoff() Backoff {
	return ExponentialBackoff{
		Multiplier: 1 * time.Second,
		Min:        2 * time.Second,
		Max:        10 * time.Second,
	}
}

func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := b.Multiplier
	if mult <= 0 {
		mult = 1 * time.Second
	}

	d := mult
	for i := 1; i < attempt; i++ {
		if b.Max > 0 && d >= b.Max {
			break
		}
		d *= 2
	}
	if d < b.Min {
		d = b.Min
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// DefaultRetryable reports whether an error is worth another attempt:
// a 429 or 5xx status, or a transport-level failure (connection
// establishment, timeout, broken write, malformed response). Configuration
// and validation errors are never retryable.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ce *ConfigError
	var ve *ValidationError
	if errors.As(err, &ce) || errors.As(err, &ve) {
		return false
	}

	if se, ok := AsStatusError(err); ok {
		return se.StatusCode == http.StatusTooManyRequests ||
			(se.StatusCode >= 500 && se.StatusCode <= 599)
	}

	// Unwrap the url.Error the http client reports transport failures as.
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	// Malformed or truncated responses.
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	return false
}

// doWithRetry runs fn under spec. On exhaustion it returns the final
// attempt's error unmodified so callers see the same error shape regardless
// of whether backoff was enabled. Context cancellation during a backoff wait
// surfaces the context error.
func doWithRetry(ctx context.Context, spec RetrySpec, fn func() (*http.Response, error)) (*http.Response, error) {
	maxAttempts := spec.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt >= maxAttempts || spec.Retryable == nil || !spec.Retryable(err) {
			return nil, lastErr
		}
		if err := waitBackoff(ctx, spec.Backoff.Next(attempt)); err != nil {
			return nil, err
		}
	}
}

func waitBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
