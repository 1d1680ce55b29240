package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/jonwraymond/toolguard/httperror"
)

// IsTransient reports whether an error is a transient network, connection,
// or upstream-timeout failure. This is the default RetryableErrors check.
//
// Caller cancellation is not a transient failure; IsRetryable excludes it
// before this check runs.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	return false
}

// IsRetryable decides whether a failed attempt should be retried under the
// given config. An error is retryable if its kind matches the config's
// RetryableErrors check, or it carries an upstream HTTP status in
// RetryableStatusCodes, or it is a rate-limit signal.
//
// Caller cancellation (context.Canceled, context.DeadlineExceeded) is a
// distinguished non-retryable kind: a cancelled caller must see the
// cancellation immediately, never another attempt. Validation and other
// domain errors are likewise never retried; that policy is fixed, not
// configurable per call.
func IsRetryable(err error, config RetryConfig) bool {
	if err == nil {
		return false
	}
	if isCancellation(err) {
		return false
	}
	return matchesRetryPolicy(err, config)
}

// isCancellation reports whether the error chain carries a context
// cancellation or deadline.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// matchesRetryPolicy applies the config's retry policy without the
// cancellation exclusion. The retry loop uses it directly after consulting
// the caller's own context, so a per-attempt deadline inside an operation is
// judged like any other timeout rather than mistaken for caller cancellation.
func matchesRetryPolicy(err error, config RetryConfig) bool {
	config = config.normalize()

	if config.RetryableErrors(err) {
		return true
	}

	if code, ok := httperror.StatusCode(err); ok && config.RetryableStatusCodes[code] {
		return true
	}

	return httperror.IsRateLimit(err)
}
