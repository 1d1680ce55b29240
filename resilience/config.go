package resilience

import "time"

// RetryConfig configures the retry behavior. A config is immutable once
// handed to NewRetry; share one across goroutines freely.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Must be >= 1. Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 1s
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 60s
	MaxDelay time.Duration

	// ExponentialBase is the backoff multiplier per attempt.
	// Default: 2.0
	ExponentialBase float64

	// NoJitter disables the random perturbation of computed delays.
	// Jitter is on by default to avoid synchronized retry storms.
	NoJitter bool

	// RetryableStatusCodes is the set of upstream HTTP status codes that
	// trigger a retry. Default: DefaultRetryableStatusCodes.
	RetryableStatusCodes map[int]bool

	// RetryableErrors reports whether an error is a transient failure kind
	// (network, connection, timeout) worth retrying. It is consulted before
	// status-code and rate-limit checks. Default: IsTransient.
	RetryableErrors func(err error) bool

	// OnRetry is called before each retry sleep, for logging hooks.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryableStatusCodes returns the default set of retryable upstream
// status codes: request timeout, rate limiting, server errors, and the
// Cloudflare 52x family.
func DefaultRetryableStatusCodes() map[int]bool {
	return statusCodeSet(
		408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504, // Gateway Timeout
		507, // Insufficient Storage
		509, // Bandwidth Limit Exceeded
		520, // Unknown Error (Cloudflare)
		521, // Web Server Is Down (Cloudflare)
		522, // Connection Timed Out (Cloudflare)
		523, // Origin Is Unreachable (Cloudflare)
		524, // A Timeout Occurred (Cloudflare)
	)
}

func statusCodeSet(codes ...int) map[int]bool {
	set := make(map[int]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// DefaultConfig returns the standard retry policy.
func DefaultConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// AggressiveConfig returns a policy with more attempts and shorter initial
// delays, for operations where latency matters more than upstream load.
func AggressiveConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    60 * time.Second,
	}
}

// ConservativeConfig returns a policy with fewer attempts and longer delays,
// for expensive or side-effect-prone operations.
func ConservativeConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// RateLimitConfig returns a policy tuned for rate-limited upstreams: longer
// delays, a higher cap, and a narrower status-code set.
func RateLimitConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:          4,
		BaseDelay:            2 * time.Second,
		MaxDelay:             120 * time.Second,
		RetryableStatusCodes: statusCodeSet(429, 500, 502, 503, 504),
	}
}

// normalize applies defaults for unset fields and enforces invariants.
func (c RetryConfig) normalize() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 60 * time.Second
	}
	if c.ExponentialBase <= 0 {
		c.ExponentialBase = 2.0
	}
	if c.RetryableStatusCodes == nil {
		c.RetryableStatusCodes = DefaultRetryableStatusCodes()
	}
	if c.RetryableErrors == nil {
		c.RetryableErrors = IsTransient
	}
	return c
}
