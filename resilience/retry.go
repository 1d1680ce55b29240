package resilience

import (
	"context"
	"time"
)

// Retry drives bounded, sequential retry of a single logical operation.
// Attempts never run in parallel: this is request-level backoff, not fan-out.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry handler with the given config. Unset fields are
// filled with defaults; the resulting policy is immutable.
func NewRetry(config RetryConfig) *Retry {
	return &Retry{config: config.normalize()}
}

// Config returns the normalized retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// Execute runs the operation with retry and exponential backoff.
//
// The inter-attempt sleep is the single suspension point and honors context
// cancellation: a cancelled caller aborts the wait and the whole retry
// sequence, surfacing ctx.Err() rather than a classified error. On the last
// attempt the original error is returned unchanged; a non-retryable error
// fails fast without further sleeping.
//
// A cancellation-shaped error from the operation counts as caller
// cancellation only while ctx.Err() is non-nil; an operation's own
// per-attempt deadline is retried like any other timeout.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := Delay(attempt, r.config)

			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt, lastErr, delay)
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.config.MaxAttempts-1 {
			break
		}
		if isCancellation(err) && ctx.Err() != nil {
			// The caller's own context ended; a per-attempt deadline inside
			// the operation leaves ctx.Err() nil and is judged below.
			break
		}
		if !matchesRetryPolicy(err, r.config) {
			break
		}
	}

	return lastErr
}

// ExecuteBlocking runs the operation with retry semantics identical to
// Execute, but sleeps with a hard block between attempts. For synchronous
// call sites with no context to honor; concurrent callers should prefer
// Execute.
func (r *Retry) ExecuteBlocking(op func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := Delay(attempt, r.config)

			if r.config.OnRetry != nil {
				r.config.OnRetry(attempt, lastErr, delay)
			}

			time.Sleep(delay)
		}

		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.config.MaxAttempts-1 {
			break
		}
		// No caller context here, so a deadline error can only come from
		// inside the operation; the policy decides it like any other failure.
		if !matchesRetryPolicy(err, r.config) {
			break
		}
	}

	return lastErr
}

// ExecuteValue runs an operation that produces a value, with the retry
// semantics of Retry.Execute. On failure the zero value is returned along
// with the original error of the last attempt.
func ExecuteValue[T any](ctx context.Context, r *Retry, op func(context.Context) (T, error)) (T, error) {
	var result T

	err := r.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
