// Package resilience provides bounded exponential-backoff retry for calls
// to upstream services.
//
// The package is built from three pieces that can also be used on their own:
//
//   - Delay: the pure backoff calculator, mapping (attempt, config) to a
//     capped, jittered delay.
//
//   - IsRetryable: the retryability classifier, deciding whether a failure
//     is transient (network/connection/timeout kinds, retryable upstream
//     status codes, rate-limit signals) or terminal.
//
//   - Retry: the attempt loop, with a cancellable variant (Execute) and a
//     blocking variant (ExecuteBlocking) sharing identical semantics.
//
// # Usage
//
//	r := resilience.NewRetry(resilience.DefaultConfig())
//
//	err := r.Execute(ctx, func(ctx context.Context) error {
//	    return callUpstream(ctx)
//	})
//
// Operations producing values go through the generic helper:
//
//	issue, err := resilience.ExecuteValue(ctx, r, func(ctx context.Context) (*Issue, error) {
//	    return fetchIssue(ctx, key)
//	})
//
// Named presets cover common policies: DefaultConfig, AggressiveConfig,
// ConservativeConfig, and RateLimitConfig for rate-limited upstreams.
//
// Transient failures are resolved inside the loop and never reach the caller
// unless attempts are exhausted, in which case the original error of the
// last attempt is returned unchanged. Caller cancellation aborts the
// sequence immediately, surfacing ctx.Err().
package resilience
