package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// jitterFraction is the uniform perturbation applied to computed delays.
const jitterFraction = 0.1

// Delay computes the backoff delay before the given retry attempt.
// Attempt is 0-based: the first retry is attempt 1 and sleeps for
// BaseDelay * ExponentialBase^1.
//
// The exponential delay is clamped to MaxDelay, then perturbed by a uniform
// +/-10% jitter unless disabled, then clamped to be non-negative. Pure and
// side-effect free apart from the jitter RNG; safe to call concurrently.
func Delay(attempt int, config RetryConfig) time.Duration {
	config = config.normalize()

	delay := float64(config.BaseDelay) * math.Pow(config.ExponentialBase, float64(attempt))
	delay = math.Min(delay, float64(config.MaxDelay))

	if !config.NoJitter {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += (rand.Float64()*2 - 1) * jitterFraction * delay
	}

	if delay < 0 {
		delay = 0
	}
	if delay > float64(math.MaxInt64) {
		return config.MaxDelay
	}
	return time.Duration(delay)
}
