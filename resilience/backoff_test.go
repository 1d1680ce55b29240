package resilience

import (
	"testing"
	"time"
)

func TestDelay_ExponentialGrowth(t *testing.T) {
	config := RetryConfig{
		BaseDelay:       time.Second,
		MaxDelay:        time.Hour,
		ExponentialBase: 2.0,
		NoJitter:        true,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
	}

	for _, tt := range tests {
		if got := Delay(tt.attempt, config); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDelay_MonotonicUntilCap(t *testing.T) {
	config := RetryConfig{
		BaseDelay:       500 * time.Millisecond,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2.0,
		NoJitter:        true,
	}

	prev := Delay(0, config)
	for attempt := 1; attempt < 20; attempt++ {
		d := Delay(attempt, config)
		if d < prev {
			t.Errorf("Delay(%d) = %v < Delay(%d) = %v", attempt, d, attempt-1, prev)
		}
		if d > config.MaxDelay {
			t.Errorf("Delay(%d) = %v exceeds cap %v", attempt, d, config.MaxDelay)
		}
		prev = d
	}
}

func TestDelay_ClampedToMaxDelay(t *testing.T) {
	config := RetryConfig{
		BaseDelay:       time.Second,
		MaxDelay:        5 * time.Second,
		ExponentialBase: 2.0,
		NoJitter:        true,
	}

	if got := Delay(10, config); got != 5*time.Second {
		t.Errorf("Delay(10) = %v, want clamped to 5s", got)
	}
	// Large attempt numbers must not overflow past the cap.
	if got := Delay(500, config); got != 5*time.Second {
		t.Errorf("Delay(500) = %v, want clamped to 5s", got)
	}
}

func TestDelay_JitterStaysNearComputedDelay(t *testing.T) {
	config := RetryConfig{
		BaseDelay:       time.Second,
		MaxDelay:        time.Hour,
		ExponentialBase: 2.0,
	}

	// attempt 2 without jitter is exactly 4s; jitter is +/-10%.
	lo := time.Duration(float64(4*time.Second) * 0.9)
	hi := time.Duration(float64(4*time.Second) * 1.1)

	for i := 0; i < 200; i++ {
		d := Delay(2, config)
		if d < lo || d > hi {
			t.Fatalf("Delay(2) = %v, want within [%v, %v]", d, lo, hi)
		}
	}
}

func TestDelay_NeverNegative(t *testing.T) {
	config := RetryConfig{
		BaseDelay:       time.Nanosecond,
		MaxDelay:        time.Second,
		ExponentialBase: 2.0,
	}

	for attempt := 0; attempt < 50; attempt++ {
		if d := Delay(attempt, config); d < 0 {
			t.Fatalf("Delay(%d) = %v, want >= 0", attempt, d)
		}
	}
}

func TestDelay_ZeroConfigUsesDefaults(t *testing.T) {
	// A zero config normalizes to base 1s, exponent 2, so attempt 1 is ~2s.
	d := Delay(1, RetryConfig{NoJitter: true})
	if d != 2*time.Second {
		t.Errorf("Delay(1, zero config) = %v, want 2s", d)
	}
}
