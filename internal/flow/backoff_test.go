package flow

import (
	"testing"
	"time"
)

func TestBackoffBoundAndMonotonic(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:      10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          false,
	}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		d := Backoff(attempt, p)
		if d < 0 {
			t.Fatalf("Backoff(%d) = %v, must not be negative", attempt, d)
		}
		if d > p.MaxDelay {
			t.Fatalf("Backoff(%d) = %v, exceeds max delay %v", attempt, d, p.MaxDelay)
		}
		if d < prev {
			t.Fatalf("Backoff(%d) = %v, smaller than previous %v (must be non-decreasing without jitter)", attempt, d, prev)
		}
		prev = d
	}
}

func TestBackoffExponentialGrowth(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:      5,
		InitialDelay:    1 * time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          false,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{7, 60 * time.Second}, // capped
		{0, 1 * time.Second},  // clamped to first attempt
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, p); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffFullJitterRange(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:      3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}

	// Attempt 3 has a 4s ceiling; full jitter samples from [0, 4s].
	ceiling := 4 * time.Second
	for i := 0; i < 1000; i++ {
		d := Backoff(3, p)
		if d < 0 || d > ceiling {
			t.Fatalf("Backoff(3) = %v, outside jitter range [0, %v]", d, ceiling)
		}
	}
}
