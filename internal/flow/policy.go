package flow

import (
	"errors"
	"time"
)

// RetryPolicy configures the retry executor. Immutable after construction and
// safe to share across invocations.
type RetryPolicy struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	Jitter          bool
}

// DefaultRetryPolicy returns the documented defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// Validate checks the policy invariants.
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 0 {
		return errors.New("retry policy: max retries must be >= 0")
	}
	if p.InitialDelay <= 0 {
		return errors.New("retry policy: initial delay must be > 0")
	}
	if p.MaxDelay < p.InitialDelay {
		return errors.New("retry policy: max delay must be >= initial delay")
	}
	if p.ExponentialBase <= 1 {
		return errors.New("retry policy: exponential base must be > 1")
	}
	return nil
}

// RateLimitPolicy configures the token-bucket limiter. At least one of
// PerSecond / PerMinute must be set; Burst sets the bucket capacity and
// permits short spikes above the sustained rate.
type RateLimitPolicy struct {
	PerSecond float64
	PerMinute float64
	Burst     int
}

// DefaultRateLimitPolicy allows one request per second with a burst of five.
func DefaultRateLimitPolicy() RateLimitPolicy {
	return RateLimitPolicy{PerSecond: 1, Burst: 5}
}

// Validate checks the policy invariants.
func (p RateLimitPolicy) Validate() error {
	if p.PerSecond <= 0 && p.PerMinute <= 0 {
		return errors.New("rate limit policy: at least one of per-second or per-minute must be > 0")
	}
	if p.PerSecond < 0 || p.PerMinute < 0 {
		return errors.New("rate limit policy: rates must not be negative")
	}
	if p.Burst < 1 {
		return errors.New("rate limit policy: burst must be >= 1")
	}
	return nil
}
