package flow

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes the delay before the given retry attempt. Attempts are
// 1-indexed: the first retry uses attempt=1. The exponential ceiling is
// capped at the policy's MaxDelay; with jitter enabled the actual delay is
// sampled uniformly from [0, ceiling] (full jitter) so concurrent retriers
// do not wake in lockstep.
func Backoff(attempt int, p RetryPolicy) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := float64(p.InitialDelay) * math.Pow(p.ExponentialBase, float64(attempt-1))
	if base > float64(p.MaxDelay) {
		base = float64(p.MaxDelay)
	}
	if base < 0 {
		base = 0
	}

	if p.Jitter {
		return time.Duration(rand.Float64() * base)
	}
	return time.Duration(base)
}
