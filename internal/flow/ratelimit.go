package flow

import (
	"context"
	"sync"
	"time"
)

// bucket is one token bucket. Tokens are fractional; refill is lazy and only
// ever moves forward in time.
type bucket struct {
	capacity float64
	tokens   float64
	rate     float64 // tokens per second
	last     time.Time
}

func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now
}

// waitFor returns how long until at least one token is available.
func (b *bucket) waitFor() time.Duration {
	if b.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
}

// Limiter paces outgoing actions under independent per-second and per-minute
// budgets with burst tolerance. One instance is shared by every caller of a
// scraping session; all token accounting happens inside a single mutex.
// Construct one explicitly and pass it where it is needed; limiters are never
// ambient state.
type Limiter struct {
	mu      sync.Mutex
	buckets []bucket
	base    []float64 // configured rates, before any adaptive scaling
	now     func() time.Time
}

// NewLimiter builds a limiter from the policy. Each configured rate gets its
// own bucket; Acquire only succeeds when every bucket has a token.
func NewLimiter(p RateLimitPolicy) (*Limiter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{now: time.Now}
	start := l.now()
	if p.PerSecond > 0 {
		l.buckets = append(l.buckets, bucket{
			capacity: float64(p.Burst),
			tokens:   float64(p.Burst),
			rate:     p.PerSecond,
			last:     start,
		})
	}
	if p.PerMinute > 0 {
		l.buckets = append(l.buckets, bucket{
			capacity: float64(p.Burst),
			tokens:   float64(p.Burst),
			rate:     p.PerMinute / 60.0,
			last:     start,
		})
	}
	for i := range l.buckets {
		l.base = append(l.base, l.buckets[i].rate)
	}
	return l, nil
}

// scaleRates rescales every bucket to factor times its configured rate.
// Accrued tokens are settled at the old rate first.
func (l *Limiter) scaleRates(factor float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for i := range l.buckets {
		l.buckets[i].refill(now)
		l.buckets[i].rate = l.base[i] * factor
	}
}

// Acquire blocks until one token is available in every bucket, then debits
// them atomically. The caller waits for the larger of the required delays.
// A context deadline or cancellation surfaces as a classified timeout.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		for i := range l.buckets {
			l.buckets[i].refill(now)
		}

		var wait time.Duration
		for i := range l.buckets {
			if w := l.buckets[i].waitFor(); w > wait {
				wait = w
			}
		}
		if wait == 0 {
			for i := range l.buckets {
				l.buckets[i].tokens--
			}
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return NewTimeout(ctx.Err())
		case <-time.After(wait):
		}
	}
}

const (
	// adaptiveSlowdownDivisor shrinks the rate after the upstream pushes back.
	adaptiveSlowdownDivisor = 1.5
	// adaptiveRecoveryFactor grows the rate again after a success.
	adaptiveRecoveryFactor = 1.1
	// adaptiveMinFactor is the floor; the limiter never stalls completely.
	adaptiveMinFactor = 0.1
)

// AdaptiveLimiter adjusts an underlying Limiter in response to upstream
// feedback: every rate-limited failure cuts the effective rate, every success
// nudges it back toward the configured one. Burst capacity is untouched; only
// the refill rates move.
type AdaptiveLimiter struct {
	limiter *Limiter

	mu     sync.Mutex
	factor float64
}

// NewAdaptiveLimiter builds an adaptive limiter starting at the full
// configured rate.
func NewAdaptiveLimiter(p RateLimitPolicy) (*AdaptiveLimiter, error) {
	l, err := NewLimiter(p)
	if err != nil {
		return nil, err
	}
	return &AdaptiveLimiter{limiter: l, factor: 1}, nil
}

// Acquire delegates to the underlying limiter at the current effective rate.
func (a *AdaptiveLimiter) Acquire(ctx context.Context) error {
	return a.limiter.Acquire(ctx)
}

// SlowDown cuts the effective rate, bounded below so progress never stops.
func (a *AdaptiveLimiter) SlowDown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.factor / adaptiveSlowdownDivisor
	if f < adaptiveMinFactor {
		f = adaptiveMinFactor
	}
	if f == a.factor {
		return
	}
	a.factor = f
	a.limiter.scaleRates(f)
}

// SpeedUp restores the effective rate gradually, capped at the configured one.
func (a *AdaptiveLimiter) SpeedUp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.factor * adaptiveRecoveryFactor
	if f > 1 {
		f = 1
	}
	if f == a.factor {
		return
	}
	a.factor = f
	a.limiter.scaleRates(f)
}
