// Package resilience provides the backoff policy and circuit breaker used
// by the Jira request executor.
package resilience

import (
	"math"
	"math/rand"
	"time"
)

// BackoffPolicy computes jittered exponential retry delays.
type BackoffPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	MaxJitter    time.Duration

	// jitter returns a fraction in [0.0, 1.0). Overridable in tests.
	jitter func() float64
}

// DefaultBackoff returns the standard executor policy: 1s initial delay
// doubling per attempt, capped at 10s, with up to 1s of jitter.
func DefaultBackoff() *BackoffPolicy {
	return &BackoffPolicy{
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxDelay:     10 * time.Second,
		MaxJitter:    time.Second,
	}
}

// BaseDelay returns the deterministic delay for a 0-based attempt:
// min(initialDelay * multiplier^attempt, maxDelay).
func (p *BackoffPolicy) BaseDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if math.IsInf(d, 1) || d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Delay returns BaseDelay plus uniform random jitter in [0, MaxJitter].
// The result never exceeds MaxDelay + MaxJitter.
func (p *BackoffPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay(attempt)
	if p.MaxJitter > 0 {
		frac := p.jitter
		if frac == nil {
			frac = rand.Float64
		}
		d += time.Duration(frac() * float64(p.MaxJitter))
	}
	if limit := p.MaxDelay + p.MaxJitter; d > limit {
		d = limit
	}
	return d
}
