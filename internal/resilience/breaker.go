package resilience

import (
	"sync"
	"time"

	"github.com/bobmcallan/jira-mcp/internal/common"
)

// BreakerState identifies a circuit breaker state.
type BreakerState string

const (
	StateClosed   BreakerState = "closed"
	StateOpen     BreakerState = "open"
	StateHalfOpen BreakerState = "half_open"
)

// CircuitBreaker is a three-state gate consulted before every outbound call
// and updated after every outcome. While OPEN, calls are rejected until the
// cooldown passes; the first call after that becomes the HALF_OPEN probe.
//
// Failures are recorded per retry attempt, not per logical request, so the
// failure threshold must be read against the executor's retry budget (see
// common.BreakerConfig.EffectiveRequestsToOpen).
type CircuitBreaker struct {
	mu sync.Mutex

	enabled          bool
	failureThreshold int
	successThreshold int
	timeout          time.Duration

	state         BreakerState
	failureCount  int
	successCount  int
	nextAttemptAt time.Time

	logger *common.Logger
	now    func() time.Time
}

// BreakerSnapshot is a read-only view of the breaker state.
type BreakerSnapshot struct {
	State         BreakerState `json:"state"`
	FailureCount  int          `json:"failure_count"`
	SuccessCount  int          `json:"success_count"`
	NextAttemptAt time.Time    `json:"next_attempt_at,omitzero"`
}

// NewCircuitBreaker creates a breaker from config. A disabled breaker
// permits every attempt and ignores record calls.
func NewCircuitBreaker(cfg common.BreakerConfig, logger *common.Logger) *CircuitBreaker {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &CircuitBreaker{
		enabled:          cfg.Enabled,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		timeout:          cfg.GetTimeout(),
		state:            StateClosed,
		logger:           logger,
		now:              time.Now,
	}
}

// CanAttempt reports whether a call may be attempted now. When the OPEN
// cooldown has passed it transitions to HALF_OPEN and permits the probe.
func (b *CircuitBreaker) CanAttempt() bool {
	if !b.enabled {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Before(b.nextAttemptAt) {
			return false
		}
		b.state = StateHalfOpen
		b.successCount = 0
		b.logger.Info().Msg("Circuit breaker half-open, probing")
		return true
	}
	return true
}

// RecordSuccess registers a successful call.
func (b *CircuitBreaker) RecordSuccess() {
	if !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.failureCount = 0
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.successCount = 0
			b.logger.Info().Msg("Circuit breaker closed")
		}
	}
}

// RecordFailure registers a failed call attempt.
func (b *CircuitBreaker) RecordFailure() {
	if !b.enabled {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.failureThreshold {
			b.trip()
		}
	case StateHalfOpen:
		// Probe failed, back to OPEN with a fresh cooldown.
		b.trip()
	}
}

// trip transitions to OPEN. Caller holds the lock.
func (b *CircuitBreaker) trip() {
	b.state = StateOpen
	b.successCount = 0
	b.nextAttemptAt = b.now().Add(b.timeout)
	b.logger.Warn().
		Int("failures", b.failureCount).
		Time("next_attempt_at", b.nextAttemptAt).
		Msg("Circuit breaker open")
}

// NextAttemptAt returns when the breaker will next permit an attempt.
// Zero while not OPEN.
func (b *CircuitBreaker) NextAttemptAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateOpen {
		return time.Time{}
	}
	return b.nextAttemptAt
}

// State returns a snapshot for diagnostics.
func (b *CircuitBreaker) State() BreakerSnapshot {
	if !b.enabled {
		return BreakerSnapshot{State: StateClosed}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	snap := BreakerSnapshot{
		State:        b.state,
		FailureCount: b.failureCount,
		SuccessCount: b.successCount,
	}
	if b.state == StateOpen {
		snap.NextAttemptAt = b.nextAttemptAt
	}
	return snap
}

// Reset force-returns the breaker to CLOSED with zero counters.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.nextAttemptAt = time.Time{}
}
